//go:build linux

// Package udpsrc receives application datagrams on a UDP socket.
// The socket is used through its file descriptor so that a single poll can wait for
// readability with a deadline and reads can be issued without blocking.
package udpsrc

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

type Config struct {
	// BindAddress is an IPv4 address. Empty means all interfaces.
	BindAddress string
	// Port 0 picks an ephemeral port.
	Port int
	// ReceiveBufferSize sets SO_RCVBUF if positive.
	ReceiveBufferSize int
}

type Source struct {
	fd   int
	addr *net.UDPAddr
}

func Listen(conf Config) (*Source, error) {
	ip := net.IPv4zero
	if conf.BindAddress != "" {
		ip = net.ParseIP(conf.BindAddress)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("invalid IPv4 bind address: %q", conf.BindAddress)
	}
	if conf.Port < 0 || conf.Port > math.MaxUint16 {
		return nil, fmt.Errorf("invalid UDP port: %d", conf.Port)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.IPPROTO_UDP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if err := setup(fd, ip4, conf); err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("getsockname", err)
	}
	s := &Source{fd: fd}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		s.addr = &net.UDPAddr{IP: net.IP(in4.Addr[:]).To16(), Port: in4.Port}
	}
	return s, nil
}

func setup(fd int, ip net.IP, conf Config) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return os.NewSyscallError("setsockopt SO_REUSEADDR", err)
	}
	if conf.ReceiveBufferSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, conf.ReceiveBufferSize); err != nil {
			return os.NewSyscallError("setsockopt SO_RCVBUF", err)
		}
	}
	sa := &unix.SockaddrInet4{Port: conf.Port}
	copy(sa.Addr[:], ip)
	if err := unix.Bind(fd, sa); err != nil {
		return fmt.Errorf("unable to bind %s:%d: %w", ip, conf.Port, os.NewSyscallError("bind", err))
	}
	return nil
}

// LocalAddr is the address the socket is bound to.
func (s *Source) LocalAddr() *net.UDPAddr { return s.addr }

// Receive blocks until a datagram arrives. A datagram larger than b is truncated.
func (s *Source) Receive(b []byte) (int, error) {
	n, _, err := unix.Recvfrom(s.fd, b, 0)
	if err != nil {
		return 0, convertErr("recvfrom", err)
	}
	return n, nil
}

// TryReceive returns protocol.ErrWouldBlock if no datagram is queued.
func (s *Source) TryReceive(b []byte) (int, error) {
	n, _, err := unix.Recvfrom(s.fd, b, unix.MSG_DONTWAIT)
	if err != nil {
		return 0, convertErr("recvfrom", err)
	}
	return n, nil
}

// WaitReadable polls the socket. The timeout is rounded up to whole milliseconds.
func (s *Source) WaitReadable(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, pollTimeout(timeout))
	if err != nil {
		return false, convertErr("poll", err)
	}
	if n == 0 {
		return false, nil
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL|unix.POLLHUP) != 0 {
		return false, fmt.Errorf("socket error: revents %#x", fds[0].Revents)
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}

func (s *Source) Close() error {
	return os.NewSyscallError("close", unix.Close(s.fd))
}

func pollTimeout(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}

func convertErr(op string, err error) error {
	switch {
	case errors.Is(err, unix.EINTR):
		return protocol.ErrInterrupted
	case errors.Is(err, unix.EAGAIN):
		return protocol.ErrWouldBlock
	default:
		return os.NewSyscallError(op, err)
	}
}

//go:build linux

// Package link injects raw frames on a wireless interface in monitor mode.
package link

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// Injector writes frames, radiotap header included, to a packet socket bound to one interface.
type Injector struct {
	fd     int
	ifname string
}

func Open(ifname string) (*Injector, error) {
	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("unable to open interface %s: %w", ifname, err)
	}
	if ifi.Flags&net.FlagUp == 0 {
		return nil, fmt.Errorf("interface %s is down", ifname)
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if err := setup(fd, ifi.Index, proto); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("unable to set up %s: %w", ifname, err)
	}
	return &Injector{fd: fd, ifname: ifname}, nil
}

func setup(fd int, ifindex int, proto uint16) error {
	// Nothing is ever read from this socket, keep its receive queue empty.
	if err := attachFilter(fd, dropAll); err != nil {
		return err
	}
	if err := unix.Bind(fd, &unix.SockaddrLinklayer{Protocol: proto, Ifindex: ifindex}); err != nil {
		return os.NewSyscallError("bind", err)
	}
	mreq := &unix.PacketMreq{Ifindex: int32(ifindex), Type: unix.PACKET_MR_PROMISC}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, mreq); err != nil {
		return os.NewSyscallError("setsockopt PACKET_ADD_MEMBERSHIP", err)
	}
	return nil
}

var dropAll = []bpf.Instruction{
	bpf.RetConstant{Val: 0},
}

func assembleFilter(prog []bpf.Instruction) ([]unix.SockFilter, error) {
	raw, err := bpf.Assemble(prog)
	if err != nil {
		return nil, err
	}
	filter := make([]unix.SockFilter, len(raw))
	for i, ins := range raw {
		filter[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return filter, nil
}

func attachFilter(fd int, prog []bpf.Instruction) error {
	filter, err := assembleFilter(prog)
	if err != nil {
		return err
	}
	fprog := &unix.SockFprog{Len: uint16(len(filter)), Filter: &filter[0]}
	if err := unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, fprog); err != nil {
		return os.NewSyscallError("setsockopt SO_ATTACH_FILTER", err)
	}
	return nil
}

// Inject sends one frame. Anything short of a complete write is protocol.ErrInjectionFailed.
func (i *Injector) Inject(frame []byte) error {
	for {
		n, err := unix.Write(i.fd, frame)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w on %s: %v", protocol.ErrInjectionFailed, i.ifname, os.NewSyscallError("write", err))
		}
		if n != len(frame) {
			return fmt.Errorf("%w on %s: wrote %d of %d bytes", protocol.ErrInjectionFailed, i.ifname, n, len(frame))
		}
		return nil
	}
}

func (i *Injector) Close() error {
	return os.NewSyscallError("close", unix.Close(i.fd))
}

func htons(v uint16) uint16 {
	return v<<8 | v>>8
}

//go:build linux

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

type AppConfig struct {
	Interface   string        `yaml:"interface"`
	ChannelTag  int           `yaml:"channel_tag"`
	Fec         FecConfig     `yaml:"fec"`
	Ingest      IngestConfig  `yaml:"ingest"`
	MaxRateKbps uint32        `yaml:"max_rate_kbps"`
	TracePath   string        `yaml:"trace_path"`
	Logging     LoggingConfig `yaml:"logging"`
}

type FecConfig struct {
	Scheme string `yaml:"scheme"` // "reed_solomon" | "xor"
	K      int    `yaml:"k"`
	N      int    `yaml:"n"`
}

type IngestConfig struct {
	BindAddress       string `yaml:"bind_address"`
	UDPPort           int    `yaml:"udp_port"`
	ReceiveBufferSize int    `yaml:"receive_buffer_size"`
	// Aggregate coalesces datagrams for at most AggregationLatency, e.g. for telemetry streams.
	Aggregate          bool          `yaml:"aggregate"`
	AggregationLatency time.Duration `yaml:"aggregation_latency"`
}

type LoggingConfig struct {
	Level         string        `yaml:"level"`
	Format        string        `yaml:"format"` // "json" | "console"
	StatsInterval time.Duration `yaml:"stats_interval"`
}

func defaultConfig() AppConfig {
	return AppConfig{
		ChannelTag: int(protocol.DefaultChannelTag),
		Fec: FecConfig{
			Scheme: protocol.ReedSolomonFECScheme.String(),
			K:      protocol.DefaultK,
			N:      protocol.DefaultN,
		},
		Ingest: IngestConfig{
			UDPPort: protocol.DefaultUDPPort,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "json",
			StatsInterval: 10 * time.Second,
		},
	}
}

func loadConfig(path string, cfg *AppConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

var errUsage = errors.New("usage error")

// parseArgs builds the configuration from defaults, an optional YAML file and the command line, in that order.
func parseArgs(args []string, output io.Writer) (*AppConfig, error) {
	var (
		configPath  string
		aggLatency  int
		k, n        int
		udpPort     int
		channelTag  int
		scheme      string
		maxRateKbps uint
		tracePath   string
		logLevel    string
		bindAddress string
	)
	fs := flag.NewFlagSet("wfb_tx", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&configPath, "config", "", "path to YAML config")
	fs.IntVar(&aggLatency, "m", 0, "aggregate datagrams for at most this many `ms` (telemetry mode)")
	fs.IntVar(&k, "k", protocol.DefaultK, "number of data fragments per block")
	fs.IntVar(&n, "n", protocol.DefaultN, "number of fragments per block")
	fs.IntVar(&udpPort, "u", protocol.DefaultUDPPort, "UDP port to receive datagrams on")
	fs.IntVar(&channelTag, "p", int(protocol.DefaultChannelTag), "radio port (channel tag)")
	fs.StringVar(&scheme, "fec", protocol.ReedSolomonFECScheme.String(), "FEC scheme: reed_solomon or xor")
	fs.UintVar(&maxRateKbps, "rate", 0, "limit the injected rate in kbit/s, 0 disables the limit")
	fs.StringVar(&tracePath, "trace", "", "write a JSON event trace to this file")
	fs.StringVar(&logLevel, "log-level", "info", "log level")
	fs.StringVar(&bindAddress, "bind", "", "IPv4 address to receive datagrams on")
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: wfb_tx [options] interface\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "Radio MTU: %d\n", protocol.MaxPayloadSize)
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg := defaultConfig()
	if configPath != "" {
		if err := loadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			cfg.Ingest.Aggregate = true
			cfg.Ingest.AggregationLatency = time.Duration(aggLatency) * time.Millisecond
		case "k":
			cfg.Fec.K = k
		case "n":
			cfg.Fec.N = n
		case "u":
			cfg.Ingest.UDPPort = udpPort
		case "p":
			cfg.ChannelTag = channelTag
		case "fec":
			cfg.Fec.Scheme = scheme
		case "rate":
			cfg.MaxRateKbps = uint32(min(maxRateKbps, math.MaxUint32))
		case "trace":
			cfg.TracePath = tracePath
		case "log-level":
			cfg.Logging.Level = logLevel
		case "bind":
			cfg.Ingest.BindAddress = bindAddress
		}
	})
	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Interface = fs.Arg(0)
	default:
		return nil, fmt.Errorf("%w: expected a single interface, got %q", errUsage, fs.Args())
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Interface == "" {
		return errors.New("no interface given")
	}
	if err := c.params().Validate(); err != nil {
		return err
	}
	id, err := protocol.ParseFECScheme(c.Fec.Scheme)
	if err != nil {
		return err
	}
	if id == protocol.XORFECScheme && c.Fec.N-c.Fec.K > 1 {
		return fmt.Errorf("the xor scheme needs n = k+1, got k=%d n=%d", c.Fec.K, c.Fec.N)
	}
	if c.ChannelTag < 0 || c.ChannelTag > math.MaxUint8 {
		return fmt.Errorf("radio port must be in [0, 255], got %d", c.ChannelTag)
	}
	if c.Ingest.UDPPort <= 0 || c.Ingest.UDPPort > math.MaxUint16 {
		return fmt.Errorf("invalid UDP port: %d", c.Ingest.UDPPort)
	}
	if c.Ingest.AggregationLatency < 0 {
		return fmt.Errorf("negative aggregation latency: %s", c.Ingest.AggregationLatency)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}
	return nil
}

func (c *AppConfig) params() protocol.Params {
	return protocol.Params{K: c.Fec.K, N: c.Fec.N}
}

func (c *AppConfig) fecScheme() protocol.FECSchemeID {
	id, _ := protocol.ParseFECScheme(c.Fec.Scheme)
	return id
}

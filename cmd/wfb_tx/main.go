//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ddritzenhoff/wfbtx"
	"github.com/ddritzenhoff/wfbtx/internal/link"
	"github.com/ddritzenhoff/wfbtx/internal/protocol"
	"github.com/ddritzenhoff/wfbtx/internal/tracing"
	"github.com/ddritzenhoff/wfbtx/internal/udpsrc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Default: k=%d, n=%d, udp_port=%d, radio_port=%d\n",
				protocol.DefaultK, protocol.DefaultN, protocol.DefaultUDPPort, protocol.DefaultChannelTag)
		}
		return 1
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := relay(cfg, logger); err != nil {
		logger.Error("transmitter stopped", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(c LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Encoding = c.Format
	if c.Format == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc.Build()
}

func relay(cfg *AppConfig, logger *zap.Logger) error {
	src, err := udpsrc.Listen(udpsrc.Config{
		BindAddress:       cfg.Ingest.BindAddress,
		Port:              cfg.Ingest.UDPPort,
		ReceiveBufferSize: cfg.Ingest.ReceiveBufferSize,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	injector, err := link.Open(cfg.Interface)
	if err != nil {
		return err
	}
	defer injector.Close()

	var sender wfbtx.LinkSender = injector
	if cfg.MaxRateKbps > 0 {
		sender = link.NewThrottled(injector, link.KbpsToBytesPerSecond(cfg.MaxRateKbps))
	}

	var tracer tracing.Tracer
	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		tracer = tracing.NewJSONTracer(f)
		defer func() {
			if err := tracer.Close(); err != nil {
				logger.Warn("writing trace failed", zap.Error(err))
			}
		}()
	}

	t, err := wfbtx.NewTransmitter(sender, &wfbtx.Config{
		FECScheme:  cfg.fecScheme(),
		K:          cfg.Fec.K,
		N:          cfg.Fec.N,
		ChannelTag: protocol.ChannelTag(cfg.ChannelTag),
		Logger:     logger,
		Tracer:     tracer,
	})
	if err != nil {
		return err
	}

	logger.Info("transmitter started",
		zap.String("interface", cfg.Interface),
		zap.Stringer("udp", src.LocalAddr()),
		zap.String("fec", cfg.fecScheme().String()),
		zap.Int("k", cfg.Fec.K),
		zap.Int("n", cfg.Fec.N),
		zap.Int("radio_port", cfg.ChannelTag),
		zap.Bool("aggregate", cfg.Ingest.Aggregate),
		zap.Duration("aggregation_latency", cfg.Ingest.AggregationLatency),
		zap.Uint32("max_rate_kbps", cfg.MaxRateKbps),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The relay loop owns the transmitter. It has no cancellation and ends with the process.
	errChan := make(chan error, 1)
	go func() {
		if cfg.Ingest.Aggregate {
			errChan <- wfbtx.NewAggregator(src, t, cfg.Ingest.AggregationLatency).Run()
		} else {
			errChan <- wfbtx.RunPassThrough(src, t)
		}
	}()

	var tick <-chan time.Time
	if cfg.Logging.StatsInterval > 0 {
		ticker := time.NewTicker(cfg.Logging.StatsInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	r := newStatsReporter(t, logger)
	for {
		select {
		case err := <-errChan:
			r.report()
			return err
		case <-ctx.Done():
			r.report()
			logger.Info("terminated by signal")
			return nil
		case <-tick:
			r.report()
		}
	}
}

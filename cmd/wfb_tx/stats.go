//go:build linux

package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/ddritzenhoff/wfbtx"
)

type statsSource interface {
	Stats() wfbtx.Stats
}

// statsReporter logs progress with rates computed since the previous report.
type statsReporter struct {
	src    statsSource
	logger *zap.Logger

	start   time.Time
	lastAt  time.Time
	last    wfbtx.Stats
	nowFunc func() time.Time
}

func newStatsReporter(src statsSource, logger *zap.Logger) *statsReporter {
	now := time.Now()
	return &statsReporter{src: src, logger: logger, start: now, lastAt: now, nowFunc: time.Now}
}

func (r *statsReporter) report() {
	now := r.nowFunc()
	s := r.src.Stats()
	var instMbps, avgMbps float64
	if dt := now.Sub(r.lastAt).Seconds(); dt > 0 {
		instMbps = float64(s.BytesInjected-r.last.BytesInjected) * 8 / dt / 1e6
	}
	if dt := now.Sub(r.start).Seconds(); dt > 0 {
		avgMbps = float64(s.BytesInjected) * 8 / dt / 1e6
	}
	r.logger.Info("progress",
		zap.Uint64("datagrams", s.DatagramsAccepted),
		zap.Uint64("frames", s.FramesInjected),
		zap.Uint64("blocks", s.BlocksCompleted),
		zap.Uint64("bytes", s.BytesInjected),
		zap.Float64("inst_mbps", instMbps),
		zap.Float64("avg_mbps", avgMbps),
	)
	r.lastAt = now
	r.last = s
}

package desktop

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/load"
)

// FrameSchedulerConfig parameterises one video loop.
type FrameSchedulerConfig struct {
	FPS int
}

// FrameScheduler drives a step function at a fixed cadence, accepting
// lateness without trying to catch up: a late frame resets the deadline
// to t_done + period rather than snapping back to the next multiple of the
// original cadence, bounding drift after a single slow frame.
type FrameScheduler struct {
	period time.Duration
	step   func(frameIndex int64) error
}

func NewFrameScheduler(cfg FrameSchedulerConfig, step func(frameIndex int64) error) *FrameScheduler {
	return &FrameScheduler{
		period: time.Second / time.Duration(cfg.FPS),
		step:   step,
	}
}

// Run loops until running reports false or step returns an error. Frame
// indices increment on every iteration regardless of lateness, so
// presentation timestamps observed on the wire stay monotonic and gap-free.
func (s *FrameScheduler) Run(running *atomic.Bool) error {
	target := time.Now().Add(s.period)
	var frameIndex int64

	for running.Load() {
		if err := s.step(frameIndex); err != nil {
			return err
		}
		frameIndex++

		now := time.Now()
		if now.After(target) {
			slog.Warn("video loop running late", "frame", frameIndex, "by", now.Sub(target), "load1", loadAverage1())
			target = now.Add(s.period)
			continue
		}

		time.Sleep(target.Sub(now))
		target = target.Add(s.period)
	}
	return nil
}

// loadAverage1 reports the 1-minute host load average for the "running
// late" diagnostic, returning -1 when the platform doesn't expose one
// (e.g. inside a container without /proc/loadavg).
func loadAverage1() float64 {
	avg, err := load.Avg()
	if err != nil {
		return -1
	}
	return avg.Load1
}

package desktop

import (
	"context"
	"time"
)

// AudioFrame is one Opus packet pulled from the capture pipeline: 960 samples
// (20ms at 48kHz) of the default sink's monitor, encoded at 128kbit/s.
type AudioFrame struct {
	Data []byte
	PTS  time.Duration
}

// AudioCapturer captures the host's default audio output and delivers it as
// a stream of Opus packets. Start returns once the pipeline is playing; the
// returned channel is closed when the pipeline stops for any reason
// (Stop called, device gone, pipeline error).
type AudioCapturer interface {
	Start(ctx context.Context) (<-chan AudioFrame, error)
	Stop()
}

// AudioConfig parameterises the capture pipeline's sample format and the
// Opus encoder it feeds.
type AudioConfig struct {
	SampleRate   int
	Channels     int
	FrameSamples int
	OpusBitrate  int
}

func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:   48000,
		Channels:     2,
		FrameSamples: 960,
		OpusBitrate:  128_000,
	}
}

// frameSizeMs converts FrameSamples at SampleRate into the millisecond
// value opusenc's frame-size property expects.
func (c AudioConfig) frameSizeMs() int {
	if c.SampleRate <= 0 {
		return 20
	}
	return c.FrameSamples * 1000 / c.SampleRate
}

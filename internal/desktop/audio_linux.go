package desktop

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// pulseAudioCapturer captures the default sink's monitor via PulseAudio (or
// PipeWire's pulse-compat layer) using a GStreamer pipeline:
// pulsesrc(monitor) ! audioconvert ! audioresample ! opusenc ! appsink.
type pulseAudioCapturer struct {
	cfg      AudioConfig
	pipeline *gstPipeline
}

func NewAudioCapturer(cfg AudioConfig) AudioCapturer {
	return &pulseAudioCapturer{cfg: cfg}
}

func (c *pulseAudioCapturer) Start(ctx context.Context) (<-chan AudioFrame, error) {
	device, err := findMonitorDevice(ctx)
	if err != nil {
		return nil, err
	}

	pipelineStr := strings.Join([]string{
		`pulsesrc device="` + device + `" do-timestamp=true`,
		"audioconvert",
		"audioresample",
		fmt.Sprintf("audio/x-raw,rate=%d,channels=%d", c.cfg.SampleRate, c.cfg.Channels),
		fmt.Sprintf("opusenc bitrate=%d frame-size=%d audio-type=generic", c.cfg.OpusBitrate, c.cfg.frameSizeMs()),
		"opusparse",
		"appsink name=sink",
	}, " ! ")

	pipeline, err := newGstPipeline(pipelineStr)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Start(ctx); err != nil {
		return nil, err
	}
	c.pipeline = pipeline

	out := make(chan AudioFrame, 16)
	go func() {
		defer close(out)
		for s := range pipeline.Samples() {
			select {
			case out <- AudioFrame{Data: s.Data, PTS: s.PTS}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *pulseAudioCapturer) Stop() {
	if c.pipeline != nil {
		c.pipeline.Stop()
	}
}

// findMonitorDevice asks pactl for the default sink's monitor source. Falls
// back to PulseAudio's "@DEFAULT_MONITOR@" alias if pactl isn't available or
// none of its sources look like a monitor.
func findMonitorDevice(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pactl", "list", "short", "sources")
	output, err := cmd.Output()
	if err != nil {
		return "@DEFAULT_MONITOR@", nil
	}

	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && strings.Contains(fields[1], ".monitor") {
			return fields[1], nil
		}
	}
	return "@DEFAULT_MONITOR@", nil
}

package desktop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
)

var gstInitOnce sync.Once

// initGStreamer initialises the GStreamer library. Safe to call more than
// once; only the first call does anything.
func initGStreamer() {
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
}

// gstSample is one buffer pulled off a pipeline's appsink.
type gstSample struct {
	Data      []byte
	PTS       time.Duration
	Keyframe  bool
}

// gstPipeline wraps a GStreamer pipeline that terminates in an appsink named
// "sink", delivering its buffers on a bounded channel. Used for both the
// audio capture pipeline (pulsesrc ! ... ! opusenc ! appsink) and any future
// GStreamer-backed capture path.
type gstPipeline struct {
	pipeline *gst.Pipeline
	appsink  *app.Sink
	sampleCh chan gstSample
	running  atomic.Bool
	stopOnce sync.Once
}

// newGstPipeline parses pipelineStr and resolves its terminal appsink,
// which must be named "sink".
func newGstPipeline(pipelineStr string) (*gstPipeline, error) {
	initGStreamer()

	pipeline, err := gst.NewPipelineFromString(pipelineStr)
	if err != nil {
		return nil, fmt.Errorf("desktop: parse gstreamer pipeline: %w", err)
	}

	elem, err := pipeline.GetElementByName("sink")
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("desktop: gstreamer pipeline has no \"sink\" element: %w", err)
	}
	appsink := app.SinkFromElement(elem)
	if appsink == nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("desktop: element \"sink\" is not an appsink")
	}

	return &gstPipeline{
		pipeline: pipeline,
		appsink:  appsink,
		sampleCh: make(chan gstSample, 16),
	}, nil
}

func (g *gstPipeline) Start(ctx context.Context) error {
	if g.running.Load() {
		return nil
	}

	g.appsink.SetProperty("emit-signals", true)
	g.appsink.SetProperty("max-buffers", uint(8))
	g.appsink.SetProperty("drop", true)
	g.appsink.SetProperty("sync", false)
	g.appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: g.onNewSample,
	})

	if err := g.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("desktop: gstreamer pipeline play: %w", err)
	}
	g.running.Store(true)

	go g.watchBus(ctx)
	return nil
}

func (g *gstPipeline) onNewSample(sink *app.Sink) gst.FlowReturn {
	if !g.running.Load() {
		return gst.FlowEOS
	}
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}
	mapInfo := buffer.Map(gst.MapRead)
	if mapInfo == nil {
		return gst.FlowOK
	}
	data := make([]byte, len(mapInfo.Bytes()))
	copy(data, mapInfo.Bytes())
	buffer.Unmap()

	var pts time.Duration
	if d := buffer.PresentationTimestamp().AsDuration(); d != nil {
		pts = *d
	}
	keyframe := !buffer.HasFlags(gst.BufferFlagDeltaUnit)

	select {
	case g.sampleCh <- gstSample{Data: data, PTS: pts, Keyframe: keyframe}:
	default:
		// Drop rather than block the GStreamer streaming thread.
	}
	return gst.FlowOK
}

func (g *gstPipeline) watchBus(ctx context.Context) {
	bus := g.pipeline.GetPipelineBus()
	if bus == nil {
		return
	}
	for g.running.Load() {
		select {
		case <-ctx.Done():
			g.Stop()
			return
		default:
		}
		msg := bus.TimedPop(gst.ClockTime(100 * time.Millisecond))
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			g.Stop()
			return
		case gst.MessageError:
			g.Stop()
			return
		}
	}
}

// Samples returns the channel of pulled buffers. Closed when the pipeline stops.
func (g *gstPipeline) Samples() <-chan gstSample {
	return g.sampleCh
}

func (g *gstPipeline) Stop() {
	g.stopOnce.Do(func() {
		g.running.Store(false)
		if g.pipeline != nil {
			g.pipeline.SetState(gst.StateNull)
		}
		close(g.sampleCh)
	})
}

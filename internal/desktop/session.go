package desktop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// SessionConfig carries the resolved server configuration needed to stand
// up one session's capture/convert/encode/send chain.
type SessionConfig struct {
	CaptureRect      Rect
	FPS              int
	VideoBitrateBps  int
	GOPSize          int
	ConverterThreads int
	Audio            AudioConfig
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CaptureRect:      Rect{X: 0, Y: 0, W: 1920, H: 1080},
		FPS:              60,
		VideoBitrateBps:  6_000_000,
		GOPSize:          120,
		ConverterThreads: 8,
		Audio:            DefaultAudioConfig(),
	}
}

// Session owns every per-connection resource: the screen grabber, the
// converter's worker pool, both encoders, the audio capturer, the input
// injector, and the Sender multiplexing both onto the connection. It is
// constructed after a successful protocol upgrade and spawns a video
// goroutine and an audio goroutine, each holding a reference to the
// session's context so the last goroutine to exit is the one that tears
// everything down — the Go idiom for the reference-counted "last strong
// reference destroys" teardown the original threading model relies on.
type Session struct {
	id string

	cfg SessionConfig

	grabber  ScreenGrabber
	conv     *PixelConverter
	venc     *VideoEncoder
	audioCap AudioCapturer
	sender   *Sender
	injector InputInjector

	control *ControlReader

	raw   *RawFrame
	yuv   *PlanarYUVFrame

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
	stopOnce sync.Once

	metrics *StreamMetrics
}

// NewSession wires up one session's collaborators. The caller is
// responsible for closing conn; Session only ever writes to and reads from
// it via the Sender/ControlReader abstractions.
func NewSession(id string, cfg SessionConfig, conn *websocket.Conn) (*Session, error) {
	grabber, err := NewScreenGrabber(0)
	if err != nil {
		return nil, err
	}

	conv, err := NewPixelConverter(cfg.ConverterThreads, cfg.CaptureRect.W, cfg.CaptureRect.H)
	if err != nil {
		grabber.Close()
		return nil, err
	}

	venc, err := NewVideoEncoder(VideoEncoderConfig{
		Width:      cfg.CaptureRect.W,
		Height:     cfg.CaptureRect.H,
		BitrateBps: cfg.VideoBitrateBps,
		FPS:        cfg.FPS,
		GOPSize:    cfg.GOPSize,
	})
	if err != nil {
		conv.Close()
		grabber.Close()
		return nil, err
	}

	injector := NewInputInjector()

	s := &Session{
		id:       id,
		cfg:      cfg,
		grabber:  grabber,
		conv:     conv,
		venc:     venc,
		audioCap: NewAudioCapturer(cfg.Audio),
		sender:   NewSender(conn, websocket.BinaryMessage),
		injector: injector,
		raw:      NewRawFrame(cfg.CaptureRect.W, cfg.CaptureRect.H, PixelFormatBGRA),
		yuv:      NewPlanarYUVFrame(cfg.CaptureRect.W, cfg.CaptureRect.H),
		done:     make(chan struct{}),
		metrics:  newStreamMetrics(),
	}
	s.control = NewControlReader(wsMessageReader{conn}, injector)
	s.running.Store(true)
	return s, nil
}

// wsMessageReader adapts *websocket.Conn to controlMessageReader, discarding
// the message-type return value since the control channel is always text/JSON.
type wsMessageReader struct {
	conn *websocket.Conn
}

func (r wsMessageReader) ReadMessage() ([]byte, error) {
	_, data, err := r.conn.ReadMessage()
	return data, err
}

// Run starts the video and audio workers and blocks until both have exited
// (on error, or on Stop being called from the control reader's goroutine
// when the connection closes).
func (s *Session) Run(ctx context.Context) {
	s.wg.Add(1)
	go s.runVideo()

	if s.audioCap != nil {
		s.wg.Add(1)
		go s.runAudio(ctx)
	}

	go s.runControl()

	s.wg.Wait()
	s.Stop()
}

func (s *Session) runControl() {
	if err := s.control.Run(); err != nil {
		slog.Warn("control loop exited", "session", s.id, "error", err)
	}
	s.Stop()
}

func (s *Session) runVideo() {
	defer s.wg.Done()
	defer s.Stop()

	sched := NewFrameScheduler(FrameSchedulerConfig{FPS: s.cfg.FPS}, s.videoStep)
	if err := sched.Run(&s.running); err != nil {
		slog.Warn("video loop exited", "session", s.id, "error", err)
	}
}

func (s *Session) videoStep(frameIndex int64) error {
	t1 := time.Now()
	if err := s.grabber.Grab(s.cfg.CaptureRect, s.raw); err != nil {
		return err
	}
	t2 := time.Now()
	s.metrics.RecordCapture(t2.Sub(t1))

	s.conv.Convert(s.raw.Pix, s.raw.Stride, s.yuv.Y, s.yuv.U, s.yuv.V, s.yuv.StrideY, s.yuv.StrideU, s.yuv.StrideV)
	t3 := time.Now()
	s.metrics.RecordConvert(t3.Sub(t2))

	s.yuv.PTS = frameIndex
	au, err := s.venc.Encode(s.yuv, frameIndex == 0)
	if err != nil {
		return err
	}
	s.metrics.RecordEncode(time.Since(t3), len(au.Data))

	if len(au.Data) == 0 {
		return nil
	}
	if err := s.sender.SendVideo(au); err != nil {
		return err
	}
	s.metrics.RecordVideoSent(len(au.Data))
	return nil
}

func (s *Session) runAudio(ctx context.Context) {
	defer s.wg.Done()
	defer s.Stop()

	frames, err := s.audioCap.Start(ctx)
	if err != nil {
		slog.Warn("audio capture start failed", "session", s.id, "error", err)
		return
	}
	defer s.audioCap.Stop()

	for s.running.Load() {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := s.sender.SendAudio(frame); err != nil {
				slog.Warn("audio loop exited", "session", s.id, "error", err)
				return
			}
			s.metrics.RecordAudioSent(len(frame.Data))
		case <-s.done:
			return
		}
	}
}

// Stop tears down the session at most once: stops the loops, releases the
// grabber/encoder/audio/input handles. Safe to call from any goroutine,
// including concurrently from both workers on simultaneous failure.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.done)

		if s.venc != nil {
			s.venc.Close()
		}
		if s.conv != nil {
			s.conv.Close()
		}
		if s.grabber != nil {
			s.grabber.Close()
		}
		if s.injector != nil {
			s.injector.Close()
		}

		snap := s.metrics.Snapshot()
		slog.Info("session stopped",
			"session", s.id,
			"framesCaptured", snap.FramesCaptured,
			"framesSent", snap.FramesSent,
			"audioFramesSent", snap.AudioFramesSent,
			"uptime", snap.Uptime.Round(time.Second),
		)
	})
}

package desktop

import (
	"errors"
	"log/slog"
	"sync"
)

// VideoEncoderConfig parameterises the H.264 bitstream produced for a
// session: baseline profile, zero-latency, no B-frames, IDR every GOPSize
// frames so a late-joining viewer never waits more than one GOP for a
// decodable frame.
type VideoEncoderConfig struct {
	Width, Height int
	BitrateBps    int
	FPS           int
	GOPSize       int
}

func DefaultVideoEncoderConfig(width, height int) VideoEncoderConfig {
	return VideoEncoderConfig{
		Width:      width,
		Height:     height,
		BitrateBps: 4_000_000,
		FPS:        30,
		GOPSize:    60,
	}
}

// videoBackend is implemented by each concrete H.264 encoder. Backends are
// not safe for concurrent use; VideoEncoder serialises access with a mutex.
type videoBackend interface {
	Encode(frame *PlanarYUVFrame, forceKeyframe bool) (AccessUnit, error)
	Close() error
	Name() string
}

type videoBackendFactory func(cfg VideoEncoderConfig) (videoBackend, error)

// VideoEncoder wraps the active H.264 backend. It tries openh264 first and
// falls back to a passthrough backend if the shared library can't be
// loaded, so a session still starts (with degraded video) on a host missing
// libopenh264.
type VideoEncoder struct {
	mu      sync.Mutex
	cfg     VideoEncoderConfig
	backend videoBackend
}

func NewVideoEncoder(cfg VideoEncoderConfig) (*VideoEncoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("desktop: video encoder requires positive dimensions")
	}
	if cfg.BitrateBps <= 0 {
		cfg.BitrateBps = DefaultVideoEncoderConfig(cfg.Width, cfg.Height).BitrateBps
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultVideoEncoderConfig(cfg.Width, cfg.Height).FPS
	}
	if cfg.GOPSize <= 0 {
		cfg.GOPSize = DefaultVideoEncoderConfig(cfg.Width, cfg.Height).GOPSize
	}

	backend, err := newOpenH264Backend(cfg)
	if err != nil {
		slog.Warn("openh264 backend unavailable, falling back to passthrough video backend", "error", err)
		backend, err = newPassthroughVideoBackend(cfg)
		if err != nil {
			return nil, err
		}
	}

	return &VideoEncoder{cfg: cfg, backend: backend}, nil
}

// Encode produces one AccessUnit from a planar frame. forceKeyframe requests
// an IDR regardless of the GOP counter; Session.videoStep sets this for the
// first frame of a session (frame index 0) and no other caller requests it.
func (v *VideoEncoder) Encode(frame *PlanarYUVFrame, forceKeyframe bool) (AccessUnit, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.backend == nil {
		return AccessUnit{}, errors.New("desktop: video encoder closed")
	}
	return v.backend.Encode(frame, forceKeyframe)
}

func (v *VideoEncoder) BackendName() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.backend == nil {
		return ""
	}
	return v.backend.Name()
}

func (v *VideoEncoder) Close() error {
	v.mu.Lock()
	backend := v.backend
	v.backend = nil
	v.mu.Unlock()
	if backend == nil {
		return nil
	}
	return backend.Close()
}

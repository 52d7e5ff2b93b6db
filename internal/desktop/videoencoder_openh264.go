package desktop

import (
	"fmt"

	"github.com/y9o/go-openh264/openh264"
)

// openH264Backend drives the OpenH264 encoder in camera/real-time mode:
// baseline profile, no B-frames, and a fixed IDR period so the bitstream
// never forces a viewer to wait more than one GOP for a keyframe.
type openH264Backend struct {
	enc        *openh264.Encoder
	width      int
	height     int
	sinceIDR   int
	gopSize    int
}

func newOpenH264Backend(cfg VideoEncoderConfig) (videoBackend, error) {
	enc, err := openh264.NewEncoder(&openh264.EncoderConfig{
		Width:          cfg.Width,
		Height:         cfg.Height,
		BitrateBps:     cfg.BitrateBps,
		MaxFPS:         float32(cfg.FPS),
		UsageType:      openh264.CameraVideoRealTime,
		Profile:        openh264.ProfileBaseline,
		EnableDenoise:  false,
		IntraPeriod:    cfg.GOPSize,
	})
	if err != nil {
		return nil, fmt.Errorf("desktop: openh264 init: %w", err)
	}
	return &openH264Backend{enc: enc, width: cfg.Width, height: cfg.Height, gopSize: cfg.GOPSize}, nil
}

func (b *openH264Backend) Encode(frame *PlanarYUVFrame, forceKeyframe bool) (AccessUnit, error) {
	if forceKeyframe || b.sinceIDR >= b.gopSize {
		b.enc.ForceIntraFrame()
		b.sinceIDR = 0
	}

	nals, frameType, err := b.enc.EncodeYUV420(frame.Y, frame.U, frame.V, frame.StrideY, frame.StrideU, frame.StrideV)
	if err != nil {
		return AccessUnit{}, fmt.Errorf("desktop: openh264 encode: %w", err)
	}
	b.sinceIDR++

	isKeyframe := frameType == openh264.FrameTypeIDR
	if isKeyframe {
		b.sinceIDR = 0
	}

	return AccessUnit{Data: nals, Keyframe: isKeyframe}, nil
}

func (b *openH264Backend) Close() error {
	return b.enc.Close()
}

func (b *openH264Backend) Name() string {
	return "openh264"
}

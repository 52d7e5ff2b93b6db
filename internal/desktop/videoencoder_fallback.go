package desktop

// passthroughVideoBackend is used only when libopenh264 can't be loaded on
// the host. It ships raw planar YUV tagged as a permanent keyframe so a
// session still comes up (at far higher bandwidth) instead of failing
// outright; operators are expected to notice the "passthrough" backend name
// in logs and fix the host's codec library.
type passthroughVideoBackend struct {
	width, height int
}

func newPassthroughVideoBackend(cfg VideoEncoderConfig) (videoBackend, error) {
	return &passthroughVideoBackend{width: cfg.Width, height: cfg.Height}, nil
}

func (p *passthroughVideoBackend) Encode(frame *PlanarYUVFrame, forceKeyframe bool) (AccessUnit, error) {
	out := make([]byte, 0, len(frame.Y)+len(frame.U)+len(frame.V))
	out = append(out, frame.Y...)
	out = append(out, frame.U...)
	out = append(out, frame.V...)
	return AccessUnit{Data: out, Keyframe: true}, nil
}

func (p *passthroughVideoBackend) Close() error {
	return nil
}

func (p *passthroughVideoBackend) Name() string {
	return "passthrough"
}

// Package desktop implements the capture → convert → encode → multiplex
// pipeline that drives one remote-desktop viewing session: grabbing the
// configured display rectangle, converting it to planar YUV420, encoding
// H.264 video and Opus audio, and handing both to the Sender for delivery
// over one WebSocket connection per session.
package desktop

import "errors"

// PixelFormat describes the byte order of a Raw Frame's packed pixels.
type PixelFormat int

const (
	// PixelFormatBGRA is 4 bytes per pixel, B,G,R,X in memory order — the
	// layout X11's MIT-SHM extension hands back on a 24/32-bit-depth screen.
	PixelFormatBGRA PixelFormat = iota
	// PixelFormatRGB is 4 bytes per pixel, R,G,B,X in memory order.
	PixelFormatRGB
)

// Rect is a capture rectangle in host display coordinates.
type Rect struct {
	X, Y, W, H int
}

// RawFrame is a caller-owned packed-pixel buffer produced by a ScreenGrabber
// and consumed in place by the PixelConverter. The buffer is reused every
// iteration; callers must not retain Pix past the next Grab call.
type RawFrame struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
	Format PixelFormat
}

// NewRawFrame allocates a RawFrame sized for w×h packed pixels with stride
// w*4 (no row padding).
func NewRawFrame(w, h int, format PixelFormat) *RawFrame {
	stride := w * 4
	return &RawFrame{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Width:  w,
		Height: h,
		Format: format,
	}
}

// PlanarYUVFrame is a 4:2:0 planar frame with independent strides per plane,
// reused every Frame Scheduler iteration and stamped with a monotonic,
// gap-free presentation timestamp (a plain frame index starting at 0).
type PlanarYUVFrame struct {
	Y, U, V             []byte
	StrideY, StrideU, StrideV int
	Width, Height       int
	PTS                 int64
}

// NewPlanarYUVFrame allocates 4:2:0 planes for a w×h frame (w,h need not be
// even; chroma planes round up to ⌈w/2⌉×⌈h/2⌉ per spec).
func NewPlanarYUVFrame(w, h int) *PlanarYUVFrame {
	cw, ch := (w+1)/2, (h+1)/2
	return &PlanarYUVFrame{
		Y:       make([]byte, w*h),
		U:       make([]byte, cw*ch),
		V:       make([]byte, cw*ch),
		StrideY: w,
		StrideU: cw,
		StrideV: cw,
		Width:   w,
		Height:  h,
	}
}

// AccessUnit is one compressed output unit from the Video Encoder Adapter.
type AccessUnit struct {
	Data      []byte
	Keyframe  bool
}

// ErrNotSupported is returned when a collaborator (capture, audio, input) has
// no implementation for the running platform.
var ErrNotSupported = errors.New("desktop: not supported on this platform")

// ErrCaptureFailed is returned by a ScreenGrabber when a single grab call
// fails; per spec this ends the video loop without retry.
var ErrCaptureFailed = errors.New("desktop: capture failed")

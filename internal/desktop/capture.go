package desktop

// ScreenGrabber captures one display rectangle per call, compositing the
// system cursor into the result. Implementations reuse the RawFrame buffer
// passed to Grab across calls; callers must not hold a reference to its Pix
// slice past the next Grab.
type ScreenGrabber interface {
	// Grab fills dst with the current contents of rect, blending the system
	// cursor on top. Returns ErrCaptureFailed if the underlying capture API
	// reports a failure.
	Grab(rect Rect, dst *RawFrame) error
	// Bounds returns the size of the display being captured.
	Bounds() (width, height int, err error)
	Close() error
}

// NewScreenGrabber creates a platform-specific ScreenGrabber for the given
// display index.
func NewScreenGrabber(displayIndex int) (ScreenGrabber, error) {
	return newPlatformGrabber(displayIndex)
}

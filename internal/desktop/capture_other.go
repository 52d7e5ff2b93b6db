//go:build !linux

package desktop

// newPlatformGrabber returns an error on non-Linux platforms; capture is
// only implemented against X11.
func newPlatformGrabber(displayIndex int) (ScreenGrabber, error) {
	return nil, ErrNotSupported
}

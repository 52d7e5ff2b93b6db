//go:build linux && !cgo

package desktop

// newPlatformGrabber returns an error on Linux when built without CGO,
// since screen capture requires X11 libraries via CGO.
func newPlatformGrabber(displayIndex int) (ScreenGrabber, error) {
	return nil, ErrNotSupported
}

//go:build linux

package desktop

import (
	"os/exec"
	"strconv"
)

// xdotoolInjector dispatches input by exec'ing xdotool once per call.
// There is no internal buffering, so Flush is a no-op; it exists on the
// interface for backends (e.g. a uinput-based injector) that do batch.
type xdotoolInjector struct{}

func NewInputInjector() InputInjector {
	return &xdotoolInjector{}
}

func (x *xdotoolInjector) Move(px, py int) error {
	return exec.Command("xdotool", "mousemove", strconv.Itoa(px), strconv.Itoa(py)).Run()
}

func (x *xdotoolInjector) Button(n int, down bool) error {
	action := "mousedown"
	if !down {
		action = "mouseup"
	}
	return exec.Command("xdotool", action, strconv.Itoa(n)).Run()
}

func (x *xdotoolInjector) Flush() error {
	return nil
}

func (x *xdotoolInjector) Close() error {
	return nil
}

var _ InputInjector = (*xdotoolInjector)(nil)

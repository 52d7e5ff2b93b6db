package desktop

// InputInjector dispatches pointer and scroll events into the host input
// system. Button numbers follow X11 convention: 1 = left, 2 = middle,
// 3 = right, 4 = scroll up, 5 = scroll down.
type InputInjector interface {
	Move(x, y int) error
	Button(n int, down bool) error
	Flush() error
	Close() error
}

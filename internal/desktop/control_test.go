package desktop

import (
	"fmt"
	"io"
	"testing"
)

// recordingInjector records every call in order, so tests can assert exact
// call sequences rather than just final state.
type recordingInjector struct {
	calls []string
}

func (r *recordingInjector) Move(x, y int) error {
	r.calls = append(r.calls, fmt.Sprintf("move(%d,%d)", x, y))
	return nil
}

func (r *recordingInjector) Button(n int, down bool) error {
	r.calls = append(r.calls, fmt.Sprintf("button(%d,%v)", n, down))
	return nil
}

func (r *recordingInjector) Flush() error { return nil }
func (r *recordingInjector) Close() error { return nil }

// canionMessageReader replays a fixed list of JSON messages, then returns
// io.EOF, matching controlMessageReader for tests.
type canionMessageReader struct {
	messages [][]byte
	i        int
}

func (c *canionMessageReader) ReadMessage() ([]byte, error) {
	if c.i >= len(c.messages) {
		return nil, io.EOF
	}
	m := c.messages[c.i]
	c.i++
	return m, nil
}

func TestTouchSequenceDispatchesMoveAndButton(t *testing.T) {
	inj := &recordingInjector{}
	reader := &canionMessageReader{messages: [][]byte{
		[]byte(`{"type":"touchstart","x":10,"y":20}`),
		[]byte(`{"type":"touchmove","x":15,"y":25}`),
		[]byte(`{"type":"touchend","x":15,"y":25}`),
	}}

	r := NewControlReader(reader, inj)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"move(10,20)",
		"button(1,true)",
		"move(15,25)",
		"move(15,25)",
		"button(1,false)",
	}
	if len(inj.calls) != len(want) {
		t.Fatalf("got %v, want %v", inj.calls, want)
	}
	for i := range want {
		if inj.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, inj.calls[i], want[i])
		}
	}
}

func TestScrollEmitsExactlyOneClickBelowThreshold(t *testing.T) {
	inj := &recordingInjector{}
	reader := &canionMessageReader{messages: [][]byte{
		[]byte(`{"type":"scroll","deltaY":0.4}`),
		[]byte(`{"type":"scroll","deltaY":0.4}`),
		[]byte(`{"type":"scroll","deltaY":0.4}`),
	}}

	r := NewControlReader(reader, inj)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}

	want := []string{"button(5,true)", "button(5,false)"}
	if len(inj.calls) != len(want) {
		t.Fatalf("got %v, want %v", inj.calls, want)
	}
	for i := range want {
		if inj.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, inj.calls[i], want[i])
		}
	}
}

func TestScrollNegativeDeltaUsesButtonFour(t *testing.T) {
	r := NewControlReader(&canionMessageReader{}, &recordingInjector{})
	inj := r.injector.(*recordingInjector)

	// floor(-0.6) == -1: exactly one click.
	r.scroll(-0.6)

	if len(inj.calls) != 2 {
		t.Fatalf("expected one click (2 calls), got %v", inj.calls)
	}
	if inj.calls[0] != "button(4,true)" || inj.calls[1] != "button(4,false)" {
		t.Fatalf("unexpected calls: %v", inj.calls)
	}
}

func TestScrollResidualAccumulatesAcrossCalls(t *testing.T) {
	r := NewControlReader(&canionMessageReader{}, &recordingInjector{})
	inj := r.injector.(*recordingInjector)

	// Three deltas of 0.34 sum to just over 1.0: exactly one click should
	// fire, on the third call, and the residual should carry the remainder
	// rather than resetting to zero after each call.
	r.scroll(0.34)
	if len(inj.calls) != 0 {
		t.Fatalf("no click expected yet, got %v", inj.calls)
	}
	r.scroll(0.34)
	if len(inj.calls) != 0 {
		t.Fatalf("no click expected yet, got %v", inj.calls)
	}
	r.scroll(0.34)
	if len(inj.calls) != 2 {
		t.Fatalf("expected one click now, got %v", inj.calls)
	}
}

func TestMalformedMessageIsSkippedNotFatal(t *testing.T) {
	inj := &recordingInjector{}
	reader := &canionMessageReader{messages: [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"touchstart","x":1,"y":2}`),
	}}

	r := NewControlReader(reader, inj)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}

	if len(inj.calls) != 2 {
		t.Fatalf("expected the well-formed message to still dispatch, got %v", inj.calls)
	}
}

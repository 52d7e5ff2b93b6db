package desktop

import (
	"sync"
	"testing"
)

// recordingWriter records each WriteMessage call's first byte and a copy of
// the full payload, so tests can assert both tagging and that no caller's
// write is torn across two calls (which would show up as a payload with an
// unexpected length or a missing tag byte).
type recordingWriter struct {
	mu    sync.Mutex
	calls [][]byte
}

func (w *recordingWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	w.calls = append(w.calls, cp)
	return nil
}

func TestSendVideoTagsFirstByte(t *testing.T) {
	w := &recordingWriter{}
	s := NewSender(w, 2)

	if err := s.SendVideo(AccessUnit{Data: []byte{0xAA, 0xBB}}); err != nil {
		t.Fatal(err)
	}

	if len(w.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(w.calls))
	}
	got := w.calls[0]
	if got[0] != streamTagVideo {
		t.Fatalf("expected tag %#x, got %#x", streamTagVideo, got[0])
	}
	if string(got[1:]) != "\xAA\xBB" {
		t.Fatalf("unexpected payload: %v", got[1:])
	}
}

func TestSendAudioTagsFirstByte(t *testing.T) {
	w := &recordingWriter{}
	s := NewSender(w, 2)

	if err := s.SendAudio(AudioFrame{Data: []byte{0x01, 0x02, 0x03}}); err != nil {
		t.Fatal(err)
	}

	got := w.calls[0]
	if got[0] != streamTagAudio {
		t.Fatalf("expected tag %#x, got %#x", streamTagAudio, got[0])
	}
}

// TestConcurrentSendsNeverInterleave drives many concurrent video and audio
// sends through one Sender and checks that every recorded call is a single,
// complete, correctly tagged message — never a partial write from one
// goroutine interleaved with another's.
func TestConcurrentSendsNeverInterleave(t *testing.T) {
	w := &recordingWriter{}
	s := NewSender(w, 2)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			s.SendVideo(AccessUnit{Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}})
		}()
		go func() {
			defer wg.Done()
			s.SendAudio(AudioFrame{Data: []byte{9, 8, 7, 6}})
		}()
	}
	wg.Wait()

	if len(w.calls) != 2*n {
		t.Fatalf("expected %d calls, got %d", 2*n, len(w.calls))
	}
	for _, call := range w.calls {
		switch call[0] {
		case streamTagVideo:
			if len(call) != 9 {
				t.Fatalf("video call has wrong length %d, payload corrupted by interleaving", len(call))
			}
		case streamTagAudio:
			if len(call) != 5 {
				t.Fatalf("audio call has wrong length %d, payload corrupted by interleaving", len(call))
			}
		default:
			t.Fatalf("unexpected tag byte %#x", call[0])
		}
	}
}

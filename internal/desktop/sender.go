package desktop

import "sync"

const (
	streamTagVideo byte = 0x01
	streamTagAudio byte = 0x02
)

// frameWriter is the write side of the transport the Sender multiplexes
// onto. Satisfied by *websocket.Conn in production; tests supply a mock
// that records call boundaries to verify no two writes interleave.
type frameWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// Sender serialises writes from the video and audio goroutines onto one
// transport, prefixing each payload with its stream tag. It holds its mutex
// across exactly one write and never across an encode or capture call.
type Sender struct {
	mu   sync.Mutex
	conn frameWriter

	// binaryMessageType is passed straight through to frameWriter.WriteMessage;
	// kept as a field rather than a gorilla/websocket import here so this
	// file has no direct dependency on the websocket package.
	binaryMessageType int
}

func NewSender(conn frameWriter, binaryMessageType int) *Sender {
	return &Sender{conn: conn, binaryMessageType: binaryMessageType}
}

// SendVideo writes one compressed access unit tagged as video.
func (s *Sender) SendVideo(au AccessUnit) error {
	return s.send(streamTagVideo, au.Data)
}

// SendAudio writes one Opus packet tagged as audio.
func (s *Sender) SendAudio(frame AudioFrame) error {
	return s.send(streamTagAudio, frame.Data)
}

func (s *Sender) send(tag byte, payload []byte) error {
	msg := make([]byte, 1+len(payload))
	msg[0] = tag
	copy(msg[1:], payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(s.binaryMessageType, msg)
}

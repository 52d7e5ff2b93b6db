package desktop

import (
	"sync"
	"time"
)

// StreamMetrics tracks real-time performance data for one session. Never
// gates correctness; consulted only for periodic slog.Info summaries.
type StreamMetrics struct {
	mu sync.RWMutex

	FramesCaptured uint64
	FramesConverted uint64
	FramesEncoded  uint64
	FramesSent     uint64
	AudioFramesSent uint64

	LastCaptureTime time.Duration
	LastConvertTime time.Duration
	LastEncodeTime  time.Duration
	LastFrameSize   int

	TotalBytesSent uint64
	startTime      time.Time
}

func newStreamMetrics() *StreamMetrics {
	return &StreamMetrics{startTime: time.Now()}
}

func (m *StreamMetrics) RecordCapture(d time.Duration) {
	m.mu.Lock()
	m.FramesCaptured++
	m.LastCaptureTime = d
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordConvert(d time.Duration) {
	m.mu.Lock()
	m.FramesConverted++
	m.LastConvertTime = d
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordEncode(d time.Duration, size int) {
	m.mu.Lock()
	m.FramesEncoded++
	m.LastEncodeTime = d
	m.LastFrameSize = size
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordVideoSent(size int) {
	m.mu.Lock()
	m.FramesSent++
	m.TotalBytesSent += uint64(size)
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordAudioSent(size int) {
	m.mu.Lock()
	m.AudioFramesSent++
	m.TotalBytesSent += uint64(size)
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time copy of metrics for logging.
type MetricsSnapshot struct {
	FramesCaptured  uint64
	FramesConverted uint64
	FramesEncoded   uint64
	FramesSent      uint64
	AudioFramesSent uint64
	CaptureMs       float64
	ConvertMs       float64
	EncodeMs        float64
	LastFrameSize   int
	BandwidthKBps   float64
	Uptime          time.Duration
}

func (m *StreamMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.startTime)
	bw := float64(0)
	if uptime.Seconds() > 0 {
		bw = float64(m.TotalBytesSent) / uptime.Seconds() / 1024.0
	}

	return MetricsSnapshot{
		FramesCaptured:  m.FramesCaptured,
		FramesConverted: m.FramesConverted,
		FramesEncoded:   m.FramesEncoded,
		FramesSent:      m.FramesSent,
		AudioFramesSent: m.AudioFramesSent,
		CaptureMs:       float64(m.LastCaptureTime.Microseconds()) / 1000.0,
		ConvertMs:       float64(m.LastConvertTime.Microseconds()) / 1000.0,
		EncodeMs:        float64(m.LastEncodeTime.Microseconds()) / 1000.0,
		LastFrameSize:   m.LastFrameSize,
		BandwidthKBps:   bw,
		Uptime:          uptime,
	}
}

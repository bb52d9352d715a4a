package pipeline

import "time"

// Default tuning mirroring the application defaults.
const (
	DefaultMaxQueueSize = 3
	DefaultChunkSeconds = 3.0
	DefaultThreshold    = 0.001
	DefaultPollTimeout  = 100 * time.Millisecond
	DefaultClearDelay   = 2 * time.Second

	// ModelSampleRate is the rate the transcription service expects.
	ModelSampleRate = 16000
)

// ChunkQueue is the bounded FIFO between the capture worker and the
// processing worker. The producer never blocks: at capacity the incoming
// chunk is dropped, trading completeness for bounded memory and latency.
// The consumer polls with a timeout so its idle silence check runs at a
// bounded cadence even when no audio arrives.
//
// The capture sample rate is stamped once, before either worker starts,
// and is read-only afterwards; no locking is needed for it.
type ChunkQueue struct {
	ch         chan []float32
	sampleRate int
}

// NewChunkQueue creates a queue holding at most capacity chunks.
func NewChunkQueue(capacity int) *ChunkQueue {
	if capacity <= 0 {
		capacity = DefaultMaxQueueSize
	}
	return &ChunkQueue{ch: make(chan []float32, capacity)}
}

// SetSampleRate stamps the capture rate. Must be called before the
// workers start.
func (q *ChunkQueue) SetSampleRate(rate int) {
	q.sampleRate = rate
}

// SampleRate returns the stamped capture rate, or zero if unset.
func (q *ChunkQueue) SampleRate() int {
	return q.sampleRate
}

// TryEnqueue appends chunk unless the queue is at capacity. It reports
// whether the chunk was accepted; false means the chunk was dropped.
func (q *ChunkQueue) TryEnqueue(chunk []float32) bool {
	select {
	case q.ch <- chunk:
		return true
	default:
		return false
	}
}

// Dequeue waits up to timeout for a chunk; ok is false on timeout.
func (q *ChunkQueue) Dequeue(timeout time.Duration) (chunk []float32, ok bool) {
	select {
	case chunk = <-q.ch:
		return chunk, true
	case <-time.After(timeout):
		return nil, false
	}
}

// Len returns the number of queued chunks.
func (q *ChunkQueue) Len() int {
	return len(q.ch)
}

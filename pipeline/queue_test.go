package pipeline

import (
	"testing"
	"time"
)

// TestChunkQueue_DropOnFull tests that a full queue discards the incoming
// chunk and keeps the existing chunks unchanged, in order.
func TestChunkQueue_DropOnFull(t *testing.T) {
	q := NewChunkQueue(3)

	for i, c := range [][]float32{{1}, {2}, {3}} {
		if !q.TryEnqueue(c) {
			t.Fatalf("TryEnqueue(chunk %d) = false, want true", i)
		}
	}

	if q.TryEnqueue([]float32{4}) {
		t.Errorf("TryEnqueue on full queue = true, want false")
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}

	for i, want := range []float32{1, 2, 3} {
		got, ok := q.Dequeue(10 * time.Millisecond)
		if !ok {
			t.Fatalf("Dequeue %d timed out", i)
		}
		if len(got) != 1 || got[0] != want {
			t.Errorf("Dequeue %d = %v, want [%v]", i, got, want)
		}
	}
}

// TestChunkQueue_DequeueTimeout tests that Dequeue on an empty queue
// returns after roughly the requested timeout.
func TestChunkQueue_DequeueTimeout(t *testing.T) {
	q := NewChunkQueue(1)

	start := time.Now()
	if _, ok := q.Dequeue(20 * time.Millisecond); ok {
		t.Fatal("Dequeue on empty queue = ok, want timeout")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Dequeue returned after %v, want at least 20ms", elapsed)
	}
}

// TestChunkQueue_SampleRate tests the one-shot rate annotation.
func TestChunkQueue_SampleRate(t *testing.T) {
	q := NewChunkQueue(1)
	if got := q.SampleRate(); got != 0 {
		t.Errorf("SampleRate() before stamping = %d, want 0", got)
	}
	q.SetSampleRate(48000)
	if got := q.SampleRate(); got != 48000 {
		t.Errorf("SampleRate() = %d, want 48000", got)
	}
}

// TestChunkQueue_DefaultCapacity tests that a non-positive capacity falls
// back to the default.
func TestChunkQueue_DefaultCapacity(t *testing.T) {
	q := NewChunkQueue(0)
	for i := 0; i < DefaultMaxQueueSize; i++ {
		if !q.TryEnqueue([]float32{float32(i)}) {
			t.Fatalf("TryEnqueue %d = false, want true", i)
		}
	}
	if q.TryEnqueue([]float32{99}) {
		t.Errorf("TryEnqueue beyond default capacity = true, want false")
	}
}

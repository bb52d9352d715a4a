package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errStreamDone = errors.New("stream exhausted")

// fakeStream plays scripted blocks, then either repeats idle forever or
// fails the read.
type fakeStream struct {
	mu       sync.Mutex
	blocks   [][]float32
	i        int
	channels int
	idle     []float32
	delay    time.Duration
}

func (f *fakeStream) ReadBlock() ([]float32, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.i < len(f.blocks) {
		b := f.blocks[f.i]
		f.i++
		return b, nil
	}
	if f.idle == nil {
		return nil, errStreamDone
	}
	return f.idle, nil
}

func (f *fakeStream) Channels() int { return f.channels }

// chanSink forwards lines to a channel so a test can wait for them.
type chanSink struct {
	lines chan string
}

func (s *chanSink) OnNewLine(text string) {
	select {
	case s.lines <- text:
	default:
	}
}

func (s *chanSink) OnClearOverlay() {}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		chunkSeconds float64
		rate         int
		want         int
	}{
		{3.0, 48000, 144000},
		{3.0, 16000, 48000},
		{0.5, 16000, 8000},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.chunkSeconds, tt.rate); got != tt.want {
			t.Errorf("FrameCount(%v, %d) = %d, want %d", tt.chunkSeconds, tt.rate, got, tt.want)
		}
	}
}

// TestCaptureWorker_DropsNewestWhenFull tests that under backpressure the
// oldest queued chunk survives and arrivals are discarded.
func TestCaptureWorker_DropsNewestWhenFull(t *testing.T) {
	blocks := make([][]float32, 5)
	for i := range blocks {
		blocks[i] = []float32{float32(i+1) / 10}
	}
	stream := &fakeStream{blocks: blocks, channels: 1}

	queue := NewChunkQueue(1)
	stop := &StopFlag{}
	capture := NewCaptureWorker(queue, stop, stream, 16000)

	// No consumer: the loop runs until the scripted stream fails.
	capture.Run()

	if got := queue.Len(); got != 1 {
		t.Fatalf("queue length = %d, want 1", got)
	}
	chunk, ok := queue.Dequeue(10 * time.Millisecond)
	if !ok {
		t.Fatal("Dequeue timed out")
	}
	if len(chunk) != 1 || chunk[0] != 0.1 {
		t.Errorf("surviving chunk = %v, want the first block [0.1]", chunk)
	}
}

// TestCaptureWorker_StampsQueueRate tests that the queue carries the
// capture rate before the loop starts.
func TestCaptureWorker_StampsQueueRate(t *testing.T) {
	queue := NewChunkQueue(1)
	NewCaptureWorker(queue, &StopFlag{}, &fakeStream{channels: 2}, 44100)
	if got := queue.SampleRate(); got != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", got)
	}
}

// TestCaptureWorker_DownmixesBeforeEnqueue tests that queued chunks are
// mono regardless of the stream's interleave width.
func TestCaptureWorker_DownmixesBeforeEnqueue(t *testing.T) {
	stream := &fakeStream{
		blocks:   [][]float32{{0.2, 0.4, 0.6, 0.8}},
		channels: 2,
	}
	queue := NewChunkQueue(3)
	capture := NewCaptureWorker(queue, &StopFlag{}, stream, 16000)
	capture.Run()

	chunk, ok := queue.Dequeue(10 * time.Millisecond)
	if !ok {
		t.Fatal("Dequeue timed out")
	}
	want := []float32{0.3, 0.7}
	if len(chunk) != len(want) {
		t.Fatalf("chunk length = %d, want %d", len(chunk), len(want))
	}
	for i := range want {
		if diff := chunk[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("sample %d = %v, want %v", i, chunk[i], want[i])
		}
	}
}

// TestSession_StartStop runs a full session against a fake device stream:
// one voiced block must surface as a translated line, and Stop must join
// both workers promptly.
func TestSession_StartStop(t *testing.T) {
	voiced := make([]float32, 320)
	for i := range voiced {
		voiced[i] = 0.5
	}
	stream := &fakeStream{
		blocks:   [][]float32{voiced},
		channels: 2,
		idle:     make([]float32, 320),
		delay:    2 * time.Millisecond,
	}

	trans := &mockTranscriber{result: sttResult("hola", "es")}
	xlate := &mockTranslator{out: "hello"}
	sink := &chanSink{lines: make(chan string, 8)}

	cfg := Config{
		TargetLang:  "en",
		Threshold:   0.001,
		PollTimeout: time.Millisecond,
	}
	sess := Start(context.Background(), cfg, stream, 16000, trans, xlate, sink)

	select {
	case line := <-sink.lines:
		if line != "hello" {
			t.Errorf("line = %q, want \"hello\"", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no subtitle line within 2s")
	}

	stopped := make(chan struct{})
	go func() {
		sess.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2*JoinTimeout + time.Second):
		t.Fatal("Stop did not return")
	}

	if sess.StartedAt().IsZero() {
		t.Error("StartedAt is zero")
	}
	if trans.calls == 0 {
		t.Error("transcriber never called")
	}
}

package pipeline

import (
	"log/slog"
	"time"
)

// BlockReader is the device stream consumed by the capture worker.
// ReadBlock blocks inside the driver until a full interleaved block is
// available; the returned slice may be reused by the next call. Channels
// reports the interleave width.
type BlockReader interface {
	ReadBlock() ([]float32, error)
	Channels() int
}

// FrameCount returns the fixed per-read block size for a session.
func FrameCount(chunkSeconds float64, rate int) int {
	return int(chunkSeconds * float64(rate))
}

// CaptureWorker reads fixed-size blocks from a device stream, down-mixes
// them to mono by arithmetic mean, and enqueues the chunks. It stamps the
// queue with the capture sample rate at construction, before either
// worker runs.
type CaptureWorker struct {
	queue  *ChunkQueue
	stop   *StopFlag
	stream BlockReader
	rate   int
	done   chan struct{}
}

// NewCaptureWorker wires a device stream to the queue.
func NewCaptureWorker(queue *ChunkQueue, stop *StopFlag, stream BlockReader, rate int) *CaptureWorker {
	queue.SetSampleRate(rate)
	return &CaptureWorker{
		queue:  queue,
		stop:   stop,
		stream: stream,
		rate:   rate,
		done:   make(chan struct{}),
	}
}

// Run captures until the stop flag is observed, checked once per block
// read. Any stream error ends the loop: no retry, no device failover;
// recovery means the owner starts a new session.
func (c *CaptureWorker) Run() {
	defer close(c.done)
	slog.Info("capture worker started", "rate", c.rate, "channels", c.stream.Channels())

	dropped := 0
	for !c.stop.Stopped() {
		block, err := c.stream.ReadBlock()
		if err != nil {
			slog.Error("capture stream read", "error", err)
			return
		}

		mono := DownmixMono(block, c.stream.Channels())
		if !c.queue.TryEnqueue(mono) {
			dropped++
			slog.Debug("queue full, dropping chunk", "dropped", dropped)
		}
	}
	slog.Info("capture worker stopped", "dropped", dropped)
}

// Join waits up to timeout for the loop to exit after the stop flag was
// set. A false return means the worker is still inside a device read.
func (c *CaptureWorker) Join(timeout time.Duration) bool {
	select {
	case <-c.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

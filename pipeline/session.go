package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// JoinTimeout bounds how long Stop waits for each worker to exit.
const JoinTimeout = 2 * time.Second

// Session owns one running worker pair and their shared queue and stop
// flag. Construct a new one per capture; sessions are not reusable.
type Session struct {
	Capture *CaptureWorker
	Worker  *Worker

	queue     *ChunkQueue
	stop      *StopFlag
	startedAt time.Time
}

// Start constructs a fresh queue, stop flag, and worker pair over the
// given device stream and collaborators, and starts both workers.
func Start(ctx context.Context, cfg Config, stream BlockReader, rate int, trans Transcriber, xlate Translator, sink Sink) *Session {
	cfg = cfg.withDefaults()

	queue := NewChunkQueue(cfg.MaxQueueSize)
	stop := &StopFlag{}
	capture := NewCaptureWorker(queue, stop, stream, rate)
	worker := NewWorker(cfg, queue, stop, trans, xlate, sink)

	s := &Session{
		Capture:   capture,
		Worker:    worker,
		queue:     queue,
		stop:      stop,
		startedAt: time.Now(),
	}

	go capture.Run()
	go worker.Run(ctx)
	return s
}

// Stop sets the stop flag and joins both workers. A worker that does not
// exit within JoinTimeout is logged and abandoned; the capture worker in
// particular may still be blocked in a device read until the owner closes
// the stream.
func (s *Session) Stop() {
	s.stop.Set()

	if !s.Capture.Join(JoinTimeout) {
		slog.Warn("capture worker did not stop in time")
	}
	if !s.Worker.Join(JoinTimeout) {
		slog.Warn("processing worker did not stop in time")
	}
}

// StartedAt returns when the session was started.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// QueueLen reports how many chunks are waiting, for status displays.
func (s *Session) QueueLen() int {
	return s.queue.Len()
}

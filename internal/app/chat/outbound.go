/*
This file defines the outbound delivery worker: one per connection, draining
a bounded FIFO queue onto the transport. Enqueue never blocks the router; a
slow consumer loses its oldest pending frames, never the server's memory and
never another connection's delivery.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"
)

// DefaultQueueCapacity bounds a connection's pending outbound frames when no
// explicit capacity is configured.
const DefaultQueueCapacity = 1000

// slowConsumerText is delivered in place of frames dropped on overflow.
const slowConsumerText = "messages dropped due to slow consumer"

// Sink is the transport half the worker writes to. Implementations must
// tolerate Write after Close (returning an error is enough).
type Sink interface {
	Write(p []byte) error
	Close() error
}

// Worker delivers queued frames to a single connection in strict FIFO order.
// It is the only goroutine that ever writes to the connection's sink.
type Worker struct {
	connID string
	sink   Sink

	mu       sync.Mutex
	cond     *sync.Cond
	queue    [][]byte
	capacity int
	// noticeAtHead marks that queue[0] is a slow-consumer status frame;
	// further overflow drops queue[1] instead of stacking notices.
	noticeAtHead bool
	stopped      bool

	// dropFrame builds a fresh slow-consumer status frame at drop time.
	dropFrame func() []byte

	// onFailure is invoked once when a transport write fails. Set before
	// Run starts.
	onFailure func()
	failOnce  sync.Once

	logger zerolog.Logger
}

// NewWorker constructs a delivery worker for one connection. capacity <= 0
// falls back to DefaultQueueCapacity.
func NewWorker(connID string, sink Sink, capacity int, dropFrame func() []byte, logger zerolog.Logger) *Worker {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	w := &Worker{
		connID:    connID,
		sink:      sink,
		capacity:  capacity,
		dropFrame: dropFrame,
		logger:    logger.With().Str("component", "outbound").Str("conn_id", connID).Logger(),
	}
	w.cond = sync.NewCond(&w.mu)

	return w
}

// OnFailure registers the disconnect signal fired on transport write failure.
func (w *Worker) OnFailure(fn func()) {
	w.onFailure = fn
}

// Enqueue appends a frame without ever blocking the caller. At capacity the
// oldest undelivered frame is replaced by a slow-consumer notice; subsequent
// overflow while the notice is still queued drops the oldest real frame.
// Frames enqueued after Stop are discarded.
func (w *Worker) Enqueue(frame []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	if len(w.queue) >= w.capacity {
		if w.noticeAtHead && len(w.queue) > 1 {
			w.queue = append(w.queue[:1], w.queue[2:]...)
		} else {
			w.queue[0] = w.dropFrame()
			w.noticeAtHead = true
		}
		w.logger.Warn().Int("queue_len", len(w.queue)).Msg("Outbound queue full, dropped oldest frame")
	}

	w.queue = append(w.queue, frame)
	w.cond.Signal()
}

// Run drains the queue until Stop is called or a write fails. It must be
// started exactly once, on its own goroutine.
func (w *Worker) Run() {
	for {
		frame, ok := w.next()
		if !ok {
			return
		}

		if err := w.sink.Write(frame); err != nil {
			w.logger.Warn().Err(err).Msg("Transport write failed, signaling disconnect")
			w.fail()
			return
		}
	}
}

// next blocks until a frame is available or the worker is stopped.
func (w *Worker) next() ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for len(w.queue) == 0 && !w.stopped {
		w.cond.Wait()
	}

	if w.stopped {
		return nil, false
	}

	frame := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	w.noticeAtHead = false

	return frame, true
}

// fail fires the disconnect signal exactly once.
func (w *Worker) fail() {
	w.failOnce.Do(func() {
		if w.onFailure != nil {
			w.onFailure()
		}
	})
}

// Stop cancels pending delivery: the queue contents are discarded, the run
// loop exits, and the sink is closed. Safe to call more than once.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.queue = nil
	w.cond.Broadcast()
	w.mu.Unlock()

	if err := w.sink.Close(); err != nil {
		w.logger.Debug().Err(err).Msg("Sink close after stop")
	}
}

// QueueLen reports the number of pending frames.
func (w *Worker) QueueLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

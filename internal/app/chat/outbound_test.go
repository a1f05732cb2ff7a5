package chat_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/chat"
)

var dropNotice = []byte(`{"type":"status","payload":{"text":"dropped"}}`)

// recordSink collects raw frames; optionally blocks each write until released.
type recordSink struct {
	mu      sync.Mutex
	frames  [][]byte
	entered chan struct{}
	release chan struct{}
	failErr error
}

func (s *recordSink) Write(p []byte) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.failErr != nil {
		return s.failErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, p)
	return nil
}

func (s *recordSink) Close() error { return nil }

func (s *recordSink) delivered() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

func newTestWorker(sink chat.Sink, capacity int) *chat.Worker {
	return chat.NewWorker("conn-1", sink, capacity, func() []byte { return dropNotice }, zerolog.Nop())
}

func TestWorkerDeliversFIFO(t *testing.T) {
	sink := &recordSink{}
	w := newTestWorker(sink, 10)
	go w.Run()
	defer w.Stop()

	var want [][]byte
	for i := 0; i < 5; i++ {
		frame := fmt.Appendf(nil, "frame-%d", i)
		want = append(want, frame)
		w.Enqueue(frame)
	}

	waitFor(t, func() bool { return len(sink.delivered()) == 5 })
	assert.Equal(t, want, sink.delivered())
}

func TestWorkerOverflowDropsOldestWithNotice(t *testing.T) {
	sink := &recordSink{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
	w := newTestWorker(sink, 3)
	go w.Run()
	defer w.Stop()

	w.Enqueue([]byte("f1"))
	// Wait until the worker is blocked inside the transport write for f1, so
	// the queue content below is deterministic.
	<-sink.entered

	for i := 2; i <= 6; i++ {
		w.Enqueue(fmt.Appendf(nil, "f%d", i))
	}

	close(sink.release)

	// f2 and f3 overflowed: f2 was replaced by the notice, f3 dropped while
	// the notice was still queued. Delivery order is preserved throughout.
	waitFor(t, func() bool { return len(sink.delivered()) == 5 })
	assert.Equal(t, [][]byte{
		[]byte("f1"),
		dropNotice,
		[]byte("f4"),
		[]byte("f5"),
		[]byte("f6"),
	}, sink.delivered())
}

func TestWorkerEnqueueNeverBlocks(t *testing.T) {
	sink := &recordSink{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	w := newTestWorker(sink, 4)
	go w.Run()
	defer close(sink.release)
	defer w.Stop()

	w.Enqueue([]byte("first"))
	<-sink.entered

	// The consumer is stalled; a burst far beyond capacity must return
	// promptly with the queue still bounded.
	for i := 0; i < 500; i++ {
		w.Enqueue(fmt.Appendf(nil, "burst-%d", i))
	}

	assert.LessOrEqual(t, w.QueueLen(), 5)
}

func TestWorkerStopDiscardsQueue(t *testing.T) {
	sink := &recordSink{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	w := newTestWorker(sink, 10)
	go w.Run()

	w.Enqueue([]byte("inflight"))
	<-sink.entered
	w.Enqueue([]byte("pending-1"))
	w.Enqueue([]byte("pending-2"))

	w.Stop()
	close(sink.release)

	assert.Equal(t, 0, w.QueueLen())

	// Enqueue after stop is a silent no-op.
	w.Enqueue([]byte("late"))
	assert.Equal(t, 0, w.QueueLen())
}

func TestWorkerWriteFailureSignalsOnce(t *testing.T) {
	sink := &recordSink{failErr: errors.New("broken pipe")}
	w := newTestWorker(sink, 10)

	signals := make(chan struct{}, 4)
	w.OnFailure(func() { signals <- struct{}{} })

	go w.Run()
	defer w.Stop()

	w.Enqueue([]byte("doomed"))

	waitFor(t, func() bool { return len(signals) == 1 })
	require.Len(t, signals, 1)
}

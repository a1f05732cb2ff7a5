package chat_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roomchat/internal/app/chat"
)

// captureSink records every frame written to it, decoded into envelopes.
type captureSink struct {
	mu     sync.Mutex
	frames []chat.Envelope
	closed bool
}

func (s *captureSink) Write(p []byte) error {
	var env chat.Envelope
	if err := json.Unmarshal(p, &env); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, env)
	return nil
}

func (s *captureSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *captureSink) byType(msgType chat.MessageType) []chat.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []chat.Envelope
	for _, env := range s.frames {
		if env.Type == msgType {
			out = append(out, env)
		}
	}
	return out
}

// chatPayloads returns the decoded payloads of delivered chat messages, in
// delivery order.
func (s *captureSink) chatPayloads(t *testing.T) []chat.ChatPayload {
	t.Helper()

	var out []chat.ChatPayload
	for _, env := range s.byType(chat.TypeMessage) {
		var payload chat.ChatPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		out = append(out, payload)
	}
	return out
}

func (s *captureSink) statusTexts(t *testing.T) []string {
	t.Helper()

	var out []string
	for _, env := range s.byType(chat.TypeStatus) {
		var payload chat.StatusPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		out = append(out, payload.Text)
	}
	return out
}

func (s *captureSink) errorReasons(t *testing.T) []string {
	t.Helper()

	var out []string
	for _, env := range s.byType(chat.TypeError) {
		var payload chat.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		out = append(out, payload.Reason)
	}
	return out
}

// core wires one server instance's components the way main does.
type core struct {
	clock     *chat.Clock
	directory *chat.Directory
	registry  *chat.Registry
	router    *chat.Router
	sessions  *chat.Sessions
}

func newCore(queueCapacity int) *core {
	clock := chat.NewClock()
	directory := chat.NewDirectory()
	registry := chat.NewRegistry(directory, clock, queueCapacity)

	return &core{
		clock:     clock,
		directory: directory,
		registry:  registry,
		router:    chat.NewRouter(directory, clock),
		sessions:  chat.NewSessions(registry, directory, clock),
	}
}

func (c *core) connect() (*chat.Connection, *captureSink) {
	sink := &captureSink{}
	return c.sessions.Connect(sink), sink
}

func (c *core) join(t *testing.T, roomID, name string) (*chat.Connection, *captureSink) {
	t.Helper()

	conn, sink := c.connect()
	require.Nil(t, c.sessions.Join(conn, roomID, name))
	return conn, sink
}

// waitFor polls until cond holds, failing the test on timeout. Delivery runs
// on per-connection worker goroutines, so assertions on sink contents must
// wait for the drain.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 2*time.Millisecond)
}

/*
This file defines the Connection record and the Registry tracking every live
connection by its server-assigned identifier.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

// SessionState is the lifecycle state of a connection.
type SessionState int

const (
	// StateConnecting is the initial state: transport established, no room
	// joined yet. A failed join leaves the connection here for retry.
	StateConnecting SessionState = iota

	// StateJoined means the connection is a member of exactly one room.
	StateJoined

	// StateDisconnected is terminal. All resources are released on entry.
	StateDisconnected
)

// String returns the state name for logging.
func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Connection is one live client session. The identifier is opaque and unique
// per session; the display name is set once on the first successful join and
// immutable after. Mutable fields are guarded by mu and only ever written by
// the Sessions controller.
type Connection struct {
	ID string

	mu          sync.Mutex
	state       SessionState
	displayName string
	roomID      string

	outbound *Worker
	logger   zerolog.Logger
}

// snapshot returns the current state fields under the connection lock.
func (c *Connection) snapshot() (SessionState, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.roomID, c.displayName
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DisplayName returns the name fixed at the first successful join, or ""
// while still connecting.
func (c *Connection) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayName
}

// RoomID returns the currently joined room, or "" when not joined.
func (c *Connection) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Registry tracks all live connections. It is internally synchronized and
// shared by every request handler; there is no ambient global instance.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection

	directory *Directory
	clock     *Clock
	capacity  int
	logger    zerolog.Logger
}

// NewRegistry constructs a Registry. queueCapacity bounds each connection's
// outbound queue; <= 0 selects DefaultQueueCapacity.
func NewRegistry(directory *Directory, clock *Clock, queueCapacity int) *Registry {
	return &Registry{
		conns:     make(map[string]*Connection),
		directory: directory,
		clock:     clock,
		capacity:  queueCapacity,
		logger:    logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Register creates a Connection record for a fresh transport session, assigns
// its identifier, and starts its delivery worker.
func (r *Registry) Register(sink Sink) *Connection {
	id := randx.ConnectionID()

	conn := &Connection{
		ID:     id,
		state:  StateConnecting,
		logger: logx.Logger().With().Str("conn_id", id).Logger(),
	}

	clock := r.clock
	dropFrame := func() []byte {
		frame, err := encodeFrame(TypeStatus, "", clock.Next(), StatusPayload{Text: slowConsumerText})
		if err != nil {
			return nil
		}
		return frame
	}

	conn.outbound = NewWorker(id, sink, r.capacity, dropFrame, conn.logger)

	r.mu.Lock()
	r.conns[id] = conn
	total := len(r.conns)
	r.mu.Unlock()

	go conn.outbound.Run()

	r.logger.Info().Str("conn_id", id).Int("total_conns", total).Msg("Connection registered")

	return conn
}

// Lookup returns the connection for id, or ErrConnectionNotFound. Callers
// treat the error as benign: the connection is simply already gone.
func (r *Registry) Lookup(id string) (*Connection, *errs.CustomError) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	if !ok {
		return nil, errs.NewError(errs.ErrConnectionNotFound)
	}
	return conn, nil
}

// Unregister removes the connection's record, first removing it from any
// room it belongs to so no fan-out can target a dead connection. Unknown ids
// return ErrConnectionNotFound, which callers treat as benign.
func (r *Registry) Unregister(id string) *errs.CustomError {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	total := len(r.conns)
	r.mu.Unlock()

	if !ok {
		return errs.NewError(errs.ErrConnectionNotFound)
	}

	if roomID := conn.RoomID(); roomID != "" {
		r.directory.Leave(roomID, id)
	}

	r.logger.Info().Str("conn_id", id).Int("total_conns", total).Msg("Connection unregistered")

	return nil
}

// All returns a snapshot of every live connection, used for shutdown.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

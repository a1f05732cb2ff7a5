/*
This file defines the session lifecycle controller: the per-connection state
machine Connecting -> Joined -> Disconnected, with status and roster events
emitted on every transition.
*/
package chat

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// Sessions orchestrates join, leave, and disconnect events across the
// registry and directory. One instance per server, injected into handlers.
type Sessions struct {
	registry  *Registry
	directory *Directory
	clock     *Clock
	logger    zerolog.Logger
}

// NewSessions constructs the lifecycle controller.
func NewSessions(registry *Registry, directory *Directory, clock *Clock) *Sessions {
	return &Sessions{
		registry:  registry,
		directory: directory,
		clock:     clock,
		logger:    logx.Logger().With().Str("component", "sessions").Logger(),
	}
}

// Connect registers a fresh transport session. The returned connection is in
// StateConnecting; a delivery-worker write failure from here on triggers the
// same disconnect path as a transport close.
func (s *Sessions) Connect(sink Sink) *Connection {
	conn := s.registry.Register(sink)
	conn.outbound.OnFailure(func() {
		s.Disconnect(conn)
	})
	return conn
}

// Join transitions the connection from Connecting to Joined. The display
// name must be non-empty after trimming (ErrInvalidName; the connection
// stays Connecting and may retry) and the room identifier must be non-empty
// (ErrInvalidRoom). Re-joining the same room is a no-op; a connection
// belongs to at most one room at a time (ErrAlreadyJoined).
//
// On success the joiner receives a private "joined room" status, then the
// room — joiner included — receives a join status and the updated roster.
func (s *Sessions) Join(conn *Connection, roomID, displayName string) *errs.CustomError {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return errs.NewError(errs.ErrInvalidName)
	}

	if strings.TrimSpace(roomID) == "" {
		return errs.NewError(errs.ErrInvalidRoom)
	}

	conn.mu.Lock()
	switch conn.state {
	case StateDisconnected:
		conn.mu.Unlock()
		return errs.NewError(errs.ErrConnectionNotFound)

	case StateJoined:
		already := conn.roomID
		conn.mu.Unlock()
		if already == roomID {
			return nil
		}
		return errs.NewError(errs.ErrAlreadyJoined)
	}

	if conn.displayName == "" {
		conn.displayName = name
	}
	name = conn.displayName
	conn.state = StateJoined
	conn.roomID = roomID
	conn.mu.Unlock()

	s.directory.Join(roomID, conn)

	// A delivery-worker failure can race the join; if the disconnect path ran
	// before the membership landed, undo it so the room holds no dead entry.
	if conn.State() == StateDisconnected {
		s.directory.Leave(roomID, conn.ID)
		return errs.NewError(errs.ErrConnectionNotFound)
	}

	conn.logger.Info().Str("room_id", roomID).Str("display_name", name).Msg("Session joined room")

	s.sendStatus(conn, roomID, fmt.Sprintf("joined room %s", roomID))
	s.broadcastStatus(roomID, fmt.Sprintf("%s joined the room", name))
	s.broadcastRoster(roomID)

	return nil
}

// Leave is an explicit client-initiated departure. It is the same terminal
// transition as a transport close.
func (s *Sessions) Leave(conn *Connection) {
	s.Disconnect(conn)
}

// Disconnect transitions the connection to Disconnected and releases every
// resource it holds: registry record, room membership, pending outbound
// queue. It is idempotent; a second signal for an already-disconnected
// connection is a no-op. Remaining room members receive a "left" status and
// the updated roster.
func (s *Sessions) Disconnect(conn *Connection) {
	conn.mu.Lock()
	if conn.state == StateDisconnected {
		conn.mu.Unlock()
		return
	}
	wasJoined := conn.state == StateJoined
	conn.state = StateDisconnected
	roomID := conn.roomID
	name := conn.displayName
	conn.mu.Unlock()

	// Unregister removes the room membership synchronously, so fan-out can
	// never target this connection once we return.
	if err := s.registry.Unregister(conn.ID); err != nil {
		conn.logger.Debug().Int("code", err.Code).Msg("Unregister of already-removed connection")
	}

	if wasJoined {
		s.broadcastStatus(roomID, fmt.Sprintf("%s left the room", name))
		s.broadcastRoster(roomID)
	}

	conn.outbound.Stop()

	conn.logger.Info().Str("room_id", roomID).Msg("Session disconnected")
}

// Shutdown disconnects every live connection, used during server stop.
func (s *Sessions) Shutdown() {
	for _, conn := range s.registry.All() {
		s.Disconnect(conn)
	}
	s.logger.Info().Msg("All sessions disconnected")
}

// SendError enqueues an error frame to the connection. The connection stays
// in its current state; rejections never terminate a session.
func (s *Sessions) SendError(conn *Connection, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	frame, err := encodeFrame(TypeError, "", s.clock.Next(), ErrorPayload{
		Code:   customErr.Code,
		Reason: customErr.Reason,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode error frame")
		return
	}
	conn.outbound.Enqueue(frame)
}

// sendStatus enqueues a status event targeted at a single connection.
func (s *Sessions) sendStatus(conn *Connection, roomID, text string) {
	frame, err := encodeFrame(TypeStatus, roomID, s.clock.Next(), StatusPayload{Text: text})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode status frame")
		return
	}
	conn.outbound.Enqueue(frame)
}

// broadcastStatus enqueues a status event to every current room member.
func (s *Sessions) broadcastStatus(roomID, text string) {
	s.directory.FanOut(roomID, func(members []*Connection) {
		frame, err := encodeFrame(TypeStatus, roomID, s.clock.Next(), StatusPayload{Text: text})
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode status frame")
			return
		}
		for _, member := range members {
			member.outbound.Enqueue(frame)
		}
	})
}

// broadcastRoster enqueues the current display-name roster to every member.
func (s *Sessions) broadcastRoster(roomID string) {
	s.directory.FanOut(roomID, func(members []*Connection) {
		names := make([]string, 0, len(members))
		for _, member := range members {
			names = append(names, member.DisplayName())
		}

		frame, err := encodeFrame(TypeParticipants, roomID, s.clock.Next(), ParticipantsPayload{DisplayNames: names})
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode roster frame")
			return
		}
		for _, member := range members {
			member.outbound.Enqueue(frame)
		}
	})
}

/*
This file defines the Message Router: validation, server-side timestamping,
and ordered fan-out of inbound chat messages.
*/
package chat

import (
	"strings"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// Router validates inbound messages, stamps them with a total-order
// timestamp, and enqueues them onto every room member's delivery worker.
type Router struct {
	directory *Directory
	clock     *Clock
	logger    zerolog.Logger
}

// NewRouter constructs a Router sharing the server's directory and clock.
func NewRouter(directory *Directory, clock *Clock) *Router {
	return &Router{
		directory: directory,
		clock:     clock,
		logger:    logx.Logger().With().Str("component", "router").Logger(),
	}
}

// Route validates and delivers one chat message from conn. Rejections leave
// the connection joined and usable:
//
//   - ErrNotJoined: the sender is not currently joined to any room.
//   - ErrEmptyBody: the body is empty after trimming whitespace.
//   - ErrRoomMismatch: the claimed room differs from the sender's joined
//     room, which would otherwise allow spoofed cross-room injection.
//
// On success every member of the room — snapshot taken atomically with the
// enqueue, sender included for echo confirmation — receives exactly one
// copy, in timestamp order relative to other messages routed to that room.
func (rt *Router) Route(conn *Connection, roomID, body string) *errs.CustomError {
	state, joined, name := conn.snapshot()

	if state != StateJoined {
		return errs.NewError(errs.ErrNotJoined)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return errs.NewError(errs.ErrEmptyBody)
	}

	if roomID != joined {
		rt.logger.Warn().
			Str("conn_id", conn.ID).
			Str("claimed_room", roomID).
			Str("joined_room", joined).
			Msg("Rejected message for mismatched room")
		return errs.NewError(errs.ErrRoomMismatch)
	}

	var routeErr *errs.CustomError

	rt.directory.FanOut(joined, func(members []*Connection) {
		// Timestamp assignment happens under the room lock, so delivery
		// order and timestamp order agree within a room.
		msg := ChatMessage{
			RoomID:      joined,
			SenderID:    conn.ID,
			DisplayName: name,
			Body:        body,
			Timestamp:   rt.clock.Next(),
		}

		frame, err := msg.Encode()
		if err != nil {
			rt.logger.Error().Err(err).Str("room_id", joined).Msg("Failed to encode chat message")
			routeErr = errs.NewError(errs.ErrUnknown)
			return
		}

		for _, member := range members {
			member.outbound.Enqueue(frame)
		}
	})

	return routeErr
}

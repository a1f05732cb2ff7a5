/*
This file defines the Room Directory: the mapping from room identifiers to
member connections. Rooms materialize on first join and are dropped the
moment their membership empties, so an idle server holds no room state.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/logx"
)

// room holds one room's membership. Its lock serializes membership changes
// with fan-out snapshots; it is never held across a transport write.
type room struct {
	mu      sync.Mutex
	members map[string]*Connection
}

// Directory maps room identifiers to member sets. Rooms are independent:
// no operation ever holds two room locks at once.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger zerolog.Logger
}

// NewDirectory constructs an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]*room),
		logger: logx.Logger().With().Str("component", "directory").Logger(),
	}
}

// Join adds the connection to the room, creating the room lazily. Joining a
// room the connection is already a member of is a no-op.
func (d *Directory) Join(roomID string, conn *Connection) {
	d.mu.Lock()
	rm, ok := d.rooms[roomID]
	if !ok {
		rm = &room{members: make(map[string]*Connection)}
		d.rooms[roomID] = rm
		d.logger.Info().Str("room_id", roomID).Msg("Room created")
	}

	// The directory lock is held across the member add so a concurrent Leave
	// cannot drop the room entry between lookup and insertion.
	rm.mu.Lock()
	rm.members[conn.ID] = conn
	total := len(rm.members)
	rm.mu.Unlock()
	d.mu.Unlock()

	d.logger.Info().Str("room_id", roomID).Str("conn_id", conn.ID).Int("members", total).Msg("Joined room")
}

// Leave removes the connection from the room. Leaving a room the connection
// is not a member of, or an unknown room, is a no-op. When membership
// transitions to empty the room entry is dropped.
func (d *Directory) Leave(roomID string, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rm, ok := d.rooms[roomID]
	if !ok {
		return
	}

	rm.mu.Lock()
	if _, member := rm.members[connID]; !member {
		rm.mu.Unlock()
		return
	}
	delete(rm.members, connID)
	remaining := len(rm.members)
	rm.mu.Unlock()

	if remaining == 0 {
		delete(d.rooms, roomID)
		d.logger.Info().Str("room_id", roomID).Msg("Room emptied and dropped")
		return
	}

	d.logger.Info().Str("room_id", roomID).Str("conn_id", connID).Int("members", remaining).Msg("Left room")
}

// Members returns the identifiers of the room's current members. An unknown
// room yields an empty slice, not an error.
func (d *Directory) Members(roomID string) []string {
	d.mu.RLock()
	rm, ok := d.rooms[roomID]
	d.mu.RUnlock()

	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	ids := make([]string, 0, len(rm.members))
	for id := range rm.members {
		ids = append(ids, id)
	}
	return ids
}

// FanOut runs fn over a snapshot of the room's membership while holding the
// room lock, so the enqueue-to-all-members step of one message is atomic
// with respect to concurrent joins and leaves. fn must only enqueue; it must
// never block on transport writes. Unknown rooms invoke nothing.
func (d *Directory) FanOut(roomID string, fn func(members []*Connection)) {
	d.mu.RLock()
	rm, ok := d.rooms[roomID]
	d.mu.RUnlock()

	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	members := make([]*Connection, 0, len(rm.members))
	for _, c := range rm.members {
		members = append(members, c)
	}
	fn(members)
}

// RoomCount reports the number of live rooms.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

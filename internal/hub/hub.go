// Package hub maintains the live connections of each table room and delivers
// queue events to every member. It is process-local and advisory-only: safe to
// lose and rebuild as clients reconnect, with the store as the source of truth.
package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// EventJoined is the private acknowledgment sent to a connection when it
// enters its room. The queue events mirror the REST entities.
const (
	EventJoined       = "joined_successfully"
	EventUserJoined   = "user_joined"
	EventSongAdded    = "song_added"
	EventQueueUpdated = "queue_updated"
)

// Event is the envelope written to the wire for every push.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RoomID names the broadcast room of a table.
func RoomID(tableID int64) string {
	return fmt.Sprintf("mesa-%d", tableID)
}

// room is one table's member set. Each room has its own lock so unrelated
// tables never contend, and publishes within a room are serialized: delivery
// order matches publish order for every member.
//
// closed is set, under mu, at the moment the room is unlinked from the hub
// map. A joiner that raced the removal sees the flag and starts over instead
// of inserting itself into an orphaned member set.
type room struct {
	mu      sync.Mutex
	closed  bool
	members map[*Client]struct{}
}

// Hub maps room ids to live member sets. Rooms are implicit: materialized on
// first join, removed when the last member leaves.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// New creates an empty Hub. One instance is constructed at process start and
// injected into every handler that publishes.
func New() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// Join adds the client to its room, creating the room if needed, and sends
// the private join acknowledgment to that client only. Idempotent.
func (h *Hub) Join(c *Client) {
	ack, err := json.Marshal(Event{Event: EventJoined, Data: "connected to " + c.roomID})
	if err != nil {
		return
	}

	for {
		h.mu.Lock()
		rm, ok := h.rooms[c.roomID]
		if !ok {
			rm = &room{members: make(map[*Client]struct{})}
			h.rooms[c.roomID] = rm
		}
		h.mu.Unlock()

		rm.mu.Lock()
		if rm.closed {
			// Lost the race against the last member's Leave: this room
			// is no longer in the hub map, so membership here would never
			// see another publish. Go get a fresh room.
			rm.mu.Unlock()
			continue
		}
		if _, member := rm.members[c]; !member {
			rm.members[c] = struct{}{}
			c.enqueue(ack)
		}
		rm.mu.Unlock()
		break
	}

	slog.Debug("client joined room",
		slog.String("room", c.roomID), slog.Int64("user_id", c.userID))
}

// Leave removes the client from its room. Called on disconnect and when a
// publish finds the client unreachable. Idempotent; empty rooms are deleted.
func (h *Hub) Leave(c *Client) {
	h.mu.RLock()
	rm := h.rooms[c.roomID]
	h.mu.RUnlock()
	if rm == nil {
		return
	}

	rm.mu.Lock()
	_, member := rm.members[c]
	if member {
		delete(rm.members, c)
	}
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	if !member {
		return
	}

	if empty {
		h.mu.Lock()
		// Re-check under the write lock: a concurrent Join may have
		// repopulated the room.
		if current := h.rooms[c.roomID]; current == rm {
			rm.mu.Lock()
			if len(rm.members) == 0 {
				rm.closed = true
				delete(h.rooms, c.roomID)
			}
			rm.mu.Unlock()
		}
		h.mu.Unlock()
	}

	slog.Debug("client left room",
		slog.String("room", c.roomID), slog.Int64("user_id", c.userID))
}

// Publish delivers the event to every current member of the room. It is
// fire-and-forget: members joining later do not receive it, and a member
// whose send buffer is full is pruned from the room rather than blocking
// delivery to the rest. Errors never reach the publishing handler.
func (h *Hub) Publish(roomID, event string, payload any) {
	data, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		slog.Error("failed to marshal event",
			slog.String("room", roomID), slog.String("event", event), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	rm := h.rooms[roomID]
	h.mu.RUnlock()
	if rm == nil {
		return
	}

	var stale []*Client
	rm.mu.Lock()
	for c := range rm.members {
		if !c.enqueue(data) {
			stale = append(stale, c)
		}
	}
	rm.mu.Unlock()

	for _, c := range stale {
		slog.Warn("client send buffer full, pruning from room",
			slog.String("room", roomID), slog.Int64("user_id", c.userID))
		h.Leave(c)
		c.close()
	}
}

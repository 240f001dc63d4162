package ws

import (
	"context"
	"sort"
	"sync"
	"time"

	"skirmish/internal/domain"
	"skirmish/internal/game"
	"skirmish/internal/logger"

	"github.com/google/uuid"
)

// MatchStore persists finished matches.
type MatchStore interface {
	Create(ctx context.Context, m *domain.MatchRecord) error
}

// CommandLimiter throttles commands per player.
type CommandLimiter interface {
	Allow(ctx context.Context, playerID int64) bool
}

type HubOptions struct {
	Factory *game.Factory
	Store   MatchStore
	Limiter CommandLimiter
	// TickInterval drives agent movement and the turn timer.
	TickInterval time.Duration
	// WaitTimeout closes a room nobody joined. Zero waits forever.
	WaitTimeout time.Duration
}

// Hub pairs connections into rooms. A connection joins the waiting room if
// there is one, otherwise it opens a new one.
type Hub struct {
	Rooms    map[string]*Room
	UserRoom map[int64]string
	mu       sync.RWMutex
	waiting  *Room

	factory     *game.Factory
	store       MatchStore
	limiter     CommandLimiter
	tick        time.Duration
	waitTimeout time.Duration
}

func NewHub(opts HubOptions) *Hub {
	if opts.Factory == nil {
		opts.Factory = game.NewFactory(game.DefaultSettings())
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	return &Hub{
		Rooms:       make(map[string]*Room),
		UserRoom:    make(map[int64]string),
		factory:     opts.Factory,
		store:       opts.Store,
		limiter:     opts.Limiter,
		tick:        opts.TickInterval,
		waitTimeout: opts.WaitTimeout,
	}
}

// AssignClient seats c in a room. It returns nil if the user is already
// seated somewhere.
func (h *Hub) AssignClient(c *Client) *Room {
	h.mu.Lock()
	if roomID, ok := h.UserRoom[c.UserID]; ok {
		h.mu.Unlock()
		logger.Warn("hub: user already seated", "user", c.UserID, "room", roomID)
		return nil
	}

	room := h.waiting
	if room != nil {
		h.waiting = nil
	} else {
		room = h.newRoom()
		h.waiting = room
	}
	// Registering under the lock orders it before any closeRoom, so a
	// shutting-down room always drains it.
	select {
	case room.Register <- c:
		h.UserRoom[c.UserID] = room.ID
	default:
		h.mu.Unlock()
		logger.Warn("hub: register queue full", "user", c.UserID, "room", room.ID)
		return nil
	}
	h.mu.Unlock()
	return room
}

// newRoom must be called with h.mu held.
func (h *Hub) newRoom() *Room {
	id := uuid.NewString()
	room := NewRoom(id, h.factory.CreateSession(id), h)
	h.Rooms[id] = room
	ActiveRooms.Inc()

	logger.Info("hub: room opened", "room", id)
	go room.Run()
	return room
}

// OnDisconnect forwards a dropped connection to its room.
func (h *Hub) OnDisconnect(c *Client) {
	h.mu.RLock()
	var room *Room
	if roomID, ok := h.UserRoom[c.UserID]; ok {
		room = h.Rooms[roomID]
	}
	h.mu.RUnlock()

	if room == nil {
		return
	}
	select {
	case room.Disconnect <- c:
	case <-room.done:
	}
}

// forget unseats userID if it is still mapped to room.
func (h *Hub) forget(userID int64, room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.UserRoom[userID] == room.ID {
		delete(h.UserRoom, userID)
	}
}

// release removes an empty waiting room. If someone was assigned to it in
// the meantime the room stays open and goes back to waiting.
func (h *Hub) release(room *Room) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rid := range h.UserRoom {
		if rid == room.ID {
			if h.waiting == nil {
				h.waiting = room
			}
			return false
		}
	}
	h.removeLocked(room)
	return true
}

// closeRoom removes room and unseats everyone in it.
func (h *Hub) closeRoom(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, rid := range h.UserRoom {
		if rid == room.ID {
			delete(h.UserRoom, uid)
		}
	}
	h.removeLocked(room)
}

func (h *Hub) removeLocked(room *Room) {
	if h.waiting == room {
		h.waiting = nil
	}
	if _, ok := h.Rooms[room.ID]; ok {
		delete(h.Rooms, room.ID)
		ActiveRooms.Dec()
		logger.Info("hub: room closed", "room", room.ID)
	}
}

// List describes every open room, oldest first.
func (h *Hub) List() []RoomInfo {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Room returns an open room by id.
func (h *Hub) Room(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.Rooms[id]
	return r, ok
}

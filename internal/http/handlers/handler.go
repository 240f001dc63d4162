package handlers

import (
	"context"

	"skirmish/internal/domain"
	"skirmish/internal/ws"
)

// PlayerStore registers guest players.
type PlayerStore interface {
	Create(ctx context.Context, p *domain.Player) error
}

// MatchHistory reads finished matches.
type MatchHistory interface {
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.MatchRecord, error)
	GetStats(ctx context.Context, playerID int64) (*domain.PlayerStats, error)
}

// RoomLister lists live rooms.
type RoomLister interface {
	List() []ws.RoomInfo
}

// Handler serves the REST API. Players and Matches are nil when the server
// runs without a database.
type Handler struct {
	Players PlayerStore
	Matches MatchHistory
	Rooms   RoomLister
}

// getUserID reads the player id set by the JWT middleware.
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

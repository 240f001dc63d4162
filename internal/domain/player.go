package domain

import "time"

// Player is a guest identity. Its id is the subject of the player token.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

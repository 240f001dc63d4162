package domain

import "time"

// MatchResult is a match seen from one player's side.
type MatchResult string

const (
	MatchResultWin  MatchResult = "win"
	MatchResultLose MatchResult = "lose"
	MatchResultDraw MatchResult = "draw"
)

// MatchRecord is one finished match.
type MatchRecord struct {
	ID         string    `db:"id" json:"id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	PlayerAID  int64     `db:"player_a_id" json:"player_a_id"`
	PlayerBID  int64     `db:"player_b_id" json:"player_b_id"`
	WinnerID   *int64    `db:"winner_id" json:"winner_id,omitempty"`
	Reason     string    `db:"reason" json:"reason"`
	Turns      int       `db:"turns" json:"turns"`
	SurvivorsA int       `db:"survivors_a" json:"survivors_a"`
	SurvivorsB int       `db:"survivors_b" json:"survivors_b"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}

// ResultFor reports how the match ended for playerID.
func (m *MatchRecord) ResultFor(playerID int64) MatchResult {
	switch {
	case m.WinnerID == nil:
		return MatchResultDraw
	case *m.WinnerID == playerID:
		return MatchResultWin
	default:
		return MatchResultLose
	}
}

// OpponentOf returns the other seat's player id.
func (m *MatchRecord) OpponentOf(playerID int64) int64 {
	if m.PlayerAID == playerID {
		return m.PlayerBID
	}
	return m.PlayerAID
}

// PlayerStats aggregates a player's finished matches.
type PlayerStats struct {
	PlayerID int64 `json:"player_id"`
	Played   int   `json:"played"`
	Wins     int   `json:"wins"`
	Losses   int   `json:"losses"`
	Draws    int   `json:"draws"`
}

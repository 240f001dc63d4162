package repository

import (
	"context"

	"skirmish/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create stores a finished match. The id is generated by the database.
func (r *MatchRepository) Create(ctx context.Context, m *domain.MatchRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO matches
			(room_id, player_a_id, player_b_id, winner_id, reason, turns, survivors_a, survivors_b, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id::text`,
		m.RoomID,
		m.PlayerAID,
		m.PlayerBID,
		m.WinnerID,
		m.Reason,
		m.Turns,
		m.SurvivorsA,
		m.SurvivorsB,
		m.StartedAt,
		m.FinishedAt,
	).Scan(&m.ID)
}

// GetByPlayer returns the player's most recent matches first.
func (r *MatchRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id::text, room_id, player_a_id, player_b_id, winner_id, reason, turns,
				survivors_a, survivors_b, started_at, finished_at
		 FROM matches
		 WHERE player_a_id = $1 OR player_b_id = $1
		 ORDER BY finished_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetStats counts the player's wins, losses and draws.
func (r *MatchRepository) GetStats(ctx context.Context, playerID int64) (*domain.PlayerStats, error) {
	stats := &domain.PlayerStats{PlayerID: playerID}

	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*) AS played,
			COUNT(*) FILTER (WHERE winner_id = $1) AS wins,
			COUNT(*) FILTER (WHERE winner_id IS NOT NULL AND winner_id <> $1) AS losses,
			COUNT(*) FILTER (WHERE winner_id IS NULL) AS draws
		 FROM matches
		 WHERE player_a_id = $1 OR player_b_id = $1`,
		playerID,
	).Scan(&stats.Played, &stats.Wins, &stats.Losses, &stats.Draws)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func scanMatches(rows pgx.Rows) ([]*domain.MatchRecord, error) {
	var result []*domain.MatchRecord
	for rows.Next() {
		var m domain.MatchRecord
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.PlayerAID, &m.PlayerBID, &m.WinnerID, &m.Reason, &m.Turns,
			&m.SurvivorsA, &m.SurvivorsB, &m.StartedAt, &m.FinishedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}

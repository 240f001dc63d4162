package repository

import (
	"context"

	"skirmish/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create registers a guest and fills in its id and creation time.
func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO players (name)
		 VALUES ($1)
		 RETURNING id, created_at`,
		p.Name,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	var p domain.Player
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM players WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regulartim/GreedyBear/internal/core/domain"
)

// HoneypotRegistry reads and registers honeypot sensor sources.
type HoneypotRegistry struct {
	db *pgxpool.Pool
}

func NewHoneypotRegistry(db *pgxpool.Pool) *HoneypotRegistry {
	return &HoneypotRegistry{db: db}
}

// ListActive returns all currently-active honeypots by name.
func (r *HoneypotRegistry) ListActive(ctx context.Context) ([]domain.Honeypot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, active FROM honeypots WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query honeypots: %w", err)
	}
	defer rows.Close()

	var honeypots []domain.Honeypot
	for rows.Next() {
		var hp domain.Honeypot
		if err := rows.Scan(&hp.ID, &hp.Name, &hp.Active); err != nil {
			return nil, fmt.Errorf("failed to scan honeypot: %w", err)
		}
		honeypots = append(honeypots, hp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating honeypot rows: %w", err)
	}
	return honeypots, nil
}

// Register inserts a honeypot by name, active by default. Names are unique
// case-insensitively; re-registering is a no-op.
func (r *HoneypotRegistry) Register(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO honeypots (name, active) VALUES ($1, TRUE) ON CONFLICT DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("failed to register honeypot %q: %w", name, err)
	}
	return nil
}

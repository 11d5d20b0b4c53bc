package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatisticsSink appends one row per served feed request.
type StatisticsSink struct {
	db *pgxpool.Pool
}

func NewStatisticsSink(db *pgxpool.Pool) *StatisticsSink {
	return &StatisticsSink{db: db}
}

// RecordRequest appends the caller's network origin. At-least-once is
// acceptable; ordering across concurrent requests is not guaranteed.
func (s *StatisticsSink) RecordRequest(ctx context.Context, source string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO statistics (id, source, view, request_date) VALUES ($1, $2, 'feeds', now())`,
		uuid.New().String(), source)
	if err != nil {
		return fmt.Errorf("failed to record request statistics: %w", err)
	}
	return nil
}

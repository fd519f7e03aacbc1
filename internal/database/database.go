package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchResult is the archived outcome of one finished game. Live room state
// is never stored here.
type MatchResult struct {
	RoomID        string    `json:"roomId"`
	Winner        string    `json:"winner"`
	DaysSurvived  int       `json:"daysSurvived"`
	FieldsFlooded int       `json:"fieldsFlooded"`
	FieldsDry     int       `json:"fieldsDry"`
	TotalFields   int       `json:"totalFields"`
	CreatedAt     time.Time `json:"createdAt"`
	EndedAt       time.Time `json:"endedAt"`
}

// Service is the match archive.
type Service interface {
	RecordMatch(ctx context.Context, result MatchResult) error
	RecentMatches(ctx context.Context, limit int) ([]MatchResult, error)
	// Health returns a map of health status information.
	Health(ctx context.Context) map[string]string
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS match_results (
		id             BIGSERIAL PRIMARY KEY,
		room_id        TEXT        NOT NULL,
		winner         TEXT        NOT NULL,
		days_survived  INTEGER     NOT NULL,
		fields_flooded INTEGER     NOT NULL,
		fields_dry     INTEGER     NOT NULL,
		total_fields   INTEGER     NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		ended_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS match_results_ended_at_idx ON match_results (ended_at DESC)`,
}

// New connects to PostgreSQL and makes sure the archive table exists.
func New(ctx context.Context, databaseURL string) (Service, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &service{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *service) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *service) RecordMatch(ctx context.Context, m MatchResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_results
			(room_id, winner, days_survived, fields_flooded, fields_dry, total_fields, created_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.RoomID, m.Winner, m.DaysSurvived, m.FieldsFlooded, m.FieldsDry, m.TotalFields, m.CreatedAt, m.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record match %s: %w", m.RoomID, err)
	}
	return nil
}

// RecentMatches returns up to limit results, newest first.
func (s *service) RecentMatches(ctx context.Context, limit int) ([]MatchResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT room_id, winner, days_survived, fields_flooded, fields_dry, total_fields, created_at, ended_at
		FROM match_results
		ORDER BY ended_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MatchResult, error) {
		var m MatchResult
		err := row.Scan(&m.RoomID, &m.Winner, &m.DaysSurvived, &m.FieldsFlooded, &m.FieldsDry,
			&m.TotalFields, &m.CreatedAt, &m.EndedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan matches: %w", err)
	}
	return results, nil
}

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	poolStats := s.pool.Stat()
	stats["open_connections"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["in_use"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["idle"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["max_connections"] = strconv.Itoa(int(poolStats.MaxConns()))

	return stats
}

func (s *service) Close() {
	s.pool.Close()
}

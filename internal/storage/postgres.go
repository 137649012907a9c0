package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/capture-service/internal/domain"
)

// PostgresStore persists capture results so downstream assembly steps
// can query them without re-reading manifest files.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// EnsureSchema creates the results table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS capture_results (
			video_name  TEXT NOT NULL,
			chunk_index INT  NOT NULL,
			success     BOOLEAN NOT NULL,
			url         TEXT,
			filename    TEXT,
			error       TEXT,
			attempts    INT NOT NULL DEFAULT 0,
			captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (video_name, chunk_index)
		)`)
	return err
}

// SaveResult upserts the terminal record for one work item.
func (s *PostgresStore) SaveResult(ctx context.Context, videoName string, res domain.CaptureResult) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO capture_results (video_name, chunk_index, success, url, filename, error, attempts, captured_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (video_name, chunk_index) DO UPDATE SET
		   success = EXCLUDED.success, url = EXCLUDED.url, filename = EXCLUDED.filename,
		   error = EXCLUDED.error, attempts = EXCLUDED.attempts, captured_at = EXCLUDED.captured_at`,
		videoName, res.ChunkIndex, res.Success, res.URL, res.Filename, res.Error, res.Attempts, time.Now(),
	)
	return err
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

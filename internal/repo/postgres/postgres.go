package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/observatorycheck/internal/domain"
	"github.com/hamed0406/observatorycheck/internal/repo"
)

var _ repo.ObservationStore = (*Store)(nil)
var _ repo.GradeStore = (*Store)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS observations (
  id          BIGSERIAL PRIMARY KEY,
  host        TEXT NOT NULL,
  name        TEXT NOT NULL,
  value       DOUBLE PRECISION NOT NULL,
  tags        TEXT[] NOT NULL DEFAULT '{}',
  observed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_series ON observations (host, name, observed_at DESC);

CREATE TABLE IF NOT EXISTS grade_alerts (
  host         TEXT PRIMARY KEY,
  last_grade   INTEGER NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- ObservationStore ----

func (s *Store) Append(ctx context.Context, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, o := range obs {
		tags := o.Tags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(
			`INSERT INTO observations (host, name, value, tags, observed_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.Host, o.Name, o.Value, tags, o.ObservedAt,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert observations: %w", err)
	}
	s.log.Debug("observations_appended", zap.Int("count", len(obs)))
	return nil
}

func (s *Store) Latest(ctx context.Context) ([]domain.Observation, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (host, name)
       host, name, value, tags, observed_at
  FROM observations
 ORDER BY host, name, observed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		var o domain.Observation
		if err := rows.Scan(&o.Host, &o.Name, &o.Value, &o.Tags, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan latest: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ---- GradeStore ----

func (s *Store) Get(ctx context.Context, host string) (*repo.GradeRecord, error) {
	const q = `SELECT last_grade, last_sent_at FROM grade_alerts WHERE host=$1`
	r := repo.GradeRecord{Host: host}
	var lastSent *time.Time
	err := s.pool.QueryRow(ctx, q, host).Scan(&r.LastGrade, &lastSent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.LastSentAt = lastSent
	return &r, nil
}

func (s *Store) Set(ctx context.Context, host string, grade int, sentAt time.Time) error {
	const q = `
		INSERT INTO grade_alerts (host, last_grade, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (host)
		DO UPDATE SET last_grade=EXCLUDED.last_grade, last_sent_at=EXCLUDED.last_sent_at
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	_, err := s.pool.Exec(ctx, q, host, grade, ts)
	return err
}

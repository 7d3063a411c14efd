package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot paths of the enrichment loop.
var preparedStatements = map[string]string{
	"get_record": `SELECT data FROM records WHERE id = $1`,
	"update_record": `UPDATE records SET data = $1, completeness = $2, priority = $3, last_enriched_at = $4, updated_at = $5
		 WHERE id = $6`,
	"budget_used":    `SELECT used FROM budget_usage WHERE provider = $1 AND day = $2`,
	"add_budget_use": `INSERT INTO budget_usage (provider, day, used) VALUES ($1, $2, 1) ON CONFLICT (provider, day) DO UPDATE SET used = budget_usage.used + 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	data             JSONB NOT NULL,
	completeness     INTEGER NOT NULL DEFAULT 0,
	priority         INTEGER NOT NULL DEFAULT 0,
	last_enriched_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	record_id  TEXT NOT NULL REFERENCES records(id),
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_summaries (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	record_id  TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS budget_usage (
	provider TEXT NOT NULL,
	day      TEXT NOT NULL,
	used     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (provider, day)
);

CREATE INDEX IF NOT EXISTS idx_records_completeness ON records(completeness);
CREATE INDEX IF NOT EXISTS idx_records_priority ON records(priority);
CREATE INDEX IF NOT EXISTS idx_assessments_record_id ON assessments(record_id);
CREATE INDEX IF NOT EXISTS idx_run_summaries_record_id ON run_summaries(record_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRecord(ctx context.Context, rec *model.BusinessRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (id, data, completeness, priority, last_enriched_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, data, rec.Enrichment.Completeness, rec.Priority,
		rec.Enrichment.LastEnrichedAt, now, now,
	)
	return eris.Wrap(err, "postgres: insert record")
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.BusinessRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM records WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get record %s", id)
	}

	var rec model.BusinessRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	return &rec, nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, rec *model.BusinessRecord) error {
	now := time.Now().UTC()
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE records SET data = $1, completeness = $2, priority = $3, last_enriched_at = $4, updated_at = $5
		 WHERE id = $6`,
		data, rec.Enrichment.Completeness, rec.Priority,
		rec.Enrichment.LastEnrichedAt, now, rec.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update record %s", rec.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("record not found: %s", rec.ID)
	}
	return nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.BusinessRecord, error) {
	query := `SELECT data FROM records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.MinCompleteness > 0 {
		query += fmt.Sprintf(` AND completeness >= $%d`, argIdx)
		args = append(args, filter.MinCompleteness)
		argIdx++
	}
	if filter.MaxCompleteness > 0 {
		query += fmt.Sprintf(` AND completeness <= $%d`, argIdx)
		args = append(args, filter.MaxCompleteness)
		argIdx++
	}
	if !filter.EnrichedBefore.IsZero() {
		query += fmt.Sprintf(` AND (last_enriched_at IS NULL OR last_enriched_at < $%d)`, argIdx)
		args = append(args, filter.EnrichedBefore.UTC())
		argIdx++
	}
	query += ` ORDER BY priority DESC, completeness ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.BusinessRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		var rec model.BusinessRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, a *model.OpportunityAssessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal assessment")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, record_id, data, created_at) VALUES ($1, $2, $3, $4)`,
		a.ID, a.RecordID, data, a.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert assessment")
}

func (s *PostgresStore) LatestAssessment(ctx context.Context, recordID string) (*model.OpportunityAssessment, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM assessments WHERE record_id = $1 ORDER BY created_at DESC LIMIT 1`,
		recordID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest assessment")
	}
	var a model.OpportunityAssessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal assessment")
	}
	return &a, nil
}

func (s *PostgresStore) SaveRunSummary(ctx context.Context, sum *model.RunSummary) error {
	if sum.ID == "" {
		sum.ID = uuid.New().String()
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run summary")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_summaries (id, record_id, data, created_at) VALUES ($1, $2, $3, $4)`,
		sum.ID, sum.RecordID, data, sum.StartedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert run summary")
}

func (s *PostgresStore) ListRunSummaries(ctx context.Context, recordID string, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM run_summaries WHERE record_id = $1 ORDER BY created_at DESC LIMIT $2`,
		recordID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list run summaries")
	}
	defer rows.Close()

	var summaries []model.RunSummary
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run summary")
		}
		var sum model.RunSummary
		if err := json.Unmarshal(data, &sum); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run summary")
		}
		summaries = append(summaries, sum)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: list run summaries iterate")
}

func (s *PostgresStore) BudgetUsed(ctx context.Context, provider, day string) (int, error) {
	var used int
	err := s.pool.QueryRow(ctx,
		`SELECT used FROM budget_usage WHERE provider = $1 AND day = $2`,
		provider, day,
	).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: budget used %s/%s", provider, day)
	}
	return used, nil
}

func (s *PostgresStore) AddBudgetUse(ctx context.Context, provider, day string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO budget_usage (provider, day, used) VALUES ($1, $2, 1)
		 ON CONFLICT (provider, day) DO UPDATE SET used = budget_usage.used + 1`,
		provider, day,
	)
	return eris.Wrapf(err, "postgres: add budget use %s/%s", provider, day)
}

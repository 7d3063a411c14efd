package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospector/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	data             TEXT NOT NULL,
	completeness     INTEGER NOT NULL DEFAULT 0,
	priority         INTEGER NOT NULL DEFAULT 0,
	last_enriched_at DATETIME,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	record_id  TEXT NOT NULL REFERENCES records(id),
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_summaries (
	id         TEXT PRIMARY KEY,
	record_id  TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRecord(ctx context.Context, rec *model.BusinessRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, data, completeness, priority, last_enriched_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(data), rec.Enrichment.Completeness, rec.Priority,
		nullableTime(rec.Enrichment.LastEnrichedAt), now, now,
	)
	return eris.Wrap(err, "sqlite: insert record")
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.BusinessRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE id = ?`, id)

	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get record %s", id)
	}

	var rec model.BusinessRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal record")
	}
	return &rec, nil
}

func (s *SQLiteStore) UpdateRecord(ctx context.Context, rec *model.BusinessRecord) error {
	now := time.Now().UTC()
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = ?, completeness = ?, priority = ?, last_enriched_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(data), rec.Enrichment.Completeness, rec.Priority,
		nullableTime(rec.Enrichment.LastEnrichedAt), now, rec.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update record %s", rec.ID)
	}
	return checkRowsAffected(res, "record", rec.ID)
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.BusinessRecord, error) {
	query := `SELECT data FROM records WHERE 1=1`
	var args []any

	if filter.MinCompleteness > 0 {
		query += ` AND completeness >= ?`
		args = append(args, filter.MinCompleteness)
	}
	if filter.MaxCompleteness > 0 {
		query += ` AND completeness <= ?`
		args = append(args, filter.MaxCompleteness)
	}
	if !filter.EnrichedBefore.IsZero() {
		query += ` AND (last_enriched_at IS NULL OR last_enriched_at < ?)`
		args = append(args, filter.EnrichedBefore.UTC())
	}
	query += ` ORDER BY priority DESC, completeness ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.BusinessRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		var rec model.BusinessRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, a *model.OpportunityAssessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal assessment")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, record_id, data, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.RecordID, string(data), a.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert assessment")
}

func (s *SQLiteStore) LatestAssessment(ctx context.Context, recordID string) (*model.OpportunityAssessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM assessments WHERE record_id = ? ORDER BY created_at DESC LIMIT 1`,
		recordID,
	)
	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest assessment")
	}
	var a model.OpportunityAssessment
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal assessment")
	}
	return &a, nil
}

func (s *SQLiteStore) SaveRunSummary(ctx context.Context, sum *model.RunSummary) error {
	if sum.ID == "" {
		sum.ID = uuid.New().String()
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run summary")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_summaries (id, record_id, data, created_at) VALUES (?, ?, ?, ?)`,
		sum.ID, sum.RecordID, string(data), sum.StartedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert run summary")
}

func (s *SQLiteStore) ListRunSummaries(ctx context.Context, recordID string, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM run_summaries WHERE record_id = ? ORDER BY created_at DESC LIMIT ?`,
		recordID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list run summaries")
	}
	defer rows.Close()

	var summaries []model.RunSummary
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run summary")
		}
		var sum model.RunSummary
		if err := json.Unmarshal([]byte(data), &sum); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run summary")
		}
		summaries = append(summaries, sum)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: list run summaries iterate")
}

func (s *SQLiteStore) BudgetUsed(ctx context.Context, provider, day string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT used FROM budget_usage WHERE provider = ? AND day = ?`,
		provider, day,
	)
	var used int
	err := row.Scan(&used)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: budget used %s/%s", provider, day)
	}
	return used, nil
}

func (s *SQLiteStore) AddBudgetUse(ctx context.Context, provider, day string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_usage (provider, day, used) VALUES (?, ?, 1)
		 ON CONFLICT (provider, day) DO UPDATE SET used = used + 1`,
		provider, day,
	)
	return eris.Wrapf(err, "sqlite: add budget use %s/%s", provider, day)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

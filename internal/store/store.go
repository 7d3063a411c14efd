// Package store provides persistence for business records, enrichment
// runs, opportunity assessments, and provider budget counters.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: record not found")

// RecordFilter specifies criteria for listing enrichment candidates.
// Zero values leave a bound unset; MaxCompleteness <= 0 means no upper
// bound. Results are ordered priority-first, then ascending completeness.
type RecordFilter struct {
	MinCompleteness int
	MaxCompleteness int
	EnrichedBefore  time.Time // include records never enriched or last enriched before this
	Limit           int
}

// Store defines the persistence interface for the enrichment engine.
// The engine writes only the known enrichable field set (serialized with
// the record), enrichment metadata, and the auxiliary assessment/run rows.
type Store interface {
	// Records
	CreateRecord(ctx context.Context, rec *model.BusinessRecord) error
	GetRecord(ctx context.Context, id string) (*model.BusinessRecord, error)
	UpdateRecord(ctx context.Context, rec *model.BusinessRecord) error
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.BusinessRecord, error)

	// Assessments (auxiliary: failures here must not fail a run)
	SaveAssessment(ctx context.Context, a *model.OpportunityAssessment) error
	LatestAssessment(ctx context.Context, recordID string) (*model.OpportunityAssessment, error)

	// Run summaries (auxiliary)
	SaveRunSummary(ctx context.Context, s *model.RunSummary) error
	ListRunSummaries(ctx context.Context, recordID string, limit int) ([]model.RunSummary, error)

	// Budget counters, keyed by provider and UTC day (YYYY-MM-DD)
	BudgetUsed(ctx context.Context, provider, day string) (int, error)
	AddBudgetUse(ctx context.Context, provider, day string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

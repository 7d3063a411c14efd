// Package report aggregates operational statistics over the record base
// and current provider budget usage.
package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/gaps"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

// statsScanLimit caps how many records one stats pass will load.
const statsScanLimit = 10000

// BudgetReader exposes current provider budget counters.
type BudgetReader interface {
	Usage(ctx context.Context) ([]model.BudgetState, error)
}

// Stats is the aggregate snapshot served to operators.
type Stats struct {
	TotalRecords    int                   `json:"total_records"`
	AvgCompleteness int                   `json:"avg_completeness"`
	FullyEnriched   int                   `json:"fully_enriched"`
	EnrichedLast24h int                   `json:"enriched_last_24h"`
	GapCounts       map[model.FieldKey]int `json:"gap_counts"`
	Budgets         []model.BudgetState   `json:"budgets"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// Collector builds Stats from the store and budget tracker.
type Collector struct {
	store  store.Store
	budget BudgetReader
	target int
	now    func() time.Time
}

// New creates a Collector. target is the completeness threshold at or
// above which a record counts as fully enriched.
func New(st store.Store, budget BudgetReader, target int) *Collector {
	if target <= 0 {
		target = 80
	}
	return &Collector{
		store:  st,
		budget: budget,
		target: target,
		now:    time.Now,
	}
}

// Collect scans the record base and returns the aggregate snapshot.
func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	records, err := c.store.ListRecords(ctx, store.RecordFilter{Limit: statsScanLimit})
	if err != nil {
		return nil, eris.Wrap(err, "report: list records")
	}

	now := c.now().UTC()
	dayAgo := now.Add(-24 * time.Hour)

	stats := &Stats{
		TotalRecords: len(records),
		GapCounts:    make(map[model.FieldKey]int),
		GeneratedAt:  now,
	}

	totalCompleteness := 0
	for i := range records {
		rec := &records[i]
		completeness := gaps.Completeness(rec)
		totalCompleteness += completeness

		if completeness >= c.target {
			stats.FullyEnriched++
		}
		if rec.Enrichment.LastEnrichedAt != nil && rec.Enrichment.LastEnrichedAt.After(dayAgo) {
			stats.EnrichedLast24h++
		}
		ga := gaps.Analyze(rec)
		for _, key := range ga.Missing {
			stats.GapCounts[key]++
		}
	}
	if len(records) > 0 {
		stats.AvgCompleteness = totalCompleteness / len(records)
	}

	if c.budget != nil {
		budgets, err := c.budget.Usage(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "report: read budgets")
		}
		stats.Budgets = budgets
	}
	return stats, nil
}

// Package scheduler selects enrichment candidates from storage and runs
// them through the orchestrator in sequence, stopping early when all
// provider budgets are gone.
package scheduler

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

// Enricher runs one record through the enrichment loop.
type Enricher interface {
	EnrichRecord(ctx context.Context, recordID string, maxRounds int) (*model.RunSummary, error)
}

// BudgetChecker reports whether any search provider has quota left.
type BudgetChecker interface {
	HasBudget(ctx context.Context) (bool, error)
}

// Config holds batch selection defaults.
type Config struct {
	BatchSize          int `yaml:"batch_size" mapstructure:"batch_size"`
	TargetCompleteness int `yaml:"target_completeness" mapstructure:"target_completeness"`
	CooldownDays       int `yaml:"cooldown_days" mapstructure:"cooldown_days"`
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.TargetCompleteness <= 0 {
		c.TargetCompleteness = 80
	}
	if c.CooldownDays <= 0 {
		c.CooldownDays = 7
	}
	return c
}

// Params overrides selection bounds for one invocation. Zero values
// fall back to the configured defaults.
type Params struct {
	BatchSize       int `json:"batch_size"`
	MinCompleteness int `json:"min_completeness"`
	MaxCompleteness int `json:"max_completeness"`
}

// Result summarizes one batch run.
type Result struct {
	Selected     int                 `json:"selected"`
	Enriched     int                 `json:"enriched"`
	Failed       int                 `json:"failed"`
	StoppedEarly bool                `json:"stopped_early"`
	Summaries    []*model.RunSummary `json:"summaries,omitempty"`
}

// Scheduler runs enrichment batches.
type Scheduler struct {
	store    store.Store
	enricher Enricher
	search   BudgetChecker
	cfg      Config
	now      func() time.Time
}

// New creates a Scheduler.
func New(st store.Store, enricher Enricher, search BudgetChecker, cfg Config) *Scheduler {
	return &Scheduler{
		store:    st,
		enricher: enricher,
		search:   search,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// Run selects candidates and enriches them one at a time. Records go
// priority-first, then least-complete-first; records enriched within the
// cooldown window are excluded. The batch stops early, without error,
// as soon as every provider's budget is exhausted.
func (s *Scheduler) Run(ctx context.Context, params Params) (*Result, error) {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}
	maxCompleteness := params.MaxCompleteness
	if maxCompleteness <= 0 {
		maxCompleteness = s.cfg.TargetCompleteness
	}
	cutoff := s.now().UTC().AddDate(0, 0, -s.cfg.CooldownDays)

	records, err := s.store.ListRecords(ctx, store.RecordFilter{
		MinCompleteness: params.MinCompleteness,
		MaxCompleteness: maxCompleteness,
		EnrichedBefore:  cutoff,
		Limit:           batchSize,
	})
	if err != nil {
		return nil, eris.Wrap(err, "scheduler: select candidates")
	}

	result := &Result{Selected: len(records)}
	zap.L().Info("scheduler: batch starting",
		zap.Int("selected", len(records)),
		zap.Int("max_completeness", maxCompleteness),
	)

	for _, rec := range records {
		ok, err := s.search.HasBudget(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "scheduler: check budget")
		}
		if !ok {
			result.StoppedEarly = true
			zap.L().Info("scheduler: all provider budgets exhausted, stopping batch",
				zap.Int("remaining", result.Selected-result.Enriched-result.Failed),
			)
			break
		}

		summary, err := s.enricher.EnrichRecord(ctx, rec.ID, 0)
		if err != nil {
			result.Failed++
			zap.L().Warn("scheduler: record enrichment failed",
				zap.String("record_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		result.Enriched++
		result.Summaries = append(result.Summaries, summary)
	}

	zap.L().Info("scheduler: batch complete",
		zap.Int("enriched", result.Enriched),
		zap.Int("failed", result.Failed),
		zap.Bool("stopped_early", result.StoppedEarly),
	)
	return result, nil
}

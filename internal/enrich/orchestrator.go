// Package enrich implements the round-based enrichment loop: analyze
// gaps, consult the website and the search-provider chain, merge what
// the heuristics extract, and persist the result atomically.
package enrich

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/extract"
	"github.com/sells-group/prospector/internal/gaps"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/scorer"
	"github.com/sells-group/prospector/internal/source"
	"github.com/sells-group/prospector/internal/store"
)

// PageFetcher fetches a single web page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*source.Result, error)
}

// Searcher runs a query through the budget-gated provider chain.
type Searcher interface {
	Search(ctx context.Context, query string) (*source.Result, error)
	HasBudget(ctx context.Context) (bool, error)
}

// Config bounds a single enrichment run.
type Config struct {
	MaxRounds          int           `yaml:"max_rounds" mapstructure:"max_rounds"`
	TargetCompleteness int           `yaml:"target_completeness" mapstructure:"target_completeness"`
	GapsPerRound       int           `yaml:"gaps_per_round" mapstructure:"gaps_per_round"`
	CallDelay          time.Duration `yaml:"call_delay" mapstructure:"call_delay"`
}

func (c Config) withDefaults() Config {
	if c.MaxRounds <= 0 {
		c.MaxRounds = 5
	}
	if c.TargetCompleteness <= 0 {
		c.TargetCompleteness = 80
	}
	if c.GapsPerRound <= 0 {
		c.GapsPerRound = 3
	}
	if c.CallDelay <= 0 {
		c.CallDelay = 500 * time.Millisecond
	}
	return c
}

// Orchestrator runs the per-record enrichment state machine. One record
// is fully enriched before the next begins; the rate limiter spaces out
// external calls.
type Orchestrator struct {
	store   store.Store
	website PageFetcher
	search  Searcher
	limiter *rate.Limiter
	cfg     Config
	now     func() time.Time
}

// New creates an Orchestrator.
func New(st store.Store, website PageFetcher, search Searcher, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		store:   st,
		website: website,
		search:  search,
		limiter: rate.NewLimiter(rate.Every(cfg.CallDelay), 1),
		cfg:     cfg,
		now:     time.Now,
	}
}

// EnrichRecord runs the full enrichment loop for one record and persists
// record, assessment, and run summary. maxRounds <= 0 uses the
// configured default. Only failure to persist the final record is fatal;
// source failures and auxiliary write failures are recorded in the
// summary and logged.
func (o *Orchestrator) EnrichRecord(ctx context.Context, recordID string, maxRounds int) (*model.RunSummary, error) {
	rec, err := o.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: load record %s", recordID)
	}
	if maxRounds <= 0 {
		maxRounds = o.cfg.MaxRounds
	}

	start := o.now()
	summary := &model.RunSummary{
		RecordID:           rec.ID,
		FieldsEnriched:     make(map[model.FieldKey]string),
		CompletenessBefore: gaps.Completeness(rec),
		StartedAt:          start,
	}

	zap.L().Info("enrich: starting run",
		zap.String("record_id", rec.ID),
		zap.String("company", rec.CompanyName),
		zap.Int("completeness", summary.CompletenessBefore),
	)

	websiteScraped := false
	painMined := false
	stop := model.StopRoundLimit

	for round := 1; round <= maxRounds; round++ {
		ga := gaps.Analyze(rec)
		if ga.Completeness >= o.cfg.TargetCompleteness {
			stop = model.StopTargetMet
			break
		}
		if len(ga.Searchable) == 0 {
			stop = model.StopExhausted
			break
		}
		summary.Rounds = round

		if rec.Website != "" && !websiteScraped {
			websiteScraped = true
			o.scrapeWebsite(ctx, rec, summary)
		}

		if !painMined {
			painMined = true
			o.minePainSignals(ctx, rec, summary)
		}

		if o.searchGaps(ctx, rec, ga.Searchable, summary) {
			stop = model.StopBudgetExhausted
			break
		}
	}

	return o.finalize(ctx, rec, summary, stop)
}

// scrapeWebsite runs the free website pass and merges everything the
// heuristics find on the page.
func (o *Orchestrator) scrapeWebsite(ctx context.Context, rec *model.BusinessRecord, summary *model.RunSummary) {
	if err := o.limiter.Wait(ctx); err != nil {
		return
	}
	result, err := o.website.Fetch(ctx, rec.Website)
	if err != nil {
		summary.Failures = append(summary.Failures, "website: "+err.Error())
		zap.L().Debug("enrich: website fetch failed",
			zap.String("record_id", rec.ID),
			zap.Error(err),
		)
		return
	}

	filled := mergeAll(rec, result.Blob())
	for _, key := range filled {
		summary.FieldsEnriched[key] = result.Source
	}
	if len(filled) > 0 {
		addSource(summary, result.Source)
	}
}

// minePainSignals runs the dedicated reviews query once per run,
// independent of the gap loop. Budget exhaustion silently skips it.
func (o *Orchestrator) minePainSignals(ctx context.Context, rec *model.BusinessRecord, summary *model.RunSummary) {
	ok, err := o.search.HasBudget(ctx)
	if err != nil || !ok {
		return
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return
	}

	result, err := o.search.Search(ctx, reviewsQuery(rec))
	if errors.Is(err, source.ErrBudgetExhausted) {
		return
	}
	summary.SearchCalls++
	if err != nil {
		summary.Failures = append(summary.Failures, "pain_mining: "+err.Error())
		return
	}

	signals := extract.DetectPainSignals(result.Blob(), o.now())
	if len(signals) > 0 {
		rec.PainSignals = append(rec.PainSignals, signals...)
		summary.PainSignalsFound = len(signals)
		addSource(summary, result.Source)
	}
}

// searchGaps works through the round's searchable gaps in priority
// order, capped per round. Returns true when provider budgets ran out.
func (o *Orchestrator) searchGaps(ctx context.Context, rec *model.BusinessRecord, searchable []model.FieldKey, summary *model.RunSummary) bool {
	searched := 0
	for _, gap := range searchable {
		if searched >= o.cfg.GapsPerRound {
			return false
		}
		// The website pass earlier in the round may have filled this gap.
		if gaps.Populated(rec, gap) {
			continue
		}
		query := queryFor(gap, rec)
		if query == "" {
			continue
		}

		ok, err := o.search.HasBudget(ctx)
		if err != nil {
			summary.Failures = append(summary.Failures, "budget: "+err.Error())
			return false
		}
		if !ok {
			return true
		}
		if err := o.limiter.Wait(ctx); err != nil {
			return false
		}

		result, err := o.search.Search(ctx, query)
		if errors.Is(err, source.ErrBudgetExhausted) {
			return true
		}
		searched++
		summary.SearchCalls++
		if err != nil {
			summary.Failures = append(summary.Failures, string(gap)+": "+err.Error())
			continue
		}

		if mergeGap(rec, gap, result) {
			summary.FieldsEnriched[gap] = result.Source
			addSource(summary, result.Source)
		}
	}
	return false
}

// finalize recomputes completeness, gap analysis, and the opportunity
// assessment, then persists everything. The record write is the one
// fatal failure; auxiliary writes degrade to a warning.
func (o *Orchestrator) finalize(ctx context.Context, rec *model.BusinessRecord, summary *model.RunSummary, stop model.StopReason) (*model.RunSummary, error) {
	now := o.now()
	finalGA := gaps.Analyze(rec)

	rec.Enrichment = model.EnrichmentMetadata{
		Completeness:   finalGA.Completeness,
		Sources:        summary.SourcesUsed,
		Rounds:         summary.Rounds,
		LastEnrichedAt: &now,
		Gaps:           &finalGA,
	}

	summary.CompletenessAfter = finalGA.Completeness
	summary.RemainingGaps = finalGA.Missing
	summary.StopReason = stop
	summary.DurationMS = now.Sub(summary.StartedAt).Milliseconds()

	if err := o.store.UpdateRecord(ctx, rec); err != nil {
		return nil, eris.Wrapf(err, "enrich: persist record %s", rec.ID)
	}

	assessment := scorer.Assess(rec, now)
	if err := o.store.SaveAssessment(ctx, assessment); err != nil {
		zap.L().Warn("enrich: failed to save assessment",
			zap.String("record_id", rec.ID),
			zap.Error(err),
		)
	}
	if err := o.store.SaveRunSummary(ctx, summary); err != nil {
		zap.L().Warn("enrich: failed to save run summary",
			zap.String("record_id", rec.ID),
			zap.Error(err),
		)
	}

	zap.L().Info("enrich: run complete",
		zap.String("record_id", rec.ID),
		zap.Int("rounds", summary.Rounds),
		zap.Int("search_calls", summary.SearchCalls),
		zap.Int("completeness_before", summary.CompletenessBefore),
		zap.Int("completeness_after", summary.CompletenessAfter),
		zap.String("stop_reason", string(stop)),
	)
	return summary, nil
}

func addSource(summary *model.RunSummary, name string) {
	for _, s := range summary.SourcesUsed {
		if s == name {
			return
		}
	}
	summary.SourcesUsed = append(summary.SourcesUsed, name)
}

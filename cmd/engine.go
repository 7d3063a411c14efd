package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/budget"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/report"
	"github.com/sells-group/prospector/internal/scheduler"
	"github.com/sells-group/prospector/internal/source"
	"github.com/sells-group/prospector/internal/store"
)

// engineEnv holds the initialized store, provider chain, and engine
// components needed by the enrich/batch/serve commands.
type engineEnv struct {
	Store        store.Store
	Tracker      *budget.Tracker
	Chain        *source.Chain
	Orchestrator *enrich.Orchestrator
	Scheduler    *scheduler.Scheduler
	Report       *report.Collector
}

// Close releases resources held by the engine environment.
func (e *engineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "prospector.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine sets up the store, budget tracker, source adapters, and the
// orchestrator stack. Callers should defer env.Close().
func initEngine(ctx context.Context, mode string) (*engineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	tracker := budget.New(st, cfg.BudgetLimits())

	// Provider chain in fallback order. Providers without a configured
	// key never appear in the chain.
	var providers []source.Adapter
	if cfg.Serper.Key != "" {
		providers = append(providers, source.NewSerper(cfg.Serper.Key))
	}
	if cfg.Brave.Key != "" {
		providers = append(providers, source.NewBrave(cfg.Brave.Key))
	}
	if len(providers) == 0 {
		zap.L().Warn("no search providers configured, enrichment will use website inspection only")
	}
	chain := source.NewChain(tracker, providers...)

	orch := enrich.New(st, source.NewWebsite(), chain, cfg.Enrich)
	sched := scheduler.New(st, orch, chain, cfg.Scheduler)
	rep := report.New(st, tracker, cfg.Enrich.TargetCompleteness)

	return &engineEnv{
		Store:        st,
		Tracker:      tracker,
		Chain:        chain,
		Orchestrator: orch,
		Scheduler:    sched,
		Report:       rep,
	}, nil
}

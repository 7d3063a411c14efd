package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/budget"
)

// ErrBudgetExhausted is returned when every provider in the chain is
// out of daily quota.
var ErrBudgetExhausted = eris.New("source: all provider budgets exhausted")

// Chain tries search providers in priority order under the budget
// tracker, returning the first success. Every attempted call is charged
// against the provider's budget whether it succeeds or not.
type Chain struct {
	providers []Adapter
	tracker   *budget.Tracker
}

// NewChain creates a Chain. Providers are tried in the order given.
func NewChain(tracker *budget.Tracker, providers ...Adapter) *Chain {
	return &Chain{
		providers: providers,
		tracker:   tracker,
	}
}

// HasBudget reports whether any provider can still be called today.
func (c *Chain) HasBudget(ctx context.Context) (bool, error) {
	return c.tracker.AnyAvailable(ctx)
}

// Search runs the query through the providers in order and returns the
// first result carrying at least one item. A provider failure or an
// empty result set falls through to the next provider; the call is
// still charged. Returns ErrBudgetExhausted when no provider has quota.
func (c *Chain) Search(ctx context.Context, query string) (*Result, error) {
	var lastErr error
	attempted := false

	for _, p := range c.providers {
		ok, err := c.tracker.CanUse(ctx, p.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		attempted = true
		result, searchErr := p.Search(ctx, query)
		if err := c.tracker.RecordUse(ctx, p.Name()); err != nil {
			zap.L().Warn("source: failed to record budget use",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
		}
		if searchErr != nil {
			zap.L().Debug("source: provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(searchErr),
			)
			lastErr = searchErr
			continue
		}
		// An empty result set is treated like a failure: the next
		// provider may still have hits for the query.
		if result == nil || len(result.Items) == 0 {
			zap.L().Debug("source: provider returned no items, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", query),
			)
			continue
		}
		return result, nil
	}

	if !attempted {
		return nil, ErrBudgetExhausted
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "source: all providers failed")
	}
	return nil, eris.Errorf("source: no result for query: %s", query)
}

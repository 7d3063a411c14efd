// Package budget enforces shared daily call quotas for paid search
// providers. Usage counters live in the store so every process working
// the same database draws from one pool.
package budget

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

const dayFormat = "2006-01-02"

// Counters is the slice of the store the tracker needs.
type Counters interface {
	BudgetUsed(ctx context.Context, provider, day string) (int, error)
	AddBudgetUse(ctx context.Context, provider, day string) error
}

// Tracker answers "may I call this provider right now" against per-day
// limits. Days roll over at UTC midnight; a new day starts a fresh
// counter lazily on first use.
type Tracker struct {
	counters Counters
	limits   map[string]int

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Tracker. Providers absent from limits are treated as
// having no quota at all.
func New(counters Counters, limits map[string]int) *Tracker {
	return &Tracker{
		counters: counters,
		limits:   limits,
		now:      time.Now,
	}
}

func (t *Tracker) day() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().UTC().Format(dayFormat)
}

// CanUse reports whether the provider has quota remaining today.
func (t *Tracker) CanUse(ctx context.Context, provider string) (bool, error) {
	limit, ok := t.limits[provider]
	if !ok || limit <= 0 {
		return false, nil
	}
	used, err := t.counters.BudgetUsed(ctx, provider, t.day())
	if err != nil {
		return false, eris.Wrapf(err, "budget: read usage for %s", provider)
	}
	return used < limit, nil
}

// RecordUse charges one call to the provider's daily counter. Callers
// charge every attempted call, successful or not.
func (t *Tracker) RecordUse(ctx context.Context, provider string) error {
	return eris.Wrapf(t.counters.AddBudgetUse(ctx, provider, t.day()),
		"budget: record use for %s", provider)
}

// AnyAvailable reports whether at least one provider has quota left.
func (t *Tracker) AnyAvailable(ctx context.Context) (bool, error) {
	for provider := range t.limits {
		ok, err := t.CanUse(ctx, provider)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Usage returns the current counter for every configured provider,
// sorted by provider name for stable output.
func (t *Tracker) Usage(ctx context.Context) ([]model.BudgetState, error) {
	day := t.day()
	windowStart, err := time.Parse(dayFormat, day)
	if err != nil {
		return nil, eris.Wrap(err, "budget: parse day")
	}

	states := make([]model.BudgetState, 0, len(t.limits))
	for provider, limit := range t.limits {
		used, err := t.counters.BudgetUsed(ctx, provider, day)
		if err != nil {
			return nil, eris.Wrapf(err, "budget: read usage for %s", provider)
		}
		states = append(states, model.BudgetState{
			Provider:    provider,
			Used:        used,
			Limit:       limit,
			WindowStart: windowStart,
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Provider < states[j].Provider })
	return states, nil
}

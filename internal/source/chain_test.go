package source

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/budget"
)

// mockAdapter is a scripted search provider for chain tests.
type mockAdapter struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Search(_ context.Context, _ string) (*Result, error) {
	m.calls++
	return m.result, m.err
}

type memCounters struct {
	used map[string]int
}

func newMemCounters() *memCounters {
	return &memCounters{used: make(map[string]int)}
}

func (m *memCounters) BudgetUsed(_ context.Context, provider, day string) (int, error) {
	return m.used[provider+"/"+day], nil
}

func (m *memCounters) AddBudgetUse(_ context.Context, provider, day string) error {
	m.used[provider+"/"+day]++
	return nil
}

func newTestChain(limits map[string]int, counters *memCounters, providers ...Adapter) *Chain {
	tracker := budget.New(counters, limits)
	return NewChain(tracker, providers...)
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &mockAdapter{name: "serper", result: &Result{Source: "serper", Items: []Item{{Title: "hit"}}}}
	fallback := &mockAdapter{name: "brave", result: &Result{Source: "brave"}}
	c := newTestChain(map[string]int{"serper": 10, "brave": 10}, newMemCounters(), primary, fallback)

	result, err := c.Search(context.Background(), "marios pizzeria worcester")
	require.NoError(t, err)
	assert.Equal(t, "serper", result.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestChain_FallsBackOnFailure(t *testing.T) {
	primary := &mockAdapter{name: "serper", err: eris.New("serper: status 500")}
	fallback := &mockAdapter{name: "brave", result: &Result{Source: "brave", Items: []Item{{Title: "hit"}}}}
	counters := newMemCounters()
	c := newTestChain(map[string]int{"serper": 10, "brave": 10}, counters, primary, fallback)

	result, err := c.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, "brave", result.Source)

	// The failed call is still charged.
	day := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, 1, counters.used["serper/"+day])
	assert.Equal(t, 1, counters.used["brave/"+day])
}

func TestChain_FallsBackOnEmptyResultSet(t *testing.T) {
	primary := &mockAdapter{name: "serper", result: &Result{Source: "serper"}}
	fallback := &mockAdapter{name: "brave", result: &Result{Source: "brave", Items: []Item{{Title: "hit"}}}}
	counters := newMemCounters()
	c := newTestChain(map[string]int{"serper": 10, "brave": 10}, counters, primary, fallback)

	result, err := c.Search(context.Background(), "sparse local query")
	require.NoError(t, err)
	assert.Equal(t, "brave", result.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)

	// The empty answer still counts against the provider's quota.
	day := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, 1, counters.used["serper/"+day])
	assert.Equal(t, 1, counters.used["brave/"+day])
}

func TestChain_AllProvidersEmpty(t *testing.T) {
	primary := &mockAdapter{name: "serper", result: &Result{Source: "serper"}}
	fallback := &mockAdapter{name: "brave", result: &Result{Source: "brave"}}
	c := newTestChain(map[string]int{"serper": 10, "brave": 10}, newMemCounters(), primary, fallback)

	_, err := c.Search(context.Background(), "query")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestChain_SkipsExhaustedProvider(t *testing.T) {
	primary := &mockAdapter{name: "serper", result: &Result{Source: "serper"}}
	fallback := &mockAdapter{name: "brave", result: &Result{Source: "brave", Items: []Item{{Title: "hit"}}}}
	counters := newMemCounters()
	day := time.Now().UTC().Format("2006-01-02")
	counters.used["serper/"+day] = 5

	c := newTestChain(map[string]int{"serper": 5, "brave": 10}, counters, primary, fallback)

	result, err := c.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, "brave", result.Source)
	assert.Equal(t, 0, primary.calls)
}

func TestChain_AllBudgetsExhausted(t *testing.T) {
	primary := &mockAdapter{name: "serper"}
	fallback := &mockAdapter{name: "brave"}
	counters := newMemCounters()
	day := time.Now().UTC().Format("2006-01-02")
	counters.used["serper/"+day] = 1
	counters.used["brave/"+day] = 1

	c := newTestChain(map[string]int{"serper": 1, "brave": 1}, counters, primary, fallback)

	_, err := c.Search(context.Background(), "query")
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 0, fallback.calls)

	ok, err := c.HasBudget(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChain_AllProvidersFail(t *testing.T) {
	primary := &mockAdapter{name: "serper", err: eris.New("serper: status 500")}
	fallback := &mockAdapter{name: "brave", err: eris.New("brave: status 429")}
	c := newTestChain(map[string]int{"serper": 10, "brave": 10}, newMemCounters(), primary, fallback)

	_, err := c.Search(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestResult_Blob(t *testing.T) {
	r := &Result{
		Source:  "serper",
		Content: "page text",
		Items: []Item{
			{Title: "Mario's Pizzeria", URL: "https://marios.example.com", Snippet: "Best pizza in Worcester"},
		},
	}
	blob := r.Blob()
	assert.Contains(t, blob, "page text")
	assert.Contains(t, blob, "Mario's Pizzeria")
	assert.Contains(t, blob, "https://marios.example.com")
	assert.Contains(t, blob, "Best pizza in Worcester")
}

package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCounters is an in-memory Counters for tests.
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

func TestTracker_CanUseAndRecord(t *testing.T) {
	tr := New(newMemCounters(), map[string]int{"serper": 2})
	ctx := context.Background()

	ok, err := tr.CanUse(ctx, "serper")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, tr.RecordUse(ctx, "serper"))
	require.NoError(t, tr.RecordUse(ctx, "serper"))

	ok, err = tr.CanUse(ctx, "serper")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_UnknownProvider(t *testing.T) {
	tr := New(newMemCounters(), map[string]int{"serper": 100})

	ok, err := tr.CanUse(context.Background(), "bing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_PreExhaustedState(t *testing.T) {
	counters := newMemCounters()
	tr := New(counters, map[string]int{"serper": 3})
	tr.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	// Counter already at the limit when the tracker comes up.
	counters.used["serper/2026-08-29"] = 3

	ok, err := tr.CanUse(context.Background(), "serper")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_DayRollover(t *testing.T) {
	tr := New(newMemCounters(), map[string]int{"serper": 1})
	current := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)
	tr.now = func() time.Time { return current }
	ctx := context.Background()

	require.NoError(t, tr.RecordUse(ctx, "serper"))
	ok, err := tr.CanUse(ctx, "serper")
	require.NoError(t, err)
	assert.False(t, ok)

	// UTC midnight passes; quota resets.
	current = current.Add(2 * time.Minute)
	ok, err = tr.CanUse(ctx, "serper")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTracker_AnyAvailable(t *testing.T) {
	counters := newMemCounters()
	tr := New(counters, map[string]int{"serper": 1, "brave": 1})
	tr.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	ok, err := tr.AnyAvailable(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	counters.used["serper/2026-08-29"] = 1
	counters.used["brave/2026-08-29"] = 1

	ok, err = tr.AnyAvailable(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_Usage(t *testing.T) {
	counters := newMemCounters()
	tr := New(counters, map[string]int{"serper": 100, "brave": 50})
	tr.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	counters.used["serper/2026-08-29"] = 7

	states, err := tr.Usage(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 2)

	// Sorted by provider name.
	assert.Equal(t, "brave", states[0].Provider)
	assert.Equal(t, 50, states[0].Limit)
	assert.Equal(t, 0, states[0].Used)
	assert.Equal(t, 50, states[0].Remaining())

	assert.Equal(t, "serper", states[1].Provider)
	assert.Equal(t, 7, states[1].Used)
	assert.Equal(t, 93, states[1].Remaining())
}

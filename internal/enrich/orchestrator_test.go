package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/source"
	"github.com/sells-group/prospector/internal/store"
)

// mockStore is an in-memory store.Store for orchestrator tests.
type mockStore struct {
	records     map[string]*model.BusinessRecord
	assessments []*model.OpportunityAssessment
	summaries   []*model.RunSummary

	updateErr     error
	assessmentErr error
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]*model.BusinessRecord)}
}

func (m *mockStore) CreateRecord(_ context.Context, rec *model.BusinessRecord) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *mockStore) GetRecord(_ context.Context, id string) (*model.BusinessRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (m *mockStore) UpdateRecord(_ context.Context, rec *model.BusinessRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *mockStore) ListRecords(_ context.Context, _ store.RecordFilter) ([]model.BusinessRecord, error) {
	return nil, nil
}

func (m *mockStore) SaveAssessment(_ context.Context, a *model.OpportunityAssessment) error {
	if m.assessmentErr != nil {
		return m.assessmentErr
	}
	m.assessments = append(m.assessments, a)
	return nil
}

func (m *mockStore) LatestAssessment(_ context.Context, _ string) (*model.OpportunityAssessment, error) {
	return nil, nil
}

func (m *mockStore) SaveRunSummary(_ context.Context, s *model.RunSummary) error {
	m.summaries = append(m.summaries, s)
	return nil
}

func (m *mockStore) ListRunSummaries(_ context.Context, _ string, _ int) ([]model.RunSummary, error) {
	return nil, nil
}

func (m *mockStore) BudgetUsed(_ context.Context, _, _ string) (int, error) { return 0, nil }
func (m *mockStore) AddBudgetUse(_ context.Context, _, _ string) error      { return nil }
func (m *mockStore) Migrate(_ context.Context) error                        { return nil }
func (m *mockStore) Close() error                                           { return nil }

// mockFetcher serves a canned page body.
type mockFetcher struct {
	content string
	err     error
	calls   int
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (*source.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &source.Result{Source: "website", Content: m.content}, nil
}

// mockSearcher scripts the provider chain.
type mockSearcher struct {
	hasBudget bool
	result    *source.Result
	err       error
	calls     int
}

func (m *mockSearcher) HasBudget(_ context.Context) (bool, error) { return m.hasBudget, nil }

func (m *mockSearcher) Search(_ context.Context, _ string) (*source.Result, error) {
	m.calls++
	if !m.hasBudget {
		return nil, source.ErrBudgetExhausted
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func testConfig() Config {
	return Config{
		MaxRounds:          5,
		TargetCompleteness: 80,
		GapsPerRound:       3,
		CallDelay:          time.Millisecond,
	}
}

func completeRecord() *model.BusinessRecord {
	return &model.BusinessRecord{
		ID:                "rec-full",
		CompanyName:       "Finished Bistro",
		Website:           "https://bistro.example.com",
		Address:           "1 Main St",
		City:              "Worcester",
		State:             "MA",
		ZipCode:           "01601",
		Phone:             "(508) 555-0000",
		Email:             "info@bistro.example.com",
		Cuisine:           "Italian",
		OwnerName:         "Jane Smith",
		OwnerEmail:        "jane@bistro.example.com",
		POSSystem:         "Toast",
		OnlineOrdering:    "Toast Online Ordering",
		WebsitePlatform:   "WordPress",
		PaymentProcessor:  "Stripe",
		YelpURL:           "https://yelp.com/biz/finished-bistro",
		YelpRating:        4.5,
		YelpReviewCount:   120,
		FacebookURL:       "https://facebook.com/finishedbistro",
		GoogleRating:      4.4,
		GoogleReviewCount: 200,
	}
}

func TestEnrichRecord_AlreadyCompleteIsNoOp(t *testing.T) {
	st := newMockStore()
	rec := completeRecord()
	require.NoError(t, st.CreateRecord(context.Background(), rec))

	fetcher := &mockFetcher{}
	searcher := &mockSearcher{hasBudget: true}
	o := New(st, fetcher, searcher, testConfig())

	summary, err := o.EnrichRecord(context.Background(), rec.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, model.StopTargetMet, summary.StopReason)
	assert.Equal(t, 0, summary.Rounds)
	assert.Equal(t, 0, summary.SearchCalls)
	assert.Equal(t, 0, fetcher.calls)
	assert.Equal(t, 0, searcher.calls)

	// No fields changed beyond metadata.
	got := st.records[rec.ID]
	assert.Equal(t, rec.Phone, got.Phone)
	assert.Equal(t, rec.POSSystem, got.POSSystem)
	assert.NotNil(t, got.Enrichment.LastEnrichedAt)
}

func TestEnrichRecord_WebsiteOnlyPass(t *testing.T) {
	st := newMockStore()
	rec := &model.BusinessRecord{
		ID:          "rec-web",
		CompanyName: "Mario's Pizzeria",
		City:        "Worcester",
		State:       "MA",
		Website:     "https://marios.example.com",
	}
	require.NoError(t, st.CreateRecord(context.Background(), rec))

	page := `<html><body>
		<a href="https://order.toasttab.com/online/marios">Order Online</a>
		<p>Email us: info@mariospizza.net or call (508) 555-1234</p>
		<p>Pizza, pasta, calzone. Authentic Italian trattoria.</p>
	</body></html>`
	fetcher := &mockFetcher{content: page}
	searcher := &mockSearcher{hasBudget: false}
	o := New(st, fetcher, searcher, testConfig())

	before := rec.Enrichment.Completeness
	summary, err := o.EnrichRecord(context.Background(), rec.ID, 3)
	require.NoError(t, err)

	got := st.records[rec.ID]
	assert.Equal(t, "Toast", got.POSSystem)
	assert.Equal(t, "Toast Online Ordering", got.OnlineOrdering)
	assert.Equal(t, "info@mariospizza.net", got.Email)
	assert.Equal(t, "(508) 555-1234", got.Phone)
	assert.Equal(t, "Italian", got.Cuisine)

	assert.Greater(t, summary.CompletenessAfter, before)
	assert.Equal(t, 0, summary.SearchCalls)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "website", summary.FieldsEnriched[model.FieldPOSSystem])
}

func TestEnrichRecord_NeverExceedsMaxRounds(t *testing.T) {
	st := newMockStore()
	rec := &model.BusinessRecord{ID: "rec-sparse", CompanyName: "Empty Diner"}
	require.NoError(t, st.CreateRecord(context.Background(), rec))

	// Searches succeed but yield nothing extractable.
	searcher := &mockSearcher{hasBudget: true, result: &source.Result{Source: "serper"}}
	o := New(st, &mockFetcher{}, searcher, testConfig())

	summary, err := o.EnrichRecord(context.Background(), rec.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, model.StopRoundLimit, summary.StopReason)
	assert.Equal(t, 2, summary.Rounds)
	// Gap searches capped per round, plus one pain-mining call.
	assert.LessOrEqual(t, searcher.calls, 2*3+1)
}

func TestEnrichRecord_NoSearchWhenBudgetExhausted(t *testing.T) {
	st := newMockStore()
	rec := &model.BusinessRecord{ID: "rec-broke", CompanyName: "Broke Cafe"}
	require.NoError(t, st.CreateRecord(context.Background(), rec))

	searcher := &mockSearcher{hasBudget: false}
	o := New(st, &mockFetcher{}, searcher, testConfig())

	summary, err := o.EnrichRecord(context.Background(), rec.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, model.StopBudgetExhausted, summary.StopReason)
	assert.Equal(t, 0, searcher.calls)
	assert.Equal(t, 0, summary.SearchCalls)
}

func TestEnrichRecord_SearchFillsGaps(t *testing.T) {
	st := newMockStore()
	rec := &model.BusinessRecord{ID: "rec-gap", CompanyName: "Taco Town", City: "Austin", State: "TX"}
	require.NoError(t, st.CreateRecord(context.Background(), rec))

	searcher := &mockSearcher{
		hasBudget: true,
		result: &source.Result{
			Source: "serper",
			Items: []source.Item{
				{
					Title:   "Taco Town - Austin TX",
					URL:     "https://tacotown.example.com",
					Snippet: "Call (512) 555-9876. Powered by Toast.",
				},
			},
		},
	}
	o := New(st, &mockFetcher{}, searcher, testConfig())

	summary, err := o.EnrichRecord(context.Background(), rec.ID, 2)
	require.NoError(t, err)

	got := st.records[rec.ID]
	assert.Equal(t, "https://tacotown.example.com", got.Website)
	assert.Equal(t, "(512) 555-9876", got.Phone)
	assert.Greater(t, summary.SearchCalls, 0)
	assert.Contains(t, summary.SourcesUsed, "serper")
}

func TestEnrichRecord_PersistFailureIsFatal(t *testing.T) {
	st := newMockStore()
	rec := completeRecord()
	require.NoError(t, st.CreateRecord(context.Background(), rec))
	st.updateErr = eris.New("sqlite: disk full")

	o := New(st, &mockFetcher{}, &mockSearcher{}, testConfig())

	_, err := o.EnrichRecord(context.Background(), rec.ID, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist record")
}

func TestEnrichRecord_AssessmentFailureTolerated(t *testing.T) {
	st := newMockStore()
	rec := completeRecord()
	require.NoError(t, st.CreateRecord(context.Background(), rec))
	st.assessmentErr = eris.New("sqlite: locked")

	o := New(st, &mockFetcher{}, &mockSearcher{}, testConfig())

	summary, err := o.EnrichRecord(context.Background(), rec.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.StopTargetMet, summary.StopReason)
	assert.Len(t, st.summaries, 1)
}

func TestEnrichRecord_RecordNotFound(t *testing.T) {
	o := New(newMockStore(), &mockFetcher{}, &mockSearcher{}, testConfig())

	_, err := o.EnrichRecord(context.Background(), "ghost", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

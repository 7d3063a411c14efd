package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func factorNames(a *model.OpportunityAssessment) []string {
	names := make([]string, 0, len(a.Factors))
	for _, f := range a.Factors {
		names = append(names, f.Name)
	}
	return names
}

func TestAssess_NoPOSNoOrderingWithPain(t *testing.T) {
	now := time.Now().UTC()
	rec := &model.BusinessRecord{
		ID:          "rec-1",
		CompanyName: "Mario's Pizzeria",
		PainSignals: []model.PainSignal{
			{Type: "slow_service", Severity: "medium"},
			{Type: "no_online_ordering", Severity: "high"},
		},
	}

	a := Assess(rec, now)
	assert.Greater(t, a.Score, 50)

	names := factorNames(a)
	assert.Equal(t, 1, count(names, "No Modern POS"))
	assert.Equal(t, 1, count(names, "No Online Ordering"))
	assert.Equal(t, 1, count(names, "Pain Signals Detected"))
	assert.Len(t, a.Factors, 3)
	assert.NotEmpty(t, a.Recommendations)
}

func count(ss []string, want string) int {
	n := 0
	for _, s := range ss {
		if s == want {
			n++
		}
	}
	return n
}

func TestAssess_LegacyPOS(t *testing.T) {
	rec := &model.BusinessRecord{
		ID:             "rec-2",
		POSSystem:      "Micros",
		OnlineOrdering: "Toast Online Ordering",
	}

	a := Assess(rec, time.Now().UTC())
	names := factorNames(a)
	assert.Contains(t, names, "Legacy POS")
	assert.NotContains(t, names, "No Modern POS")
	assert.NotContains(t, names, "No Online Ordering")
}

func TestAssess_PainContributionCapped(t *testing.T) {
	rec := &model.BusinessRecord{
		ID:             "rec-3",
		POSSystem:      "Toast",
		OnlineOrdering: "Toast Online Ordering",
	}
	for i := 0; i < 10; i++ {
		rec.PainSignals = append(rec.PainSignals, model.PainSignal{Type: "slow_service"})
	}

	a := Assess(rec, time.Now().UTC())
	require.Len(t, a.Factors, 1)
	assert.Equal(t, "Pain Signals Detected", a.Factors[0].Name)
	assert.Equal(t, 15, a.Factors[0].Weight)
	assert.Equal(t, 65, a.Score)
}

func TestAssess_LowRating(t *testing.T) {
	rec := &model.BusinessRecord{
		ID:             "rec-4",
		POSSystem:      "Square",
		OnlineOrdering: "ChowNow",
		YelpRating:     4.5,
		GoogleRating:   2.9,
	}

	a := Assess(rec, time.Now().UTC())
	require.Len(t, a.Factors, 1)
	assert.Equal(t, "Low Public Rating", a.Factors[0].Name)
}

func TestAssess_FullyEquippedGetsFallbackRecommendation(t *testing.T) {
	rec := &model.BusinessRecord{
		ID:              "rec-5",
		Website:         "https://bistro.example.com",
		WebsitePlatform: "WordPress",
		POSSystem:       "Toast",
		OnlineOrdering:  "Toast Online Ordering",
		YelpRating:      4.6,
	}

	a := Assess(rec, time.Now().UTC())
	assert.Equal(t, 50, a.Score)
	assert.Empty(t, a.Factors)
	require.Len(t, a.Recommendations, 1)
}

func TestAssess_UndetectedWebsitePlatform(t *testing.T) {
	rec := &model.BusinessRecord{
		ID:             "rec-7",
		Website:        "https://marios.example.com",
		POSSystem:      "Toast",
		OnlineOrdering: "Toast Online Ordering",
	}

	a := Assess(rec, time.Now().UTC())
	require.Len(t, a.Factors, 1)
	assert.Equal(t, "Generic Website Platform", a.Factors[0].Name)
	assert.Equal(t, 55, a.Score)
}

func TestAssess_ScoreClampedAt100(t *testing.T) {
	rec := &model.BusinessRecord{
		ID:              "rec-6",
		Website:         "https://wixsite.example.com",
		GoogleRating:    2.1,
		WebsitePlatform: "Wix",
	}
	for i := 0; i < 5; i++ {
		rec.PainSignals = append(rec.PainSignals, model.PainSignal{Type: "staffing"})
	}

	a := Assess(rec, time.Now().UTC())
	assert.LessOrEqual(t, a.Score, 100)
}

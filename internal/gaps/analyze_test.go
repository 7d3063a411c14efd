package gaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func TestCompleteness_EmptyRecord(t *testing.T) {
	assert.Equal(t, 0, Completeness(&model.BusinessRecord{}))
}

func TestCompleteness_Monotonic(t *testing.T) {
	rec := &model.BusinessRecord{CompanyName: "Mario's Pizzeria"}
	prev := Completeness(rec)
	assert.Greater(t, prev, 0)

	// Filling fields one at a time never decreases completeness.
	rec.Website = "https://marios.example.com"
	next := Completeness(rec)
	assert.GreaterOrEqual(t, next, prev)
	prev = next

	rec.Phone = "(508) 555-1234"
	next = Completeness(rec)
	assert.GreaterOrEqual(t, next, prev)
	prev = next

	rec.POSSystem = "Toast"
	next = Completeness(rec)
	assert.GreaterOrEqual(t, next, prev)
}

func TestAnalyze_Deterministic(t *testing.T) {
	rec := &model.BusinessRecord{
		CompanyName: "Mario's Pizzeria",
		City:        "Worcester",
		Phone:       "(508) 555-1234",
	}

	first := Analyze(rec)
	second := Analyze(rec)
	assert.Equal(t, first, second)
}

func TestAnalyze_Partition(t *testing.T) {
	rec := &model.BusinessRecord{
		CompanyName: "Mario's Pizzeria",
		Website:     "https://marios.example.com",
	}

	ga := Analyze(rec)

	// Set fields never appear as gaps.
	assert.NotContains(t, ga.Missing, model.FieldCompanyName)
	assert.NotContains(t, ga.Missing, model.FieldWebsite)

	// Heavy missing fields are priority gaps.
	assert.Contains(t, ga.Priority, model.FieldPOSSystem)
	assert.Contains(t, ga.Priority, model.FieldPhone)
	// Light ones are not.
	assert.NotContains(t, ga.Priority, model.FieldFacebookURL)

	// Searchable is the fixed subset with an extraction strategy.
	assert.Contains(t, ga.Searchable, model.FieldPOSSystem)
	assert.Contains(t, ga.Searchable, model.FieldEmail)
	assert.NotContains(t, ga.Searchable, model.FieldPriceTier)
	assert.NotContains(t, ga.Searchable, model.FieldServiceStyle)
}

func TestAnalyze_SearchableOrderedByWeight(t *testing.T) {
	ga := Analyze(&model.BusinessRecord{})
	require.NotEmpty(t, ga.Searchable)

	for i := 1; i < len(ga.Searchable); i++ {
		assert.GreaterOrEqual(t, Weight(ga.Searchable[i-1]), Weight(ga.Searchable[i]))
	}
	// The heaviest searchable gap comes first.
	assert.Equal(t, model.FieldPOSSystem, ga.Searchable[0])
}

func TestAnalyze_Breakdown(t *testing.T) {
	rec := &model.BusinessRecord{
		POSSystem:           "Toast",
		OnlineOrdering:      "Toast Online Ordering",
		ReservationPlatform: "OpenTable",
		WebsitePlatform:     "WordPress",
		PaymentProcessor:    "Stripe",
	}

	ga := Analyze(rec)
	assert.Equal(t, 100, ga.Breakdown[CategoryTechnology])
	assert.Equal(t, 0, ga.Breakdown[CategoryIdentity])
	assert.Equal(t, 0, ga.Breakdown[CategoryReputation])
}

func TestPopulated(t *testing.T) {
	rec := &model.BusinessRecord{CompanyName: "Taco Town", YelpRating: 4.5}

	assert.True(t, Populated(rec, model.FieldCompanyName))
	assert.True(t, Populated(rec, model.FieldYelpRating))
	assert.False(t, Populated(rec, model.FieldPhone))
	assert.False(t, Populated(rec, model.FieldKey("made_up_field")))
}

func TestWeightAndSearchable(t *testing.T) {
	assert.Equal(t, 10, Weight(model.FieldPOSSystem))
	assert.Equal(t, 0, Weight(model.FieldKey("made_up_field")))
	assert.True(t, Searchable(model.FieldPhone))
	assert.False(t, Searchable(model.FieldPriceTier))
}

func TestAllFields_CoversWeightTable(t *testing.T) {
	fields := AllFields()
	assert.Len(t, fields, len(fieldWeights))
	for _, key := range fields {
		assert.Contains(t, fieldWeights, key)
		assert.Contains(t, fieldCategories, key)
	}
}

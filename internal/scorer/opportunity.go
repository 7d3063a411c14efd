// Package scorer derives a 0-100 sales-readiness estimate from an
// enriched record's technology gaps, reputation, and pain signals.
package scorer

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/prospector/internal/model"
)

const (
	baselineScore = 50

	lowRatingThreshold = 3.5

	maxPainContribution = 15
	painSignalWeight    = 5
)

// legacyPOS lists point-of-sale systems old enough to make a
// replacement pitch viable.
var legacyPOS = map[string]bool{
	"Micros": true,
	"Aloha":  true,
}

// genericWebsitePlatforms are DIY builders that suggest an
// underinvested web presence.
var genericWebsitePlatforms = map[string]bool{
	"Wix":     true,
	"Weebly":  true,
	"GoDaddy": true,
}

// Assess computes a fresh opportunity assessment for a record. Pure:
// same record in, same score out. Starts from a neutral baseline and
// adds weighted increments for negative signals; the total is clamped
// to [0,100].
func Assess(rec *model.BusinessRecord, now time.Time) *model.OpportunityAssessment {
	a := &model.OpportunityAssessment{
		ID:        uuid.New().String(),
		RecordID:  rec.ID,
		Score:     baselineScore,
		CreatedAt: now,
	}

	if rec.POSSystem == "" {
		addFactor(a, "No Modern POS", 15,
			"no point-of-sale system detected")
		a.Recommendations = append(a.Recommendations,
			"Lead with a modern POS pitch; no incumbent system detected")
	} else if legacyPOS[rec.POSSystem] {
		addFactor(a, "Legacy POS", 12,
			"running "+rec.POSSystem+", a legacy point-of-sale system")
		a.Recommendations = append(a.Recommendations,
			"Position against their aging "+rec.POSSystem+" system")
	}

	if rec.OnlineOrdering == "" {
		addFactor(a, "No Online Ordering", 12,
			"no online ordering platform detected")
		a.Recommendations = append(a.Recommendations,
			"Demo online ordering; they currently take orders by phone only")
	}

	if n := len(rec.PainSignals); n > 0 {
		weight := n * painSignalWeight
		if weight > maxPainContribution {
			weight = maxPainContribution
		}
		addFactor(a, "Pain Signals Detected", weight,
			"operational problems surfaced in review text")
		a.Recommendations = append(a.Recommendations,
			"Reference their operational pain points early in outreach")
	}

	if rating := lowestRating(rec); rating > 0 && rating < lowRatingThreshold {
		addFactor(a, "Low Public Rating", 8,
			"public rating below acceptable threshold")
		a.Recommendations = append(a.Recommendations,
			"Offer reputation tooling alongside the core pitch")
	}

	if rec.Website != "" && (rec.WebsitePlatform == "" || genericWebsitePlatforms[rec.WebsitePlatform]) {
		rationale := "website platform could not be identified"
		if rec.WebsitePlatform != "" {
			rationale = "site built on " + rec.WebsitePlatform
		}
		addFactor(a, "Generic Website Platform", 5, rationale)
	}

	if a.Score > 100 {
		a.Score = 100
	}
	if a.Score < 0 {
		a.Score = 0
	}

	if len(a.Recommendations) == 0 {
		a.Recommendations = append(a.Recommendations,
			"Well-equipped prospect; lead with switching incentives and pricing")
	}
	return a
}

func addFactor(a *model.OpportunityAssessment, name string, weight int, rationale string) {
	a.Factors = append(a.Factors, model.Factor{
		Name:      name,
		Weight:    weight,
		Rationale: rationale,
	})
	a.Score += weight
}

// lowestRating returns the worst populated rating, or 0 when none are set.
func lowestRating(rec *model.BusinessRecord) float64 {
	rating := 0.0
	for _, r := range []float64{rec.YelpRating, rec.GoogleRating} {
		if r > 0 && (rating == 0 || r < rating) {
			rating = r
		}
	}
	return rating
}

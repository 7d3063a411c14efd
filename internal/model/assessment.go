package model

import "time"

// Factor is a single weighted contribution to an opportunity score.
type Factor struct {
	Name      string `json:"name"`
	Weight    int    `json:"weight"`
	Rationale string `json:"rationale"`
}

// OpportunityAssessment is a derived 0-100 sales-readiness estimate.
// It is regenerated in full on every enrichment run and never mutated;
// previous assessments may be retained as history.
type OpportunityAssessment struct {
	ID              string    `json:"id"`
	RecordID        string    `json:"record_id"`
	Score           int       `json:"score"`
	Factors         []Factor  `json:"factors"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

package model

import "time"

// StopReason explains why an enrichment run's round loop exited.
type StopReason string

const (
	StopTargetMet       StopReason = "target_met"
	StopExhausted       StopReason = "exhausted"
	StopRoundLimit      StopReason = "round_limit"
	StopBudgetExhausted StopReason = "budget_exhausted"
)

// RunSummary is the structured result of a single enrichment run,
// persisted for visibility and returned to administrative callers.
type RunSummary struct {
	ID                 string               `json:"id"`
	RecordID           string               `json:"record_id"`
	Rounds             int                  `json:"rounds"`
	FieldsEnriched     map[FieldKey]string  `json:"fields_enriched,omitempty"` // field -> source
	SourcesUsed        []string             `json:"sources_used,omitempty"`
	SearchCalls        int                  `json:"search_calls"`
	CompletenessBefore int                  `json:"completeness_before"`
	CompletenessAfter  int                  `json:"completeness_after"`
	RemainingGaps      []FieldKey           `json:"remaining_gaps,omitempty"`
	PainSignalsFound   int                  `json:"pain_signals_found"`
	StopReason         StopReason           `json:"stop_reason"`
	Failures           []string             `json:"failures,omitempty"` // non-fatal source failures
	StartedAt          time.Time            `json:"started_at"`
	DurationMS         int64                `json:"duration_ms"`
}

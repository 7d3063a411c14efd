package model

import "time"

// BudgetState is the daily usage counter for one search provider.
// Counters are keyed by provider and UTC calendar day; a new day starts a
// fresh counter lazily on first use.
type BudgetState struct {
	Provider    string    `json:"provider"`
	Used        int       `json:"used"`
	Limit       int       `json:"limit"`
	WindowStart time.Time `json:"window_start"`
}

// Remaining returns the number of calls left in the window, floored at zero.
func (b BudgetState) Remaining() int {
	if b.Used >= b.Limit {
		return 0
	}
	return b.Limit - b.Used
}

package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/prospector/internal/model"
)

// painEntry maps a review-text regex to a signal type and severity.
type painEntry struct {
	re       *regexp.Regexp
	sigType  string
	severity string
}

// maxSignalsPerPattern caps how many PainSignals one pattern may emit per
// scan, so a long review page cannot flood the record.
const maxSignalsPerPattern = 2

// painSource is the provenance recorded on mined signals.
const painSource = "review_analysis"

var painTable = []painEntry{
	{regexp.MustCompile(`(?i)(slow\s+service|waited\s+(over\s+|more\s+than\s+)?\d+\s+minutes|long\s+wait)`), "slow_service", "medium"},
	{regexp.MustCompile(`(?i)(order\s+(was\s+)?wrong|messed\s+up\s+(my|our)\s+order|incorrect\s+order|forgot\s+(my|our|the))`), "order_accuracy", "high"},
	{regexp.MustCompile(`(?i)(can'?t\s+order\s+online|no\s+online\s+ordering|phone\s+orders?\s+only|call\s+to\s+order)`), "no_online_ordering", "high"},
	{regexp.MustCompile(`(?i)(website\s+(is\s+)?(outdated|broken|down)|site\s+(doesn'?t|does\s+not)\s+work|menu\s+(is\s+)?out\s+of\s+date)`), "website_issues", "medium"},
	{regexp.MustCompile(`(?i)(understaffed|short[-\s]staffed|only\s+one\s+(server|waiter|waitress))`), "staffing", "medium"},
	{regexp.MustCompile(`(?i)(cash\s+only|card\s+(machine|reader)\s+(was\s+)?down|couldn'?t\s+pay\s+(by|with)\s+card)`), "payment_friction", "high"},
	{regexp.MustCompile(`(?i)(never\s+answers?\s+the\s+phone|phone\s+(is\s+)?always\s+busy|impossible\s+to\s+reach)`), "unreachable", "medium"},
}

// DetectPainSignals scans aggregated review/mention text and returns one
// PainSignal per match, capped per pattern. The input may be arbitrary
// junk; no match returns nil.
func DetectPainSignals(text string, now time.Time) []model.PainSignal {
	if text == "" {
		return nil
	}
	var signals []model.PainSignal
	for _, entry := range painTable {
		matches := entry.re.FindAllString(text, maxSignalsPerPattern)
		for _, m := range matches {
			signals = append(signals, model.PainSignal{
				Type:        entry.sigType,
				Description: truncate(strings.TrimSpace(m), 140),
				Severity:    entry.severity,
				Source:      painSource,
				DetectedAt:  now,
			})
		}
	}
	return signals
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

package extract

import (
	"regexp"
	"strings"
)

// ownerRes are "role: Name" style patterns tried in order; first match
// wins. The role word is case-insensitive but the captured name must be
// capitalized to avoid grabbing sentence fragments.
var ownerRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i:owner)\s*[:\-]\s*([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+){1,2})`),
	regexp.MustCompile(`(?i:proprietor)\s*[:\-]?\s*([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+){1,2})`),
	regexp.MustCompile(`(?i:chef[\s/]*owner|owner[\s/]*chef)\s*[:\-]?\s*([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+){1,2})`),
	regexp.MustCompile(`(?i:founded\s+by)\s+([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+){1,2})`),
	regexp.MustCompile(`(?i:owned\s+and\s+operated\s+by)\s+([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+){1,2})`),
}

// ExtractOwnerName returns the first decision-maker name found in the
// text, or "" when no role pattern matches.
func ExtractOwnerName(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range ownerRes {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

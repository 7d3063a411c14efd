// Package source provides the data sources the enrichment engine draws
// from: the business's own website plus a fallback chain of paid search
// providers under shared daily budgets.
package source

import (
	"context"
	"strings"
)

// Item is one search hit.
type Item struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Result is what a source returns for one query or page fetch.
// Content is set only by the website source and carries the raw page
// plus extracted text; search providers populate Items.
type Result struct {
	Source  string `json:"source"`
	Items   []Item `json:"items,omitempty"`
	Content string `json:"content,omitempty"`
}

// Blob flattens a result into one searchable text block. Extraction
// heuristics run over this rather than per-item.
func (r *Result) Blob() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Content != "" {
		b.WriteString(r.Content)
	}
	for _, it := range r.Items {
		b.WriteString("\n")
		b.WriteString(it.Title)
		b.WriteString("\n")
		b.WriteString(it.URL)
		b.WriteString("\n")
		b.WriteString(it.Snippet)
	}
	return b.String()
}

// Adapter is a search provider that answers free-text queries.
// Providers are tried in chain order; the first success wins.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query string) (*Result, error)
}

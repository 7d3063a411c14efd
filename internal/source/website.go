package source

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const maxPageBytes = 512 * 1024

// Website fetches a business's own site. Free, no API calls, not
// subject to any budget.
type Website struct {
	client *http.Client
}

// NewWebsite creates a Website fetcher with sensible defaults.
func NewWebsite() *Website {
	return &Website{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (w *Website) Name() string { return "website" }

// Fetch downloads a page and returns its raw HTML plus extracted text
// in one blob. Raw HTML is kept because vendor signatures often live in
// href attributes and script URLs, not in visible text.
func (w *Website) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "website: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ProspectorBot/1.0)")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "website: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "website: read body")
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("website: status %d", resp.StatusCode)
	}
	if len(body) < 100 {
		return nil, eris.New("website: empty page")
	}

	html := string(body)
	text := extractText(html)

	return &Result{
		Source:  "website",
		Content: html + "\n" + text,
	}, nil
}

// extractText parses HTML and returns visible text with scripts and
// styles removed. Parse failures fall back to the raw input.
func extractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
	})

	// Collapse runs of whitespace left behind by removed elements.
	fields := strings.Fields(b.String())
	return strings.Join(fields, " ")
}

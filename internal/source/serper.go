package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const serperEndpoint = "https://google.serper.dev/search"

// Serper queries the Serper.dev Google Search API. Primary paid
// provider; cheapest per call.
type Serper struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSerper creates a Serper adapter. An empty API key disables the
// provider at chain construction, not here.
func NewSerper(apiKey string) *Serper {
	return &Serper{
		apiKey:   apiKey,
		endpoint: serperEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Serper) Name() string { return "serper" }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (s *Serper) Search(ctx context.Context, query string) (*Result, error) {
	payload, err := json.Marshal(serperRequest{Q: query, Num: 10})
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "serper: create request")
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serper: search")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "serper: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serper: status %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "serper: decode response")
	}

	result := &Result{Source: s.Name()}
	for _, o := range parsed.Organic {
		result.Items = append(result.Items, Item{
			Title:   o.Title,
			URL:     o.Link,
			Snippet: o.Snippet,
		})
	}
	return result, nil
}

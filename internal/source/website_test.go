package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Mario's Pizzeria - Worcester MA</title>
  <style>body { color: red; }</style>
</head>
<body>
  <script>var tracking = "ignore me";</script>
  <h1>Mario's Pizzeria</h1>
  <p>Call us at (508) 555-1234 or email info@mariospizza.com</p>
  <a href="https://order.toasttab.com/online/marios-pizzeria">Order Online</a>
  <footer>Owner: Jane Smith</footer>
</body>
</html>`

func TestWebsite_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "ProspectorBot")
		w.Write([]byte(samplePage)) //nolint:errcheck
	}))
	defer srv.Close()

	w := NewWebsite()
	result, err := w.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "website", result.Source)

	// Raw HTML survives so href-only signatures stay detectable.
	assert.Contains(t, result.Content, "order.toasttab.com")
	// Visible text is appended with scripts and styles removed.
	assert.Contains(t, result.Content, "Owner: Jane Smith")
	assert.NotContains(t, extractText(samplePage), "ignore me")
	assert.NotContains(t, extractText(samplePage), "color: red")
}

func TestWebsite_FetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	w := NewWebsite()
	_, err := w.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestWebsite_FetchEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html></html>")) //nolint:errcheck
	}))
	defer srv.Close()

	w := NewWebsite()
	_, err := w.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty page")
}

func TestExtractText_CollapsesWhitespace(t *testing.T) {
	text := extractText("<html><body><p>one</p>\n\n\n<p>two</p></body></html>")
	assert.Equal(t, "one two", text)
	assert.False(t, strings.Contains(text, "\n"))
}

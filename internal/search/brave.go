// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/newsdesk/internal/httputil"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// braveSearchURL is the Brave web search endpoint. Declared as a var so
// tests can substitute an httptest server.
var braveSearchURL = "https://api.search.brave.com/res/v1/web/search"

// braveMaxCount is the largest count Brave accepts.
const braveMaxCount = 20

// BraveBackend queries the Brave Search API. Requests are authenticated
// with the X-Subscription-Token header.
type BraveBackend struct {
	APIKey string
	Client *http.Client
}

// Name returns the backend identifier.
func (b *BraveBackend) Name() string { return "brave" }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search issues one GET against Brave and returns web results in rank order.
// Brave's 429 responses surface as rate_limit errors; pacing is left to the
// caller's retry policy.
func (b *BraveBackend) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, types.NewProviderError(b.Name(), "search", types.KindAuth, 0, errors.New("BRAVE_API_KEY is not set"))
	}

	params := url.Values{
		"q":     {query},
		"count": {strconv.Itoa(min(maxResults, braveMaxCount))},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, braveSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewProviderError(b.Name(), "search", types.KindInvalidRequest, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, httputil.TransportError(b.Name(), "search", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(b.Name(), "search", resp); err != nil {
		return nil, err
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, httputil.MalformedError(b.Name(), "search", fmt.Errorf("decoding Brave response: %w", err))
	}

	results := make([]types.SearchResult, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		results = append(results, types.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			Snippet: stripTags(r.Description),
			URL:     r.URL,
		})
	}
	return results, nil
}

// stripTags removes the <strong> highlighting Brave adds to descriptions.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

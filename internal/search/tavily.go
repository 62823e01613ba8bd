// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/newsdesk/internal/httputil"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// tavilySearchURL is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilySearchURL = "https://api.tavily.com/search"

// tavilyMaxResults is the largest max_results Tavily accepts.
const tavilyMaxResults = 20

// TavilyBackend queries the Tavily search API restricted to news.
type TavilyBackend struct {
	APIKey string
	// Depth is Tavily's search_depth: basic or advanced.
	Depth  string
	Client *http.Client
}

// Name returns the backend identifier.
func (b *TavilyBackend) Name() string { return "tavily" }

type tavilyRequest struct {
	Query       string `json:"query"`
	Topic       string `json:"topic"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts query to Tavily and returns results in rank order.
func (b *TavilyBackend) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, types.NewProviderError(b.Name(), "search", types.KindAuth, 0, errors.New("TAVILY_API_KEY is not set"))
	}

	depth := b.Depth
	if depth == "" {
		depth = "basic"
	}
	payload, err := json.Marshal(tavilyRequest{
		Query:       query,
		Topic:       "news",
		SearchDepth: depth,
		MaxResults:  min(maxResults, tavilyMaxResults),
	})
	if err != nil {
		return nil, types.NewProviderError(b.Name(), "search", types.KindInvalidRequest, 0, fmt.Errorf("encoding Tavily request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilySearchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewProviderError(b.Name(), "search", types.KindInvalidRequest, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, httputil.TransportError(b.Name(), "search", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(b.Name(), "search", resp); err != nil {
		return nil, err
	}

	var body tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, httputil.MalformedError(b.Name(), "search", fmt.Errorf("decoding Tavily response: %w", err))
	}

	results := make([]types.SearchResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, types.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			Snippet: strings.TrimSpace(r.Content),
			URL:     r.URL,
		})
	}
	return results, nil
}

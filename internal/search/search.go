// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries a web-search provider for current news and returns
// ordered, deduplicated results bounded by a caller-supplied maximum.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"

	"github.com/pdiddy/newsdesk/internal/httputil"
	"github.com/pdiddy/newsdesk/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxResults is the result bound used when callers pass zero.
const DefaultMaxResults = 5

// Backend searches a single web-search API. Implementations make exactly one
// outbound call per Search and never retry.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
}

// Client wraps a Backend with query validation, deduplication, and the
// result bound. It is safe for concurrent use.
type Client struct {
	backend Backend
}

// NewClient returns a Client that delegates to b.
func NewClient(b Backend) *Client {
	return &Client{backend: b}
}

// New builds the backend named by cfg.Provider.
func New(cfg types.SearchConfig, creds types.Credentials) (*Client, error) {
	hc := httputil.NewClient(cfg.HTTPConfig)
	switch strings.ToLower(cfg.Provider) {
	case "", "tavily":
		return NewClient(&TavilyBackend{APIKey: creds.TavilyAPIKey, Depth: cfg.Depth, Client: hc}), nil
	case "brave":
		return NewClient(&BraveBackend{APIKey: creds.BraveAPIKey, Client: hc}), nil
	}
	return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
}

// Name returns the backend identifier.
func (c *Client) Name() string { return c.backend.Name() }

// Search runs query against the backend. Results keep the provider's
// relevance order; duplicates are dropped before the bound is applied, so
// len(results) <= maxResults always holds.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.NewProviderError(c.backend.Name(), "search", types.KindInvalidRequest, 0, errors.New("query is empty"))
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	results, err := c.backend.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	results = deduplicate(results)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// deduplicate keeps the first occurrence of each normalized URL, falling
// back to the normalized title for results without a URL. Results with
// neither are dropped since they carry nothing to cite.
func deduplicate(results []types.SearchResult) []types.SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		key := dedupKey(r)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func dedupKey(r types.SearchResult) string {
	if u := normalizeURL(r.URL); u != "" {
		return "url:" + u
	}
	if t := normalizeTitle(r.Title); t != "" {
		return "title:" + t
	}
	return ""
}

// normalizeURL lowercases the host, drops the scheme, a leading "www.",
// fragments, and a trailing slash.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(raw, "/"))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimSuffix(u.EscapedPath(), "/")
	key := host + path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %s\n", "Rank", "Title", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-50s  %s\n", i+1, truncate(r.Title, 50), r.URL)
		if s := strings.Join(strings.Fields(r.Snippet), " "); s != "" {
			fmt.Fprintf(w, "      %s\n", truncate(s, 94))
		}
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	if results == nil {
		results = []types.SearchResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

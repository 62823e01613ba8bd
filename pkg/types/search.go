// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the newsdesk pipeline:
// topics, search results, stage and run records, role configuration,
// provider errors, and configuration.
package types

// SearchResult is one item returned by a web-search provider. Results are
// consumed by research prompt assembly and are never persisted.
type SearchResult struct {
	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Snippet is the provider's excerpt or content summary for the page.
	Snippet string `json:"snippet" yaml:"snippet"`

	// URL is the page address. Some providers omit it for synthesized answers.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// OllamaBackend calls a local or remote Ollama server. No credential is
// needed.
type OllamaBackend struct {
	client *api.Client
}

// NewOllama creates an Ollama backend for the server at rawURL.
func NewOllama(rawURL string, hc *http.Client) (*OllamaBackend, error) {
	if rawURL == "" {
		rawURL = "http://localhost:11434"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", rawURL, err)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &OllamaBackend{client: api.NewClient(u, hc)}, nil
}

// Provider returns the provider served by this backend.
func (o *OllamaBackend) Provider() types.Provider { return types.ProviderOllama }

// Complete runs a non-streaming chat with a single user message.
func (o *OllamaBackend) Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    role.Model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
	}
	if role.Temperature != nil {
		req.Options = map[string]any{"temperature": *role.Temperature}
	}

	var b strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		status := 0
		if errors.As(err, &statusErr) {
			status = statusErr.StatusCode
		}
		return "", sdkError(types.ProviderOllama, status, err)
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", emptyResponse(types.ProviderOllama)
	}
	return b.String(), nil
}

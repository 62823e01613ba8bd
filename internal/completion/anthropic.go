// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/pdiddy/newsdesk/internal/httputil"
	"github.com/pdiddy/newsdesk/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// anthropicBaseURL is the Anthropic API root. Package-level var for test
// substitution.
var anthropicBaseURL = "https://api.anthropic.com"

const (
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 4096
)

// AnthropicBackend calls the Anthropic Messages API.
type AnthropicBackend struct {
	APIKey string
	// BaseURL overrides anthropicBaseURL when set.
	BaseURL   string
	MaxTokens int
	Client    *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Provider returns the provider served by this backend.
func (a *AnthropicBackend) Provider() types.Provider { return types.ProviderAnthropic }

// Complete sends prompt as a single user message.
func (a *AnthropicBackend) Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error) {
	provider := string(types.ProviderAnthropic)
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	body, err := json.Marshal(anthropicRequest{
		Model:       role.Model,
		MaxTokens:   maxTokens,
		Temperature: role.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", types.NewProviderError(provider, "complete", types.KindInvalidRequest, 0, fmt.Errorf("marshaling request: %w", err))
	}

	base := a.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(base, "/")+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", types.NewProviderError(provider, "complete", types.KindInvalidRequest, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", httputil.TransportError(provider, "complete", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(provider, "complete", resp); err != nil {
		return "", err
	}

	var ar anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", httputil.MalformedError(provider, "complete", fmt.Errorf("decoding Anthropic response: %w", err))
	}
	if ar.StopReason == "refusal" {
		return "", contentRejected(types.ProviderAnthropic, "refusal")
	}

	var b strings.Builder
	for _, block := range ar.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", emptyResponse(types.ProviderAnthropic)
	}
	return b.String(), nil
}

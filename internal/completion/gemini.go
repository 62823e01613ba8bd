// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// geminiRejections lists finish reasons that mean the model refused to
// produce content rather than failed.
var geminiRejections = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonRecitation:        true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonSPII:              true,
}

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
}

// NewGemini creates a Gemini backend. baseURL overrides the API endpoint
// and may be empty.
func NewGemini(ctx context.Context, apiKey, baseURL string, hc *http.Client) (*GeminiBackend, error) {
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiBackend{client: client}, nil
}

// Provider returns the provider served by this backend.
func (g *GeminiBackend) Provider() types.Provider { return types.ProviderGemini }

// Complete generates content for a single user prompt.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error) {
	var gc *genai.GenerateContentConfig
	if role.Temperature != nil {
		gc = &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(*role.Temperature))}
	}

	resp, err := g.client.Models.GenerateContent(ctx, role.Model, genai.Text(prompt), gc)
	if err != nil {
		var apiErr genai.APIError
		status := 0
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return "", sdkError(types.ProviderGemini, status, err)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", contentRejected(types.ProviderGemini, "prompt blocked: "+string(fb.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return "", emptyResponse(types.ProviderGemini)
	}

	cand := resp.Candidates[0]
	if geminiRejections[cand.FinishReason] {
		return "", contentRejected(types.ProviderGemini, "finish reason "+string(cand.FinishReason))
	}

	var b strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", emptyResponse(types.ProviderGemini)
	}
	return b.String(), nil
}

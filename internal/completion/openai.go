// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// OpenAIBackend calls the Chat Completions API. It also serves compatible
// gateways when a base URL is configured.
type OpenAIBackend struct {
	client openai.Client
}

// NewOpenAI creates an OpenAI backend with SDK retries disabled.
func NewOpenAI(apiKey, baseURL string, hc *http.Client) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIBackend{client: openai.NewClient(opts...)}
}

// Provider returns the provider served by this backend.
func (o *OpenAIBackend) Provider() types.Provider { return types.ProviderOpenAI }

// Complete sends prompt as a single user message.
func (o *OpenAIBackend) Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(role.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}
	if role.Temperature != nil {
		params.Temperature = openai.Float(*role.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		status := 0
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", sdkError(types.ProviderOpenAI, status, err)
	}

	if len(resp.Choices) == 0 {
		return "", emptyResponse(types.ProviderOpenAI)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", contentRejected(types.ProviderOpenAI, "content_filter")
	}
	if choice.Message.Refusal != "" {
		return "", contentRejected(types.ProviderOpenAI, "refusal")
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", emptyResponse(types.ProviderOpenAI)
	}
	return choice.Message.Content, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion sends prompts to language-model providers. Each
// provider backend makes exactly one request per call with SDK retries
// disabled; retry policy belongs to the caller. Failures are returned as
// *types.ProviderError so callers can decide whether to retry.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/internal/httputil"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// Completer generates text for a prompt under a role configuration.
type Completer interface {
	Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error)
}

// Backend serves one provider.
type Backend interface {
	Provider() types.Provider
	Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error)
}

// Router dispatches completions to the backend named by the role's provider.
// Backends are registered once at construction; Router is safe for
// concurrent use.
type Router struct {
	backends map[types.Provider]Backend
	log      *zap.Logger
}

// NewRouter returns a Router over the given backends. A later backend for
// the same provider replaces an earlier one.
func NewRouter(log *zap.Logger, backends ...Backend) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{backends: make(map[types.Provider]Backend, len(backends)), log: log}
	for _, b := range backends {
		r.backends[b.Provider()] = b
	}
	return r
}

// New builds a Router with every supported provider. Providers without a
// credential are registered as placeholders that fail with an auth error,
// so a misconfigured role surfaces on its first call.
func New(ctx context.Context, cfg types.ProvidersConfig, creds types.Credentials, log *zap.Logger) (*Router, error) {
	hc := httputil.NewClient(cfg.HTTPConfig)
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var backends []Backend

	if creds.GoogleAPIKey == "" {
		backends = append(backends, missingCredential{provider: types.ProviderGemini, env: "GOOGLE_API_KEY"})
	} else {
		g, err := NewGemini(ctx, creds.GoogleAPIKey, "", hc)
		if err != nil {
			return nil, err
		}
		backends = append(backends, g)
	}

	if creds.OpenAIAPIKey == "" {
		backends = append(backends, missingCredential{provider: types.ProviderOpenAI, env: "OPENAI_API_KEY"})
	} else {
		backends = append(backends, NewOpenAI(creds.OpenAIAPIKey, cfg.OpenAIBaseURL, hc))
	}

	o, err := NewOllama(cfg.OllamaURL, hc)
	if err != nil {
		return nil, err
	}
	backends = append(backends, o)

	if creds.AnthropicAPIKey == "" {
		backends = append(backends, missingCredential{provider: types.ProviderAnthropic, env: "ANTHROPIC_API_KEY"})
	} else {
		backends = append(backends, &AnthropicBackend{
			APIKey:    creds.AnthropicAPIKey,
			BaseURL:   cfg.AnthropicBaseURL,
			MaxTokens: maxTokens,
			Client:    hc,
		})
	}

	return NewRouter(log, backends...), nil
}

// Complete validates role and forwards the prompt to its provider.
func (r *Router) Complete(ctx context.Context, prompt string, role types.RoleConfig) (string, error) {
	p, err := types.ParseProvider(string(role.Provider))
	if err != nil {
		return "", types.NewProviderError(string(role.Provider), "complete", types.KindInvalidRequest, 0, err)
	}
	role.Provider = p
	if err := role.Validate(); err != nil {
		return "", types.NewProviderError(string(p), "complete", types.KindInvalidRequest, 0, err)
	}

	b, ok := r.backends[p]
	if !ok {
		return "", types.NewProviderError(string(p), "complete", types.KindInvalidRequest, 0, fmt.Errorf("no backend registered for provider %s", p))
	}

	start := time.Now()
	text, err := b.Complete(ctx, prompt, role)
	log := r.log.With(zap.String("provider", string(p)), zap.String("model", role.Model), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Debug("completion failed", zap.Error(err))
		return "", err
	}
	log.Debug("completion succeeded", zap.Int("chars", len(text)))
	return text, nil
}

// missingCredential stands in for a provider whose API key is not configured.
type missingCredential struct {
	provider types.Provider
	env      string
}

func (m missingCredential) Provider() types.Provider { return m.provider }

func (m missingCredential) Complete(context.Context, string, types.RoleConfig) (string, error) {
	return "", types.NewProviderError(string(m.provider), "complete", types.KindAuth, 0, errors.New(m.env+" is not set"))
}

// sdkError classifies an SDK failure. A non-zero status decides the kind;
// otherwise the error is treated as a transport failure.
func sdkError(provider types.Provider, status int, err error) *types.ProviderError {
	kind := httputil.ClassifyTransport(err)
	if status != 0 {
		kind = httputil.ClassifyStatus(status)
	}
	return types.NewProviderError(string(provider), "complete", kind, status, err)
}

func contentRejected(provider types.Provider, reason string) *types.ProviderError {
	return types.NewProviderError(string(provider), "complete", types.KindContentRejected, 0, fmt.Errorf("content rejected: %s", reason))
}

func emptyResponse(provider types.Provider) *types.ProviderError {
	return httputil.MalformedError(string(provider), "complete", errors.New("response contained no text"))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Provider names a language-model backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider normalizes a provider name. "google" is accepted as an alias
// for gemini.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "google":
		return ProviderGemini, nil
	case "openai":
		return ProviderOpenAI, nil
	case "ollama":
		return ProviderOllama, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// RoleConfig selects the model that serves a pipeline role. It is the only
// part of a role description that affects runtime behavior.
type RoleConfig struct {
	Provider Provider `json:"provider" yaml:"provider"`
	Model    string   `json:"model" yaml:"model"`

	// Temperature is the sampling temperature. Nil leaves the provider default.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// Validate reports configuration mistakes detectable without calling the provider.
func (r RoleConfig) Validate() error {
	if _, err := ParseProvider(string(r.Provider)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("model is required for provider %s", r.Provider)
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", *r.Temperature)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// isolate clears credential variables and points HOME at an empty directory
// so the developer's environment does not leak into assertions.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, env := range credentialEnv {
		t.Setenv(env, "")
		t.Setenv(EnvPrefix+"_"+env, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	v := viper.New()
	used, err := Init(v, "")
	require.NoError(t, err)
	assert.Empty(t, used)

	cfg, secretsUsed, err := Load(v, nil)
	require.NoError(t, err)
	assert.Empty(t, secretsUsed)

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, DefaultOllamaURL, cfg.Providers.OllamaURL)
	assert.Equal(t, DefaultMaxTokens, cfg.Providers.MaxTokens)
	assert.Equal(t, types.RetryConfig{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second}, cfg.Retry)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "newsdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  request_timeout: 45s
search:
  provider: brave
retry:
  max_attempts: 5
  base_delay: 10ms
team:
  file: team.yaml
  watch: true
`), 0o644))

	t.Setenv("NEWSDESK_RETRY_MAX_DELAY", "2s")
	t.Setenv("NEWSDESK_LOG_FORMAT", "console")
	t.Setenv("BRAVE_API_KEY", "brave-env")

	v := viper.New()
	used, err := Init(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, _, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "brave", cfg.Search.Provider)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 2*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, "team.yaml", cfg.Team.File)
	assert.True(t, cfg.Team.Watch)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "brave-env", cfg.Credentials.BraveAPIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Init(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCredentialPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("NEWSDESK_TAVILY_API_KEY", "prefixed")
	t.Setenv("TAVILY_API_KEY", "plain")
	t.Setenv("GOOGLE_API_KEY", "google-env")

	v := viper.New()
	_, err := Init(v, "")
	require.NoError(t, err)

	cfg, used, err := Load(v, map[string]string{
		"google-api-key": "google-file",
		"openai-api-key": "openai-file",
	})
	require.NoError(t, err)

	assert.Equal(t, "prefixed", cfg.Credentials.TavilyAPIKey)
	assert.Equal(t, "google-env", cfg.Credentials.GoogleAPIKey, "environment wins over secrets")
	assert.Equal(t, "openai-file", cfg.Credentials.OpenAIAPIKey)
	assert.Equal(t, []string{"openai-api-key"}, used)
}

func TestValidate(t *testing.T) {
	base := types.Config{
		Search: types.SearchConfig{Provider: "tavily"},
		Retry:  types.RetryConfig{MaxAttempts: 3},
		Server: types.ServerConfig{RequestTimeout: time.Minute},
	}
	require.NoError(t, Validate(base))

	bad := base
	bad.Search.Provider = "bing"
	assert.ErrorContains(t, Validate(bad), "search.provider")

	bad = base
	bad.Retry.MaxAttempts = 0
	assert.ErrorContains(t, Validate(bad), "max_attempts")

	bad = base
	bad.Server.RequestTimeout = 0
	assert.ErrorContains(t, Validate(bad), "request_timeout")
}

func TestRequireCredentials(t *testing.T) {
	cfg := types.Config{Search: types.SearchConfig{Provider: "tavily"}}

	err := RequireCredentials(cfg, []types.Provider{types.ProviderGemini, types.ProviderGemini, types.ProviderOllama})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	assert.NotContains(t, err.Error(), "OLLAMA")

	cfg.Credentials = types.Credentials{TavilyAPIKey: "t", GoogleAPIKey: "g"}
	assert.NoError(t, RequireCredentials(cfg, []types.Provider{types.ProviderGemini, types.ProviderOllama}))

	err = RequireCredentials(cfg, []types.Provider{types.ProviderAnthropic})
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

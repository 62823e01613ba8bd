// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves newsdesk settings from defaults, a YAML config
// file, environment variables, and .secrets/ files, in increasing priority
// except that .secrets/ only fills credentials the environment left empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/newsdesk/internal/secrets"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// EnvPrefix prefixes every environment variable read by newsdesk.
const EnvPrefix = "NEWSDESK"

// Default values. DefaultTopic mirrors the built-in team.
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 3 * time.Minute
	DefaultSearchProvider = "tavily"
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultMaxTokens      = 4096
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 500 * time.Millisecond
	DefaultMaxDelay       = 8 * time.Second
)

// credentialEnv maps credential keys to the unprefixed variable names the
// provider SDKs conventionally read.
var credentialEnv = map[string]string{
	"credentials.tavily_api_key":    "TAVILY_API_KEY",
	"credentials.brave_api_key":     "BRAVE_API_KEY",
	"credentials.google_api_key":    "GOOGLE_API_KEY",
	"credentials.openai_api_key":    "OPENAI_API_KEY",
	"credentials.anthropic_api_key": "ANTHROPIC_API_KEY",
}

// SetDefaults registers a default for every key so that AutomaticEnv can
// override nested keys during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.request_timeout", DefaultRequestTimeout)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("search.provider", DefaultSearchProvider)
	v.SetDefault("search.depth", "basic")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.user_agent", "newsdesk")

	v.SetDefault("providers.timeout", 2*time.Minute)
	v.SetDefault("providers.user_agent", "newsdesk")
	v.SetDefault("providers.openai_base_url", "")
	v.SetDefault("providers.ollama_url", DefaultOllamaURL)
	v.SetDefault("providers.anthropic_base_url", "")
	v.SetDefault("providers.max_tokens", DefaultMaxTokens)

	v.SetDefault("retry.max_attempts", DefaultMaxAttempts)
	v.SetDefault("retry.base_delay", DefaultBaseDelay)
	v.SetDefault("retry.max_delay", DefaultMaxDelay)

	v.SetDefault("team.file", "")
	v.SetDefault("team.watch", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key := range credentialEnv {
		v.SetDefault(key, "")
	}
}

// Init prepares v to read newsdesk.yaml from cfgFile, or from the working
// directory and ~/.config/newsdesk when cfgFile is empty. A missing config
// file is not an error; the returned path is empty in that case.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("newsdesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "newsdesk"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.TrimPrefix(key, "credentials."))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return "", fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load unmarshals v into a Config and fills credentials the environment
// left empty from secretValues (as returned by secrets.Load). It also
// returns the names of the secret files that were used.
func Load(v *viper.Viper, secretValues map[string]string) (types.Config, []string, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, nil, fmt.Errorf("decoding config: %w", err)
	}
	used := secrets.Apply(&cfg.Credentials, secretValues)
	if err := Validate(cfg); err != nil {
		return types.Config{}, nil, err
	}
	return cfg, used, nil
}

// Validate checks settings that do not depend on the team definition.
func Validate(cfg types.Config) error {
	var errs []error
	switch strings.ToLower(cfg.Search.Provider) {
	case "tavily", "brave":
	default:
		errs = append(errs, fmt.Errorf("search.provider %q: want tavily or brave", cfg.Search.Provider))
	}
	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be at least 1, got %d", cfg.Retry.MaxAttempts))
	}
	if cfg.Retry.BaseDelay < 0 || cfg.Retry.MaxDelay < 0 {
		errs = append(errs, errors.New("retry delays must not be negative"))
	}
	if cfg.Server.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must be positive, got %s", cfg.Server.RequestTimeout))
	}
	return errors.Join(errs...)
}

// RequireCredentials fails when the configured search provider or any of
// the given completion providers has no API key. Ollama needs none.
func RequireCredentials(cfg types.Config, providers []types.Provider) error {
	var missing []string
	switch strings.ToLower(cfg.Search.Provider) {
	case "tavily":
		if cfg.Credentials.TavilyAPIKey == "" {
			missing = append(missing, "TAVILY_API_KEY (search.provider=tavily)")
		}
	case "brave":
		if cfg.Credentials.BraveAPIKey == "" {
			missing = append(missing, "BRAVE_API_KEY (search.provider=brave)")
		}
	}

	seen := make(map[types.Provider]bool)
	for _, p := range providers {
		if seen[p] {
			continue
		}
		seen[p] = true
		if key := CredentialFor(cfg.Credentials, p); key == "" && p != types.ProviderOllama {
			missing = append(missing, credentialEnvFor(p)+" (provider "+string(p)+")")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CredentialFor returns the API key used by a completion provider.
func CredentialFor(creds types.Credentials, p types.Provider) string {
	switch p {
	case types.ProviderGemini:
		return creds.GoogleAPIKey
	case types.ProviderOpenAI:
		return creds.OpenAIAPIKey
	case types.ProviderAnthropic:
		return creds.AnthropicAPIKey
	}
	return ""
}

func credentialEnvFor(p types.Provider) string {
	switch p {
	case types.ProviderGemini:
		return "GOOGLE_API_KEY"
	case types.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case types.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return strings.ToUpper(string(p)) + "_API_KEY"
}

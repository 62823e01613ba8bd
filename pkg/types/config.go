// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the per-call HTTP timeout. A call exceeding it fails with a
	// transient timeout error.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig holds settings for the HTTP front door.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// RequestTimeout bounds a whole pipeline run (default 3m). When it
	// elapses the run is cancelled.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	// ReadHeaderTimeout bounds reading request headers (default 10s).
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout" mapstructure:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default 15s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// AllowedOrigins lists origins accepted by the streaming endpoint. Empty
	// accepts same-origin requests only; "*" accepts any origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SearchConfig holds settings for the search client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: tavily or brave (default tavily).
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Depth is Tavily's search_depth parameter: basic or advanced.
	Depth string `json:"depth" yaml:"depth" mapstructure:"depth"`
}

// ProvidersConfig holds endpoint overrides shared by completion clients.
type ProvidersConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// OpenAIBaseURL overrides the OpenAI endpoint, e.g. for compatible gateways.
	OpenAIBaseURL string `json:"openai_base_url,omitempty" yaml:"openai_base_url,omitempty" mapstructure:"openai_base_url"`

	// OllamaURL is the Ollama server address (default http://localhost:11434).
	OllamaURL string `json:"ollama_url" yaml:"ollama_url" mapstructure:"ollama_url"`

	// AnthropicBaseURL overrides the Anthropic endpoint.
	AnthropicBaseURL string `json:"anthropic_base_url,omitempty" yaml:"anthropic_base_url,omitempty" mapstructure:"anthropic_base_url"`

	// MaxTokens caps generated tokens where the provider requires a limit (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RetryConfig controls how the pipeline retries transient provider failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per external call,
	// including the first (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay is the wait before the first retry; it doubles each attempt (default 500ms).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`

	// MaxDelay caps a single backoff wait (default 8s).
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

// TeamConfig locates the team definition.
type TeamConfig struct {
	// File is a YAML team definition. Empty uses the built-in team.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	// Watch reloads File when it changes on disk.
	Watch bool `json:"watch" yaml:"watch" mapstructure:"watch"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default json).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Credentials holds provider API keys. They are read once at startup and
// never modified afterwards.
type Credentials struct {
	TavilyAPIKey    string `json:"-" yaml:"-" mapstructure:"tavily_api_key"`
	BraveAPIKey     string `json:"-" yaml:"-" mapstructure:"brave_api_key"`
	GoogleAPIKey    string `json:"-" yaml:"-" mapstructure:"google_api_key"`
	OpenAIAPIKey    string `json:"-" yaml:"-" mapstructure:"openai_api_key"`
	AnthropicAPIKey string `json:"-" yaml:"-" mapstructure:"anthropic_api_key"`
}

// Config groups all settings for a newsdesk process.
type Config struct {
	Server      ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Search      SearchConfig    `json:"search" yaml:"search" mapstructure:"search"`
	Providers   ProvidersConfig `json:"providers" yaml:"providers" mapstructure:"providers"`
	Retry       RetryConfig     `json:"retry" yaml:"retry" mapstructure:"retry"`
	Team        TeamConfig      `json:"team" yaml:"team" mapstructure:"team"`
	Log         LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
	Credentials Credentials     `json:"-" yaml:"-" mapstructure:"credentials"`
}

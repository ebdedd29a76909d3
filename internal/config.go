package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/professor/internal/refcheck"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Auth       AuthConfig        `yaml:"auth"`
	LLM        LLMConfig         `yaml:"llm"`
	References ReferencesConfig  `yaml:"references"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return c.References.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.AllowedOrigins, validation.Each(validation.Required)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// LLMConfig selects and configures the slide generator.
//
// With provider "anthropic" or "gemini" and no API key the mock generator is
// used, so a fresh checkout runs without credentials.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In(ProviderAnthropic, ProviderGemini, ProviderMock)),
		validation.Field(&c.MaxTokens, validation.Min(int64(0)), validation.Max(int64(64000))),
	)
}

// UseMock reports whether the deterministic mock generator should be used.
func (c *LLMConfig) UseMock() bool {
	return c.Provider == ProviderMock || c.APIKey == ""
}

// ReferencesConfig tunes link validation and the best-of-N reference loop.
type ReferencesConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	MaxConcurrency     int           `yaml:"max_concurrency"`
	MinValidLinks      int           `yaml:"min_valid_links"`
	MinValidRatio      float64       `yaml:"min_valid_ratio"`
	MaxAttempts        int           `yaml:"max_attempts"`
	UserAgent          string        `yaml:"user_agent"`
	RateLimit          float64       `yaml:"rate_limit"`
	TrustedDomainsFile string        `yaml:"trusted_domains_file"`
}

// Validate validates the references configuration.
func (c *ReferencesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(100*time.Millisecond), validation.Max(2*time.Minute)),
		validation.Field(&c.MaxConcurrency, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.MinValidLinks, validation.Min(0)),
		validation.Field(&c.MinValidRatio, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
	)
}

// CheckerConfig returns the link checker settings.
func (c *ReferencesConfig) CheckerConfig() refcheck.Config {
	return refcheck.Config{
		Timeout:        c.Timeout,
		MaxConcurrency: c.MaxConcurrency,
		UserAgent:      c.UserAgent,
		RateLimit:      c.RateLimit,
	}
}

// Thresholds returns the regeneration thresholds.
func (c *ReferencesConfig) Thresholds() refcheck.Thresholds {
	return refcheck.Thresholds{MinValidLinks: c.MinValidLinks, MinValidRatio: c.MinValidRatio}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./professor.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		LLM: LLMConfig{
			Provider: ProviderAnthropic,
		},
		References: ReferencesConfig{
			Timeout:        10 * time.Second,
			MaxConcurrency: 5,
			MinValidLinks:  3,
			MinValidRatio:  0.5,
			MaxAttempts:    3,
			UserAgent:      refcheck.DefaultUserAgent,
		},
	}
}

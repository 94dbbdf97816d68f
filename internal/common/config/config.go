// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Report    ReportConfig    `mapstructure:"report"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Sessions  SessionConfig   `mapstructure:"sessions"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// LLMConfig holds settings for the chat-completion backend.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// ReportConfig holds settings for the report-generation endpoint.
type ReportConfig struct {
	Timeout  int `mapstructure:"timeout"`   // milliseconds
	CacheTTL int `mapstructure:"cache_ttl"` // seconds
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SimulatorConfig controls the workflow progress animation.
type SimulatorConfig struct {
	TickInterval int `mapstructure:"tick_interval"` // milliseconds
	ResetDelay   int `mapstructure:"reset_delay"`   // milliseconds
}

// SessionConfig controls per-session state lifecycle.
type SessionConfig struct {
	IdleTTL       int `mapstructure:"idle_ttl"`       // seconds
	SweepInterval int `mapstructure:"sweep_interval"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ChatURL returns the full chat-completions endpoint.
func (l LLMConfig) ChatURL() string {
	return fmt.Sprintf("%s/v1/chat/completions", l.BaseURL)
}

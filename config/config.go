// Package config loads crew definitions from YAML files and credentials from
// the environment (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// Config is a complete crew definition.
type Config struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	MaxIterations     int           `yaml:"max_iterations"`
	CompletionTimeout time.Duration `yaml:"completion_timeout"`
	Log               LogConfig     `yaml:"log"`
	Agents            []AgentConfig `yaml:"agents"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AgentConfig declares one crew member. DependsOn names agents whose output
// this agent receives as context.
type AgentConfig struct {
	Name           string   `yaml:"name"`
	Backstory      string   `yaml:"backstory"`
	Task           string   `yaml:"task"`
	ExpectedOutput string   `yaml:"expected_output"`
	Model          string   `yaml:"model"`
	Tools          []string `yaml:"tools"`
	DependsOn      []string `yaml:"depends_on"`
}

func defaults() Config {
	return Config{
		Provider:          ProviderGroq,
		MaxIterations:     20,
		CompletionTimeout: 60 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadEnv loads KEY=VALUE pairs from the given .env files (default ".env")
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	return nil
}

// Load reads the crew definition at path. Environment variables referenced
// as ${VAR} are expanded before parsing; AGENTCREW_* variables and the
// provider API key variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, applying defaults, environment
// overrides and validation.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultModels holds the model used when a configuration names none.
var defaultModels = map[string]string{
	ProviderGroq:      "llama-3.3-70b-versatile",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AGENTCREW_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("AGENTCREW_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AGENTCREW_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("AGENTCREW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AGENTCREW_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIterations = n
		}
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}

	if cfg.APIKey == "" {
		if v := os.Getenv(cfg.APIKeyEnv()); v != "" {
			cfg.APIKey = v
		}
	}
}

// APIKeyEnv names the environment variable holding the provider API key.
func (c *Config) APIKeyEnv() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

// Validate checks the provider, agent names and dependency references.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGroq, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if len(c.Agents) == 0 {
		return errors.New("config declares no agents")
	}

	names := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("agent %d has no name", i)
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("duplicate agent name %q", a.Name)
		}
		names[a.Name] = struct{}{}
	}

	for _, a := range c.Agents {
		for _, dep := range a.DependsOn {
			if _, ok := names[dep]; !ok {
				return fmt.Errorf("agent %q depends on unknown agent %q", a.Name, dep)
			}
		}
	}

	return nil
}

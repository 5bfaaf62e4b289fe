// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the swarm configuration.
type Config struct {
	LLM       LLMConfig          `toml:"llm"`       // Default LLM settings
	Profiles  map[string]Profile `toml:"profiles"`  // Capability profiles
	Storage   StorageConfig      `toml:"storage"`   // Persistent storage settings
	Scheduler SchedulerConfig    `toml:"scheduler"` // Prompt scheduling settings
	Skills    SkillsConfig       `toml:"skills"`    // Skill directories
	Timeouts  TimeoutsConfig     `toml:"timeouts"`  // Network operation timeouts
	Agents    []AgentConfig      `toml:"agents"`    // Agent definitions
}

// LLMConfig contains LLM provider settings.
type LLMConfig struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	APIKeyEnv    string `toml:"api_key_env"`
	MaxTokens    int    `toml:"max_tokens"`
	BaseURL      string `toml:"base_url"`      // Custom API endpoint (OpenRouter, LiteLLM, Ollama, LMStudio)
	MaxRetries   int    `toml:"max_retries"`   // Max retry attempts (default 5)
	RetryBackoff string `toml:"retry_backoff"` // Max backoff duration (default "60s")
}

// Profile represents a capability profile mapping to a specific LLM configuration.
type Profile struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	MaxTokens int    `toml:"max_tokens"`
	BaseURL   string `toml:"base_url"` // Custom API endpoint
}

// StorageConfig contains persistent storage settings.
type StorageConfig struct {
	Path           string `toml:"path"`            // Base directory for all persistent data
	Backend        string `toml:"backend"`         // "file" (default) or "sqlite"
	PersistContext bool   `toml:"persist_context"` // true = conversation context survives across runs
}

// SchedulerConfig contains prompt scheduling settings.
type SchedulerConfig struct {
	MaxNudges int `toml:"max_nudges"` // Reminders before a turn is abandoned (default 3)
}

// SkillsConfig contains skill loading configuration.
type SkillsConfig struct {
	Paths []string `toml:"paths"` // Directories to search for skills
}

// TimeoutsConfig contains timeout settings for network operations.
type TimeoutsConfig struct {
	LLM int `toml:"llm"` // Model call timeout in seconds (default 120)
}

// AgentConfig defines a single agent in the swarm.
type AgentConfig struct {
	Name    string   `toml:"name"`
	Bio     string   `toml:"bio"`
	Profile string   `toml:"profile"`  // Capability profile; empty = default LLM
	AwareOf []string `toml:"aware_of"` // Agents this one may delegate to
	Skills  []string `toml:"skills"`   // Skill names granted to this agent
	Entry   bool     `toml:"entry"`    // Receives the initial task prompt
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		LLM: LLMConfig{
			MaxTokens: 4096,
		},
		Storage: StorageConfig{
			Path:           "~/.local/swarm",
			Backend:        "file",
			PersistContext: true,
		},
		Scheduler: SchedulerConfig{
			MaxNudges: 3,
		},
		Timeouts: TimeoutsConfig{
			LLM: 120, // 120 seconds for model calls
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration from swarm.toml in the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	return LoadFile(filepath.Join(cwd, "swarm.toml"))
}

// Validate checks the agent definitions for consistency.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent definition missing name")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate agent name %q", a.Name)
		}
		seen[a.Name] = true
		if a.Profile != "" {
			if _, ok := c.Profiles[a.Profile]; !ok {
				return fmt.Errorf("agent %q references unknown profile %q", a.Name, a.Profile)
			}
		}
	}
	for _, a := range c.Agents {
		for _, peer := range a.AwareOf {
			if !seen[peer] {
				return fmt.Errorf("agent %q is aware of undefined agent %q", a.Name, peer)
			}
		}
	}
	return nil
}

// EntryAgent returns the agent that receives the initial task prompt.
// Falls back to the first defined agent when none is marked as entry.
func (c *Config) EntryAgent() (AgentConfig, error) {
	var entry *AgentConfig
	for i := range c.Agents {
		if c.Agents[i].Entry {
			if entry != nil {
				return AgentConfig{}, fmt.Errorf("multiple entry agents: %q and %q", entry.Name, c.Agents[i].Name)
			}
			entry = &c.Agents[i]
		}
	}
	if entry != nil {
		return *entry, nil
	}
	if len(c.Agents) > 0 {
		return c.Agents[0], nil
	}
	return AgentConfig{}, fmt.Errorf("no agents defined")
}

// GetAPIKey returns the API key from the configured environment variable.
// If api_key_env is not set, uses the default env var for the provider.
func (c *Config) GetAPIKey() string {
	envVar := c.LLM.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	case "mistral":
		return "MISTRAL_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return ""
	}
}

// GetProfile returns the LLM config for a capability profile.
// Falls back to default LLM config if profile not found.
func (c *Config) GetProfile(name string) LLMConfig {
	if name == "" {
		return c.LLM
	}
	if profile, ok := c.Profiles[name]; ok {
		// Fill in defaults from main LLM config
		result := LLMConfig{
			Provider:     profile.Provider,
			Model:        profile.Model,
			APIKeyEnv:    profile.APIKeyEnv,
			MaxTokens:    profile.MaxTokens,
			BaseURL:      profile.BaseURL,
			MaxRetries:   c.LLM.MaxRetries,
			RetryBackoff: c.LLM.RetryBackoff,
		}
		if result.Provider == "" {
			result.Provider = c.LLM.Provider
		}
		if result.APIKeyEnv == "" {
			result.APIKeyEnv = c.LLM.APIKeyEnv
		}
		if result.MaxTokens == 0 {
			result.MaxTokens = c.LLM.MaxTokens
		}
		return result
	}
	return c.LLM
}

// GetProfileAPIKey returns the API key for a specific profile.
func (c *Config) GetProfileAPIKey(profileName string) string {
	llmCfg := c.GetProfile(profileName)
	envVar := llmCfg.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(llmCfg.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// StoragePath expands a leading ~ in the storage path.
func (c *Config) StoragePath() string {
	p := c.Storage.Path
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

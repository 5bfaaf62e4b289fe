package main

import (
	"fmt"
	"os"
	"time"

	"github.com/vinayprograms/swarm/internal/config"
	"github.com/vinayprograms/swarm/internal/llm"
)

// Default base URLs for OpenAI-compatible providers.
var providerBaseURLs = map[string]string{
	"openai":  "https://api.openai.com/v1",
	"groq":    "https://api.groq.com/openai/v1",
	"mistral": "https://api.mistral.ai/v1",
	"ollama":  "http://localhost:11434/v1",
}

// newProvider builds a chat provider from an LLM config section.
// Every supported provider speaks the OpenAI chat-completions dialect.
func newProvider(llmCfg config.LLMConfig, timeoutSecs int) (llm.Provider, error) {
	if llmCfg.Model == "" {
		return nil, fmt.Errorf("LLM model not configured")
	}

	baseURL := llmCfg.BaseURL
	if baseURL == "" {
		baseURL = providerBaseURLs[llmCfg.Provider]
	}
	if baseURL == "" {
		return nil, fmt.Errorf("unknown provider %q and no base_url configured", llmCfg.Provider)
	}

	apiKey := apiKeyFor(llmCfg)
	if apiKey == "" && llmCfg.Provider != "ollama" {
		return nil, fmt.Errorf("no API key for provider %q (set %s)",
			llmCfg.Provider, keyEnvFor(llmCfg))
	}

	maxBackoff, err := parseBackoff(llmCfg.RetryBackoff)
	if err != nil {
		return nil, err
	}

	var timeout time.Duration
	if timeoutSecs > 0 {
		timeout = time.Duration(timeoutSecs) * time.Second
	}

	return llm.NewOpenAIProvider(llm.OpenAIOptions{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Timeout:    timeout,
		MaxRetries: llmCfg.MaxRetries,
		MaxBackoff: maxBackoff,
	}), nil
}

func keyEnvFor(llmCfg config.LLMConfig) string {
	if llmCfg.APIKeyEnv != "" {
		return llmCfg.APIKeyEnv
	}
	return config.DefaultAPIKeyEnv(llmCfg.Provider)
}

func apiKeyFor(llmCfg config.LLMConfig) string {
	env := keyEnvFor(llmCfg)
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

func parseBackoff(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid retry_backoff %q: %w", raw, err)
	}
	return d, nil
}

package main

import (
	"testing"
	"time"

	"github.com/vinayprograms/swarm/internal/config"
)

func TestNewProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{"missing model", config.LLMConfig{Provider: "openai"}},
		{"unknown provider", config.LLMConfig{Provider: "carrier-pigeon", Model: "m"}},
		{"missing api key", config.LLMConfig{Provider: "openai", Model: "gpt-4o", APIKeyEnv: "SWARM_TEST_UNSET_KEY"}},
		{"bad backoff", config.LLMConfig{Provider: "ollama", Model: "m", RetryBackoff: "sixty seconds"}},
	}

	for i, test := range tests {
		if _, err := newProvider(test.cfg, 0); err == nil {
			t.Errorf("tests[%d] - %s: expected error, got nil", i, test.name)
		}
	}
}

func TestNewProviderOllamaNeedsNoKey(t *testing.T) {
	p, err := newProvider(config.LLMConfig{Provider: "ollama", Model: "llama3"}, 30)
	if err != nil {
		t.Fatalf("ollama provider failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected provider")
	}
}

func TestNewProviderCustomBaseURL(t *testing.T) {
	t.Setenv("SWARM_TEST_KEY", "sk-test")
	p, err := newProvider(config.LLMConfig{
		Provider:  "custom",
		Model:     "m",
		BaseURL:   "http://localhost:8080/v1",
		APIKeyEnv: "SWARM_TEST_KEY",
	}, 0)
	if err != nil {
		t.Fatalf("custom base_url provider failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected provider")
	}
}

func TestParseBackoff(t *testing.T) {
	d, err := parseBackoff("90s")
	if err != nil {
		t.Fatalf("parseBackoff failed: %v", err)
	}
	if d != 90*time.Second {
		t.Errorf("backoff expected=90s, got=%v", d)
	}

	if d, err := parseBackoff(""); err != nil || d != 0 {
		t.Errorf("empty backoff expected=0,nil got=%v,%v", d, err)
	}
}

package config

import (
	"path/filepath"
	"testing"
)

func TestApplyDefaultsFillsEmptyConfig(t *testing.T) {
	cfg := Config{}

	applyDefaults(&cfg)

	if cfg.Agent.Name != "Slicebot" {
		t.Fatalf("unexpected agent name: %q", cfg.Agent.Name)
	}
	if cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Fatalf("unexpected temperature: %f", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 200 {
		t.Fatalf("unexpected max tokens: %d", cfg.LLM.MaxTokens)
	}
	if cfg.Dialogue.HistoryLimit != 20 {
		t.Fatalf("unexpected history limit: %d", cfg.Dialogue.HistoryLimit)
	}
	if cfg.Dialogue.PromptHistoryLimit != 10 {
		t.Fatalf("unexpected prompt history limit: %d", cfg.Dialogue.PromptHistoryLimit)
	}
	if cfg.Dialogue.MaxRecommendations != 2 {
		t.Fatalf("unexpected max recommendations: %d", cfg.Dialogue.MaxRecommendations)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("unexpected port: %d", cfg.HTTP.Port)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Agent:    AgentConfig{Name: "Testbot"},
		LLM:      LLMConfig{Model: "llama-3.1-8b-instant", MaxTokens: 400},
		Dialogue: DialogueConfig{HistoryLimit: 50},
		HTTP:     HTTPConfig{Port: 9090},
	}

	applyDefaults(&cfg)

	if cfg.Agent.Name != "Testbot" {
		t.Fatalf("agent name overwritten: %q", cfg.Agent.Name)
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Fatalf("model overwritten: %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 400 {
		t.Fatalf("max tokens overwritten: %d", cfg.LLM.MaxTokens)
	}
	if cfg.Dialogue.HistoryLimit != 50 {
		t.Fatalf("history limit overwritten: %d", cfg.Dialogue.HistoryLimit)
	}
	if cfg.HTTP.Port != 9090 {
		t.Fatalf("port overwritten: %d", cfg.HTTP.Port)
	}
}

func TestApplyDefaultsSanitizesOutOfRangeTemperature(t *testing.T) {
	cfg := Config{LLM: LLMConfig{Temperature: 3.5}}

	applyDefaults(&cfg)

	if cfg.LLM.Temperature != 0.1 {
		t.Fatalf("expected temperature clamp to 0.1, got %f", cfg.LLM.Temperature)
	}
}

func TestAuditAcceptsDefaults(t *testing.T) {
	cfg := defaultConfig()
	applyDefaults(&cfg)

	if findings := Audit(cfg); len(findings) != 0 {
		t.Fatalf("default config should audit clean, got %v", findings)
	}
}

func TestAuditFlagsSuspiciousValues(t *testing.T) {
	cfg := defaultConfig()
	applyDefaults(&cfg)
	cfg.HTTP.Port = 80
	cfg.LLM.BaseURL = "http://localhost:9999"
	cfg.LLM.Temperature = 1.5
	cfg.Dialogue.PromptHistoryLimit = 50

	findings := Audit(cfg)
	if len(findings) != 4 {
		t.Fatalf("expected 4 findings, got %d: %v", len(findings), findings)
	}
}

func TestManagerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := mgr.Update(func(c *Config) {
		c.HTTP.Port = 9191
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get().HTTP.Port; got != 9191 {
		t.Fatalf("expected persisted port 9191, got %d", got)
	}
}

package config

import (
	"fmt"
	"strings"
)

// Audit flags values that load fine but usually mean a mistake. Findings are
// advisory; applyDefaults has already replaced anything outright invalid.
func Audit(cfg Config) []string {
	var findings []string

	if cfg.HTTP.Port < 1024 {
		findings = append(findings, fmt.Sprintf("http.port %d is privileged; ports below 1024 need elevated permissions", cfg.HTTP.Port))
	}
	if !strings.HasPrefix(cfg.LLM.BaseURL, "https://") {
		findings = append(findings, fmt.Sprintf("llm.base_url %q is not https; the API key travels in clear text", cfg.LLM.BaseURL))
	}
	if cfg.LLM.Temperature > 0.5 {
		findings = append(findings, fmt.Sprintf("llm.temperature %.2f is high for intent extraction; expect unstable JSON output", cfg.LLM.Temperature))
	}
	if cfg.LLM.MaxTokens < 100 {
		findings = append(findings, fmt.Sprintf("llm.max_tokens %d can truncate extraction JSON mid-object", cfg.LLM.MaxTokens))
	}
	if cfg.LLM.TimeoutSec > 120 {
		findings = append(findings, fmt.Sprintf("llm.timeout_sec %d exceeds the gateway attempt timeout; slow calls get cancelled anyway", cfg.LLM.TimeoutSec))
	}
	if cfg.Dialogue.PromptHistoryLimit > cfg.Dialogue.HistoryLimit {
		findings = append(findings, fmt.Sprintf("dialogue.prompt_history_limit %d exceeds history_limit %d; the prompt window can never fill", cfg.Dialogue.PromptHistoryLimit, cfg.Dialogue.HistoryLimit))
	}

	return findings
}

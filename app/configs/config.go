package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Config struct {
	Agent    AgentConfig    `json:"agent"`
	LLM      LLMConfig      `json:"llm"`
	Dialogue DialogueConfig `json:"dialogue"`
	HTTP     HTTPConfig     `json:"http"`
	Storage  StorageConfig  `json:"storage"`
}

type AgentConfig struct {
	Name string `json:"name"`
}

type LLMConfig struct {
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TimeoutSec  int     `json:"timeout_sec"`
}

type DialogueConfig struct {
	HistoryLimit       int    `json:"history_limit"`
	PromptHistoryLimit int    `json:"prompt_history_limit"`
	MaxRecommendations int    `json:"max_recommendations"`
	CLIUserID          string `json:"cli_user_id"`
}

type HTTPConfig struct {
	Port int `json:"port"`
}

type StorageConfig struct {
	DataDir string `json:"data_dir"`
	LogDir  string `json:"log_dir"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Name: "Slicebot",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.1,
			MaxTokens:   200,
			TimeoutSec:  30,
		},
		Dialogue: DialogueConfig{
			HistoryLimit:       20,
			PromptHistoryLimit: 10,
			MaxRecommendations: 2,
			CLIUserID:          "local_user",
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			DataDir: filepath.Join("output", "db"),
			LogDir:  filepath.Join("output", "logs"),
		},
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		cfg.Agent.Name = "Slicebot"
	}
	if strings.TrimSpace(cfg.LLM.BaseURL) == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		cfg.LLM.Model = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.Temperature <= 0 || cfg.LLM.Temperature > 2 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 200
	}
	if cfg.LLM.TimeoutSec <= 0 {
		cfg.LLM.TimeoutSec = 30
	}
	if cfg.Dialogue.HistoryLimit <= 0 {
		cfg.Dialogue.HistoryLimit = 20
	}
	if cfg.Dialogue.PromptHistoryLimit <= 0 {
		cfg.Dialogue.PromptHistoryLimit = 10
	}
	if cfg.Dialogue.MaxRecommendations <= 0 {
		cfg.Dialogue.MaxRecommendations = 2
	}
	if strings.TrimSpace(cfg.Dialogue.CLIUserID) == "" {
		cfg.Dialogue.CLIUserID = "local_user"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if strings.TrimSpace(cfg.Storage.DataDir) == "" {
		cfg.Storage.DataDir = filepath.Join("output", "db")
	}
	if strings.TrimSpace(cfg.Storage.LogDir) == "" {
		cfg.Storage.LogDir = filepath.Join("output", "logs")
	}
}

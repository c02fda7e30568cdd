// Package agent routes each kind of LLM task to a configured provider.
package agent

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"obra_tracker/pkg/core/llm"
	"obra_tracker/pkg/core/utils"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// VoiceCommand is the agent type that turns transcripts into actions.
const VoiceCommand = "voice_command"

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // optional override
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// LoadConfig reads a models.yaml file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read agent config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse agent config: %w", err)
	}
	return cfg, nil
}

// DefaultProviders is the provider set used in production.
func DefaultProviders() map[string]llm.Provider {
	return map[string]llm.Provider{
		"openai": &llm.OpenAIProvider{},
		"gemini": &llm.GeminiProvider{},
	}
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return NewManagerWithProviders(config, DefaultProviders())
}

// NewManagerWithProviders is NewManager with an explicit provider set.
func NewManagerWithProviders(config Config, providers map[string]llm.Provider) *Manager {
	return &Manager{config: config, providers: providers}
}

// GetProvider resolves the provider for an agent type: per-agent override first, then the
// global active provider, then "gemini".
func (m *Manager) GetProvider(agentType string) (string, llm.Provider) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider, p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider, p
	}
	return "gemini", m.providers["gemini"]
}

// ExecutePrompt sends the prompt to the provider configured for agentType.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	name, provider := m.GetProvider(agentType)
	if provider == nil {
		return "", fmt.Errorf("%w: no LLM provider available for %s", utils.ErrExternalServiceFailure, agentType)
	}

	m.mu.RLock()
	model := m.config.Agents[agentType].Model
	m.mu.RUnlock()
	if model != "" {
		merged := map[string]interface{}{llm.OptModel: model}
		for k, v := range options {
			merged[k] = v
		}
		options = merged
	}

	utils.Logger.WithFields(logrus.Fields{
		"agent":    agentType,
		"provider": name,
	}).Debug("Executing prompt")

	out, err := provider.GenerateResponse(ctx, prompt, systemPrompt, options)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", utils.ErrExternalServiceFailure, name, err)
	}
	return out, nil
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	utils.Logger.WithField("provider", newProvider).Info("Global LLM provider switched")
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Available lists the registered provider names, sorted.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

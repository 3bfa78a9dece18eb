// Package agent wires yaml-configured LLM providers to the features that use
// them. Each feature names an agent type; the config maps agent types to
// providers and can be switched at runtime.
package agent

import (
	"cost_intelligence/pkg/core/llm"
)

// Config is loaded from config/providers.yaml.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig overrides the provider for one agent type.
type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// Manager resolves agent types to providers.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

// NewManager builds a manager over the known provider implementations.
func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// GetProvider resolves the provider for an agent type: agent-specific
// override first, then the global active provider, then gemini.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["gemini"]
}

// ActiveProvider returns the configured global provider name.
func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}

// SwitchProvider changes the global active provider. Returns false when the
// provider is unknown.
func (m *Manager) SwitchProvider(name string) bool {
	if _, ok := m.providers[name]; !ok {
		return false
	}
	m.config.ActiveProvider = name
	return true
}

// ProviderNames lists the known provider implementations.
func (m *Manager) ProviderNames() []string {
	names := make([]string, 0, len(m.providers))
	for n := range m.providers {
		names = append(names, n)
	}
	return names
}

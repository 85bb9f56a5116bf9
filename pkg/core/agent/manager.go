// Package agent routes the pipeline's model calls to a configured provider.
package agent

import (
	"context"
	"fmt"

	"findash/pkg/core/llm"
)

// Config selects the provider per role, loaded from YAML.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// RoleConfig overrides the provider or model for one role, e.g. "extractor"
// or "narrator".
type RoleConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Manager resolves roles to providers.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

// NewManager wires the known providers around a config.
func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// Provider resolves the provider for a role: role override first, then the
// global active provider, then gemini.
func (m *Manager) Provider(role string) llm.Provider {
	if rc, ok := m.config.Roles[role]; ok && rc.Provider != "" {
		if p, ok := m.providers[rc.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["gemini"]
}

// Model returns the configured model override for a role, "" when unset.
func (m *Manager) Model(role string) string {
	if rc, ok := m.config.Roles[role]; ok {
		return rc.Model
	}
	return ""
}

// Generate resolves the role's provider and runs one generation call.
func (m *Manager) Generate(ctx context.Context, role string, prompt string, systemPrompt string, opts llm.Options) (string, error) {
	provider := m.Provider(role)
	if opts.Model == "" {
		opts.Model = m.Model(role)
	}
	fmt.Printf("[AGENT] role=%s provider=%s model=%s\n", role, provider.Name(), opts.Model)
	return provider.Generate(ctx, prompt, systemPrompt, opts)
}

// SetGlobalProvider switches the active provider at runtime.
func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	fmt.Printf("Global provider set to: %s\n", name)
	return nil
}

// ActiveProvider returns the current global provider name.
func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}

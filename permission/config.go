package permission

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the externally supplied permission configuration. Path and
// command lists are glob patterns.
type Config struct {
	AllowedPaths    []string `yaml:"allowed_paths"`
	DeniedPaths     []string `yaml:"denied_paths"`
	AllowedCommands []string `yaml:"allowed_commands"`
	DeniedCommands  []string `yaml:"denied_commands"`
	StrictMode      bool     `yaml:"strict_mode"`
	AuditEnabled    bool     `yaml:"audit_enabled"`
}

// LoadConfig reads and parses a YAML permission configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("permission: read config: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("permission: parse config: %w", err)
	}
	return config, nil
}

// Rules generates the rule set implied by the configuration: allow rules
// at priority 100 and deny rules at DenyPriority, covering the file and
// command scopes.
func (c Config) Rules() []Rule {
	var rules []Rule

	if len(c.DeniedPaths) > 0 {
		rules = append(rules, Rule{
			ID:          "deny-paths",
			Description: "paths denied by configuration",
			Scope:       ScopeFile,
			Actions:     []string{"*"},
			Patterns:    c.DeniedPaths,
			Priority:    DenyPriority,
			Enabled:     true,
		})
	}
	if len(c.AllowedPaths) > 0 {
		rules = append(rules, Rule{
			ID:          "allow-paths",
			Description: "paths allowed by configuration",
			Scope:       ScopeFile,
			Actions:     []string{"*"},
			Patterns:    c.AllowedPaths,
			Priority:    100,
			Enabled:     true,
		})
	}
	if len(c.DeniedCommands) > 0 {
		rules = append(rules, Rule{
			ID:          "deny-commands",
			Description: "commands denied by configuration",
			Scope:       ScopeCommand,
			Actions:     []string{"*"},
			Patterns:    c.DeniedCommands,
			Priority:    DenyPriority,
			Enabled:     true,
		})
	}
	if len(c.AllowedCommands) > 0 {
		rules = append(rules, Rule{
			ID:          "allow-commands",
			Description: "commands allowed by configuration",
			Scope:       ScopeCommand,
			Actions:     []string{"*"},
			Patterns:    c.AllowedCommands,
			Priority:    100,
			Enabled:     true,
		})
	}

	return rules
}

// NewManagerFromConfig builds a manager pre-populated with the rules the
// configuration implies.
func NewManagerFromConfig(config Config) (*Manager, error) {
	m := NewManager(ManagerConfig{
		StrictMode:   config.StrictMode,
		AuditEnabled: config.AuditEnabled,
	})
	for _, rule := range config.Rules() {
		if err := m.store.Add(rule); err != nil {
			return nil, err
		}
	}
	return m, nil
}

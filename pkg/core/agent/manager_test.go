package agent

import (
	"testing"
)

func TestGetProviderResolution(t *testing.T) {
	mgr := NewManager(Config{
		ActiveProvider: "deepseek",
		Agents: map[string]AgentConfig{
			"insight_narrative": {Provider: "gemini"},
			"misconfigured":     {Provider: "nonexistent"},
		},
	})

	// Agent-specific override wins.
	if p := mgr.GetProvider("insight_narrative"); p == nil {
		t.Fatal("Expected provider for configured agent")
	}
	// Unknown agent falls through to the active provider.
	if p := mgr.GetProvider("anything_else"); p == nil {
		t.Fatal("Expected active provider fallback")
	}
	// A bad override falls through rather than failing.
	if p := mgr.GetProvider("misconfigured"); p == nil {
		t.Fatal("Expected fallback for misconfigured agent")
	}
	// Empty config still resolves to the gemini default.
	empty := NewManager(Config{})
	if p := empty.GetProvider("x"); p == nil {
		t.Fatal("Expected default provider with empty config")
	}
}

func TestSwitchProvider(t *testing.T) {
	mgr := NewManager(Config{ActiveProvider: "gemini"})

	if !mgr.SwitchProvider("deepseek") {
		t.Error("Expected switch to known provider to succeed")
	}
	if mgr.ActiveProvider() != "deepseek" {
		t.Errorf("Expected active provider deepseek, got %s", mgr.ActiveProvider())
	}

	if mgr.SwitchProvider("gpt9000") {
		t.Error("Expected switch to unknown provider to fail")
	}
	if mgr.ActiveProvider() != "deepseek" {
		t.Error("Failed switch must not change the active provider")
	}

	names := mgr.ProviderNames()
	if len(names) != 2 {
		t.Errorf("Expected 2 providers, got %v", names)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "gpt-4" {
		t.Errorf("expected default model gpt-4, got %s", cfg.Model)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected max_retries 3, got %d", cfg.MaxRetries)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("expected timeout_seconds 30, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Timeout())
	}
	if cfg.InitialBackoff() != 500*time.Millisecond {
		t.Errorf("expected initial backoff 500ms, got %v", cfg.InitialBackoff())
	}
	if cfg.HasAPIKey() {
		t.Error("default config should not have an API key")
	}
}

func TestTimeoutFallsBackWhenUnset(t *testing.T) {
	cfg := Config{}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected fallback timeout 30s, got %v", cfg.Timeout())
	}
	if cfg.InitialBackoff() != 500*time.Millisecond {
		t.Errorf("expected fallback backoff 500ms, got %v", cfg.InitialBackoff())
	}
}

func TestLoadRepoConfigOverridesDefaults(t *testing.T) {
	repoRoot := t.TempDir()
	dir := filepath.Join(repoRoot, ".aimerge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	content := []byte(`{
  // repo-local override
  "model": "gpt-4o",
  "max_retries": 5
}`)
	if err := os.WriteFile(filepath.Join(dir, "aimerge.jsonc"), content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(repoRoot)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", cfg.Model)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("expected max_retries 5, got %d", cfg.MaxRetries)
	}
	// Untouched fields keep defaults.
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("expected timeout_seconds 30, got %d", cfg.TimeoutSeconds)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AIMERGE_API_KEY", "env-key")
	t.Setenv("AIMERGE_MODEL", "gpt-3.5-turbo")
	t.Setenv("AIMERGE_MAX_RETRIES", "7")
	t.Setenv("AIMERGE_TIMEOUT_SECONDS", "60")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.APIKey != "env-key" {
		t.Errorf("expected api key env-key, got %s", cfg.APIKey)
	}
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("expected model gpt-3.5-turbo, got %s", cfg.Model)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("expected max_retries 7, got %d", cfg.MaxRetries)
	}
	if cfg.TimeoutSeconds != 60 {
		t.Errorf("expected timeout_seconds 60, got %d", cfg.TimeoutSeconds)
	}
}

func TestOpenAIKeyFallback(t *testing.T) {
	t.Setenv("AIMERGE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.APIKey != "sk-fallback" {
		t.Errorf("expected OPENAI_API_KEY fallback, got %q", cfg.APIKey)
	}
}

func TestAimergeKeyWinsOverOpenAIKey(t *testing.T) {
	t.Setenv("AIMERGE_API_KEY", "sk-aimerge")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.APIKey != "sk-aimerge" {
		t.Errorf("expected AIMERGE_API_KEY to win, got %q", cfg.APIKey)
	}
}

func TestSaveAndReload(t *testing.T) {
	// Redirect the user config dir into a temp dir.
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)

	cfg := DefaultConfig()
	cfg.APIKey = "saved-key"
	cfg.Model = "gpt-4o-mini"
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "")
	loaded, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.APIKey != "saved-key" {
		t.Errorf("expected saved key, got %q", loaded.APIKey)
	}
	if loaded.Model != "gpt-4o-mini" {
		t.Errorf("expected saved model, got %q", loaded.Model)
	}
}

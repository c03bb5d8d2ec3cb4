package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "sources.yml"))
	if err != nil {
		t.Fatalf("Missing file should not be an error, got: %v", err)
	}

	defaults := Default()
	if config.Epic.Endpoint != defaults.Epic.Endpoint {
		t.Errorf("Expected default epic endpoint, got '%s'", config.Epic.Endpoint)
	}
	if config.Steam.SearchURL != defaults.Steam.SearchURL {
		t.Errorf("Expected default steam search URL, got '%s'", config.Steam.SearchURL)
	}
	if !config.Epic.Enabled || !config.Steam.Enabled {
		t.Error("Both sources should be enabled by default")
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	content := `
epic:
  store_base_url: https://store.example.com
steam:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Epic.StoreBaseURL != "https://store.example.com" {
		t.Errorf("Override not applied, got '%s'", config.Epic.StoreBaseURL)
	}
	if config.Epic.Endpoint != Default().Epic.Endpoint {
		t.Errorf("Unset key should keep its default, got '%s'", config.Epic.Endpoint)
	}
	if !config.Epic.Enabled {
		t.Error("Epic should stay enabled when the file does not say otherwise")
	}
	if config.Steam.Enabled {
		t.Error("Steam should be disabled by the override")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte("epic: [not: valid"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfig_RejectsBlankEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	content := `
epic:
  endpoint: ""
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected validation error for a blanked endpoint")
	}
}

func TestDefault_ColorsPerSource(t *testing.T) {
	defaults := Default()
	if defaults.Epic.Color == defaults.Steam.Color {
		t.Error("Sources should have distinct embed colors")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create test YAML file
	content := `
retailer:
  name: "שופרסל"
  portal: "published"
  portal_url: "https://prices.example.co.il/login"
  branch: "005"
  username: "shufersal"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "shufersal.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load configuration
	loader := NewLoader(tempDir)
	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(configs) != 1 {
		t.Errorf("Expected 1 config, got %d", len(configs))
	}

	// Get the config
	var config *RetailerConfig
	for _, cfg := range configs {
		config = cfg
		break
	}

	// Validate loaded values
	if config.Retailer.Name != "שופרסל" {
		t.Errorf("Expected name 'שופרסל', got '%s'", config.Retailer.Name)
	}
	if config.Retailer.Portal != "published" {
		t.Errorf("Expected portal 'published', got '%s'", config.Retailer.Portal)
	}
	if config.Retailer.PortalURL != "https://prices.example.co.il/login" {
		t.Errorf("Expected portal URL 'https://prices.example.co.il/login', got '%s'", config.Retailer.PortalURL)
	}
	if config.Retailer.Branch != "005" {
		t.Errorf("Expected branch '005', got '%s'", config.Retailer.Branch)
	}
	if !config.Settings.IsEnabled() {
		t.Error("Expected retailer to be enabled")
	}
}

func TestLoadConfigEnabledByDefault(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create minimal test YAML file
	content := `
retailer:
  name: "ויקטורי"
  portal: "market"
  portal_url: "https://market.example.co.il/files"
`

	err := os.WriteFile(filepath.Join(tempDir, "victory.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load configuration
	loader := NewLoader(tempDir)
	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	// Get the config
	var config *RetailerConfig
	for _, cfg := range configs {
		config = cfg
		break
	}

	// Omitted flag means enabled
	if !config.Settings.IsEnabled() {
		t.Error("Expected retailer to be enabled by default")
	}
}

func TestLoadConfigExplicitlyDisabled(t *testing.T) {
	tempDir := t.TempDir()

	content := `
retailer:
  name: "טיב טעם"
  portal: "selfhosted"
  portal_url: "https://chain.example.co.il/prices"

settings:
  enabled: false
`

	err := os.WriteFile(filepath.Join(tempDir, "tivtaam.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(tempDir)
	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	var config *RetailerConfig
	for _, cfg := range configs {
		config = cfg
		break
	}

	if config.Settings.IsEnabled() {
		t.Error("Expected retailer to be disabled")
	}
}

func TestInvalidConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create invalid YAML file (missing name and portal URL)
	content := `
retailer:
  portal: "market"
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load configuration
	loader := NewLoader(tempDir)
	_, err = loader.LoadAll()
	if err == nil {
		t.Error("Expected error for invalid descriptor")
	}
}

func TestUnknownPortalFamily(t *testing.T) {
	tempDir := t.TempDir()

	content := `
retailer:
  name: "רשת"
  portal: "ftp"
  portal_url: "https://chain.example.co.il/prices"
`

	err := os.WriteFile(filepath.Join(tempDir, "bad-portal.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(tempDir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for unknown portal family")
	}
}

func TestPublishedPortalRequiresUsername(t *testing.T) {
	tempDir := t.TempDir()

	content := `
retailer:
  name: "רמי לוי"
  portal: "published"
  portal_url: "https://prices.example.co.il/login"
`

	err := os.WriteFile(filepath.Join(tempDir, "ramilevi.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(tempDir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for published portal without username")
	}
}

func TestEmptyDirectory(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Load from empty directory
	loader := NewLoader(tempDir)
	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(configs) != 0 {
		t.Errorf("Expected 0 configs from empty directory, got %d", len(configs))
	}
}

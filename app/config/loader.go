package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of retailer descriptors
type Loader struct {
	retailersDir string
}

// NewLoader creates a new descriptor loader
func NewLoader(retailersDir string) *Loader {
	return &Loader{retailersDir: retailersDir}
}

// LoadAll loads all YAML descriptor files from the retailers directory
func (l *Loader) LoadAll() (map[string]*RetailerConfig, error) {
	configs := make(map[string]*RetailerConfig)

	// Check if retailers directory exists
	if _, err := os.Stat(l.retailersDir); os.IsNotExist(err) {
		return configs, nil // Return empty map if directory doesn't exist
	}

	files, err := filepath.Glob(filepath.Join(l.retailersDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	// Also check for .yml extension
	ymlFiles, err := filepath.Glob(filepath.Join(l.retailersDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid descriptor %s: %w", file, err)
		}

		configs[file] = config
		log.Printf("Loaded retailer descriptor from %s", file)
	}

	return configs, nil
}

// loadFile loads a single YAML descriptor file
func (l *Loader) loadFile(path string) (*RetailerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config RetailerConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

// validate validates the descriptor
func (l *Loader) validate(config *RetailerConfig) error {
	if config.Retailer.Name == "" {
		return fmt.Errorf("retailer name is required")
	}
	if config.Retailer.PortalURL == "" {
		return fmt.Errorf("portal URL is required")
	}

	validPortals := map[string]bool{
		"selfhosted": true,
		"published":  true,
		"market":     true,
	}
	if !validPortals[config.Retailer.Portal] {
		return fmt.Errorf("invalid portal family: %s", config.Retailer.Portal)
	}

	// The shared published-prices portal gates file listings behind a login
	if config.Retailer.Portal == "published" && config.Retailer.Username == "" {
		return fmt.Errorf("portal family 'published' requires a username")
	}

	return nil
}

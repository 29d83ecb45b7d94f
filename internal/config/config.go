// Package config provides configuration loading and structs for Kaiwa.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Names    NamesConfig    `yaml:"names"`
	Analysis AnalysisConfig `yaml:"analysis"`
	// Concepts overrides the built-in default concept set when non-empty.
	Concepts []ConceptConfig `yaml:"concepts"`
	// ConceptsFile is an optional definition file ("Name: pattern1|pattern2"
	// per line) whose concepts take precedence over Concepts.
	ConceptsFile string `yaml:"concepts_file"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, transcript data, search index,
// and generated vault.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	// DataDir is where transcripts, the titles index, and training data are
	// written by import and read back by analyze.
	DataDir        string `yaml:"data_dir"`
	BleveIndexPath string `yaml:"bleve_index_path"`
	VaultDir       string `yaml:"vault_dir"`
}

// NamesConfig holds the display names messages are relabeled with.
type NamesConfig struct {
	User      string `yaml:"user"`
	Assistant string `yaml:"assistant"`
	System    string `yaml:"system"`
}

// AnalysisConfig holds concept analysis thresholds.
type AnalysisConfig struct {
	// MinSimilarity is the Jaccard threshold below which relatedness edges
	// are discarded.
	MinSimilarity float64 `yaml:"min_similarity"`
	// MinTermOccurrences is the general term-mining floor.
	MinTermOccurrences int `yaml:"min_term_occurrences"`
	// SuggestionThreshold is the stricter floor applied when mined terms are
	// proposed as new concepts.
	SuggestionThreshold int `yaml:"suggestion_threshold"`
	// MinInstructionLength filters very short instructions out of training
	// pair generation.
	MinInstructionLength int `yaml:"min_instruction_length"`
}

// ConceptConfig is one user-configured concept: a name and its pattern
// alternation, in the same "term1|term2|multi word phrase" form the concept
// definition file uses.
type ConceptConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.VaultDir = expandPath(cfg.Storage.VaultDir, configDir)
	if cfg.ConceptsFile != "" {
		cfg.ConceptsFile = expandPath(cfg.ConceptsFile, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

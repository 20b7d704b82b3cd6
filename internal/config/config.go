package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// MatchingConfig carries every threshold the engine consults. The defaults
// are the empirically chosen values the matching was tuned with; they are
// configuration rather than constants because the right values are
// domain-specific.
type MatchingConfig struct {
	// Global acceptance floor: candidates below this are never emitted.
	AcceptFloor float64 `toml:"accept_floor"`
	// Minimum combined similarity for the fuzzy pass.
	FuzzyFloor float64 `toml:"fuzzy_floor"`

	// Substring-pass confidences by direction.
	SubstringContains  float64 `toml:"substring_contains"`  // right name/login contains left name
	SubstringContained float64 `toml:"substring_contained"` // left name contains right name
	SubstringLogin     float64 `toml:"substring_login"`     // right login is a prefix of left name
	TokenSubstring     float64 `toml:"token_substring"`     // single name token against login

	// Pattern-pass confidence.
	Pattern float64 `toml:"pattern"`

	// Minimum name-token length for the token-substring test.
	MinTokenLen int `toml:"min_token_len"`
	// Minimum derived-pattern length; shorter patterns cause false positives.
	MinPatternLen int `toml:"min_pattern_len"`
	// Block key length for the fuzzy pass.
	BlockKeyLen int `toml:"block_key_len"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type Config struct {
	Matching MatchingConfig `toml:"matching"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Memgraph MemgraphConfig `toml:"memgraph"`
}

// DefaultMatching returns the tuned threshold set.
func DefaultMatching() MatchingConfig {
	return MatchingConfig{
		AcceptFloor:        0.50,
		FuzzyFloor:         0.85,
		SubstringContains:  0.95,
		SubstringContained: 0.85,
		SubstringLogin:     0.75,
		TokenSubstring:     0.90,
		Pattern:            0.75,
		MinTokenLen:        4,
		MinPatternLen:      3,
		BlockKeyLen:        3,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Config{Matching: DefaultMatching()}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}

// Package config loads tool configuration with the cascade:
// flags > explicit --config file > ./tribalkb.yaml > ~/.tribalkb/config.yaml > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
)

// Config holds all settings for the extraction and relevance jobs.
type Config struct {
	// EntityMap is the path to the entity-type mapping document.
	EntityMap string `mapstructure:"entity_map"`

	// CaseFiles are the case-record sources, concatenated in order.
	CaseFiles []string `mapstructure:"case_files"`

	// Output is the knowledge-base YAML destination.
	Output string `mapstructure:"output"`

	OpenSearch casefile.OpenSearchConfig `mapstructure:"opensearch"`
	Relevance  RelevanceConfig           `mapstructure:"relevance"`
	Logging    LoggingConfig             `mapstructure:"logging"`
}

// RelevanceConfig holds settings for the historical relevance job.
type RelevanceConfig struct {
	Signals    string `mapstructure:"signals"`
	Historical string `mapstructure:"historical"`
	Output     string `mapstructure:"output"`
	ChunkSize  int    `mapstructure:"chunk_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v)
	// Unmarshal over defaults only; cannot fail with no sources.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from an optional explicit path, the working
// directory, or ~/.tribalkb, with TRIBALKB_-prefixed environment
// overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tribalkb")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tribalkb"))
		}
	}

	v.SetEnvPrefix("TRIBALKB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "":
			// An explicitly requested config file must load.
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		case errors.As(err, &notFound):
			// No config file found: defaults and env vars apply.
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("entity_map", "entity_primary_identifiers.json")
	v.SetDefault("case_files", []string{})
	v.SetDefault("output", "entity_tribal_knowledge.yaml")

	v.SetDefault("opensearch.url", "https://localhost:9200")
	v.SetDefault("opensearch.username", "admin")
	v.SetDefault("opensearch.password", "")
	v.SetDefault("opensearch.insecure", true)
	v.SetDefault("opensearch.index", "tribalkb-cases")
	v.SetDefault("opensearch.max_cases", 10000)

	v.SetDefault("relevance.signals", "")
	v.SetDefault("relevance.historical", "")
	v.SetDefault("relevance.output", "relevant_historical_signal_matches.csv")
	v.SetDefault("relevance.chunk_size", 500)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

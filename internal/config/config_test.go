package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "entity_primary_identifiers.json", cfg.EntityMap)
	assert.Empty(t, cfg.CaseFiles)
	assert.Equal(t, "entity_tribal_knowledge.yaml", cfg.Output)
	assert.Equal(t, 500, cfg.Relevance.ChunkSize)
	assert.Equal(t, "relevant_historical_signal_matches.csv", cfg.Relevance.Output)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "tribalkb-cases", cfg.OpenSearch.Index)
	assert.Equal(t, 10000, cfg.OpenSearch.MaxCases)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "entity_tribal_knowledge.yaml", cfg.Output)
}

func TestLoad_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tribalkb.yaml")

	content := `entity_map: /data/entity_map.json
case_files:
  - /data/cases_part_1.json
  - /data/cases_part_2.json
output: /data/kb.yaml
relevance:
  chunk_size: 100
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/data/entity_map.json", cfg.EntityMap)
	assert.Equal(t, []string{"/data/cases_part_1.json", "/data/cases_part_2.json"}, cfg.CaseFiles)
	assert.Equal(t, "/data/kb.yaml", cfg.Output)
	assert.Equal(t, 100, cfg.Relevance.ChunkSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unspecified keys keep their defaults.
	assert.Equal(t, "relevant_historical_signal_matches.csv", cfg.Relevance.Output)
}

func TestLoad_ExplicitMissingFileIsFatal(t *testing.T) {
	_, err := Load("/nonexistent/tribalkb.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/tribalkb.yaml")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRIBALKB_OUTPUT", "/tmp/override.yaml")
	t.Setenv("TRIBALKB_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.yaml", cfg.Output)
	assert.Equal(t, "error", cfg.Logging.Level)
}

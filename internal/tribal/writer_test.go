package tribal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
)

func TestWrite_RoundTrip(t *testing.T) {
	acc := NewAccumulator(testResolver())
	acc.AddCase(casefile.CaseRecord{
		TicketID:      "INC-1",
		ClosureReason: "Benign",
		Signals:       []casefile.Signal{loginSignal("target.user.id", "JDOE")},
	})
	docs := acc.Finalize()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, docs))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	assert.Equal(t, "jdoe", decoded[0]["entity_id"])
	assert.Equal(t, "User", decoded[0]["entity_type"])
	assert.Contains(t, decoded[0], "signal_stats")
	assert.Contains(t, decoded[0], "summary_insights")
	assert.Contains(t, decoded[0], "policy_instructions")

	stats, ok := decoded[0]["signal_stats"].([]any)
	require.True(t, ok)
	require.Len(t, stats, 1)
	stat := stats[0].(map[string]any)
	assert.Equal(t, "Suspicious Login", stat["signal_name"])
	assert.Equal(t, "target", stat["role"])
	assert.Equal(t, 1, stat["total_seen_count"])
	assert.Equal(t, 1, stat["benign_count"])
	// Empty score lists serialize as null averages.
	assert.Nil(t, stat["avg_likelihood"])
	assert.Nil(t, stat["avg_confidence"])
	assert.Nil(t, stat["avg_impact_score"])
}

func TestWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "entity_tribal_knowledge.yaml")

	acc := NewAccumulator(testResolver())
	acc.AddCase(casefile.CaseRecord{
		TicketID: "INC-1",
		Signals:  []casefile.Signal{loginSignal("target.user.id", "jdoe")},
	})

	require.NoError(t, WriteFile(outPath, acc.Finalize()))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "entity_id: jdoe")
}

func TestWriteFile_BadPath(t *testing.T) {
	acc := NewAccumulator(testResolver())
	err := WriteFile("/nonexistent/dir/out.yaml", acc.Finalize())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/dir/out.yaml")
}

package casefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCaseFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFiles_ConcatenatesInOrder(t *testing.T) {
	tmpDir := t.TempDir()

	first := writeCaseFile(t, tmpDir, "part_1.json", `[
  {"ticket_id": "INC-1", "closure_reason": "Benign"},
  {"ticket_id": "INC-2"}
]`)
	second := writeCaseFile(t, tmpDir, "part_2.json", `[
  {"ticket_id": "INC-3", "closure_reason": "Malicious"}
]`)

	cases, err := LoadFiles(first, second)
	require.NoError(t, err)
	require.Len(t, cases, 3)

	assert.Equal(t, "INC-1", cases[0].TicketID)
	assert.Equal(t, "Benign", cases[0].ClosureReason)
	assert.Equal(t, "INC-2", cases[1].TicketID)
	assert.Empty(t, cases[1].ClosureReason)
	assert.Equal(t, "INC-3", cases[2].TicketID)
}

func TestLoadFiles_MissingFileIsFatal(t *testing.T) {
	tmpDir := t.TempDir()
	good := writeCaseFile(t, tmpDir, "good.json", `[]`)

	_, err := LoadFiles(good, filepath.Join(tmpDir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestLoadFiles_InvalidJSONIsFatal(t *testing.T) {
	tmpDir := t.TempDir()
	bad := writeCaseFile(t, tmpDir, "bad.json", `{not json`)

	_, err := LoadFiles(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestLoadFiles_SkipsNonObjectElements(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeCaseFile(t, tmpDir, "mixed.json", `[
  {"ticket_id": "INC-1"},
  "stray string",
  42,
  {"ticket_id": "INC-2"}
]`)

	cases, err := LoadFiles(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "INC-1", cases[0].TicketID)
	assert.Equal(t, "INC-2", cases[1].TicketID)
}

func TestLoadFiles_FullRecordShape(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeCaseFile(t, tmpDir, "case.json", `[
  {
    "ticket_id": 1001,
    "closure_reason": "Benign",
    "notes": [
      {"note_text": "  confirmed maintenance window  "},
      {"note_text": ""},
      {"unrelated": true},
      "stray"
    ],
    "correlated_signals": [
      {
        "signal_name": "Suspicious Login",
        "mitre_tactic": "Initial Access",
        "mitre_technique": "T1078",
        "securityResult.summary": ["vpn login from new location"],
        "signal_createdTime": "2024-06-10T12:00:00Z",
        "score_likelihood": 0.7,
        "score_confidence": 80,
        "score_impact": "high",
        "signal_id": 555,
        "associated_signal_entities": {
          "target.user.id": ["JDOE"],
          "source.ip": [],
          "target.asset.id": [101, {"nested": true}, null]
        }
      },
      "not a signal"
    ]
  }
]`)

	cases, err := LoadFiles(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	rec := cases[0]
	// Numeric ticket ids are preserved as numbers.
	if id, ok := AsInt(rec.TicketID); assert.True(t, ok) {
		assert.Equal(t, int64(1001), id)
	}
	assert.Equal(t, []string{"confirmed maintenance window"}, rec.ResolutionNotes)
	require.Len(t, rec.Signals, 1)

	sig := rec.Signals[0]
	assert.Equal(t, "Suspicious Login", sig.SignalName)
	require.NotNil(t, sig.MitreTactic)
	assert.Equal(t, "Initial Access", *sig.MitreTactic)
	require.NotNil(t, sig.MitreTechnique)
	assert.Equal(t, "T1078", *sig.MitreTechnique)

	if id, ok := AsInt(sig.SignalID); assert.True(t, ok) {
		assert.Equal(t, int64(555), id)
	}

	if f, ok := AsFloat(sig.ScoreLikelihood); assert.True(t, ok) {
		assert.InDelta(t, 0.7, f, 1e-9)
	}
	if f, ok := AsFloat(sig.ScoreConfidence); assert.True(t, ok) {
		assert.InDelta(t, 80, f, 1e-9)
	}
	_, ok := AsFloat(sig.ScoreImpact)
	assert.False(t, ok, "non-numeric score must be treated as absent")

	assert.Equal(t, []string{"JDOE"}, sig.AssociatedEntities["target.user.id"])
	assert.Empty(t, sig.AssociatedEntities["source.ip"])
	// Scalar non-strings are stringified, nested values dropped.
	assert.Equal(t, []string{"101"}, sig.AssociatedEntities["target.asset.id"])
}

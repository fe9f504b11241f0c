package tribal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
)

func TestNormalizeSignal_SummaryUnwrap(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"single-element list", []any{"vpn login"}, "vpn login"},
		{"multi-element list takes first", []any{"first", "second"}, "first"},
		{"empty list", []any{}, nil},
		{"scalar passes through", "plain summary", "plain summary"},
		{"nil stays nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm := NormalizeSignal(casefile.Signal{SecuritySummary: tt.in})
			assert.Equal(t, tt.want, norm.Summary)
		})
	}
}

func TestNormalizeSignal_EventTime(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"zulu suffix dropped", "2024-06-10T12:00:00Z", "2024-06-10T12:00:00"},
		{"explicit offset dropped", "2024-06-10T12:00:00+05:30", "2024-06-10T12:00:00"},
		{"fractional seconds truncated", "2024-06-10T12:00:00.123456Z", "2024-06-10T12:00:00"},
		{"already canonical", "2024-06-10T12:00:00", "2024-06-10T12:00:00"},
		{"date only", "2024-06-10", "2024-06-10T00:00:00"},
		{"unparseable passes through", "not-a-date", "not-a-date"},
		{"empty string passes through", "", ""},
		{"nil passes through", nil, nil},
		{"non-string passes through", json.Number("1718020800"), json.Number("1718020800")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm := NormalizeSignal(casefile.Signal{CreatedTime: tt.in})
			assert.Equal(t, tt.want, norm.EventTime)
		})
	}
}

func TestNormalizeSignal_Scores(t *testing.T) {
	norm := NormalizeSignal(casefile.Signal{
		ScoreLikelihood: json.Number("0.7"),
		ScoreConfidence: json.Number("80"),
		ScoreImpact:     "high",
	})

	require.NotNil(t, norm.Likelihood)
	assert.InDelta(t, 0.7, *norm.Likelihood, 1e-9)
	require.NotNil(t, norm.Confidence)
	assert.InDelta(t, 80, *norm.Confidence, 1e-9)
	assert.Nil(t, norm.Impact, "non-numeric score is absent for averaging")
}

func TestNormalizeSignal_NeverFails(t *testing.T) {
	// A thoroughly malformed signal still normalizes to something.
	norm := NormalizeSignal(casefile.Signal{
		SecuritySummary: map[string]any{"weird": true},
		CreatedTime:     []any{"nested"},
		ScoreLikelihood: []any{1},
	})

	assert.Equal(t, map[string]any{"weird": true}, norm.Summary)
	assert.Equal(t, []any{"nested"}, norm.EventTime)
	assert.Nil(t, norm.Likelihood)
}

func TestHasEventTime(t *testing.T) {
	assert.False(t, hasEventTime(nil))
	assert.False(t, hasEventTime(""))
	assert.True(t, hasEventTime("2024-06-10T12:00:00"))
	assert.True(t, hasEventTime("not-a-date"))
}

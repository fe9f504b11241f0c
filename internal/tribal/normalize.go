// Package tribal folds case records into the per-entity knowledge base.
// The fold is a single in-memory pass: normalize each correlated signal,
// resolve entity identity and type, accumulate running statistics, then
// finalize into the output document shape.
package tribal

import (
	"time"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
)

// NormalizedSignal is the per-signal view the aggregator consumes.
// Normalization is total: every input, however malformed, produces some
// value here, never an error.
type NormalizedSignal struct {
	// Summary is the unwrapped security summary: first element of a
	// non-empty list, the scalar itself, or nil.
	Summary any

	// EventTime is the canonical YYYY-MM-DDTHH:MM:SS string when the
	// raw timestamp parses, otherwise the raw value passed through
	// unchanged (including nil).
	EventTime any

	Likelihood *float64
	Confidence *float64
	Impact     *float64
}

// eventTimeLayouts are tried in order. RFC3339 covers the trailing-Z and
// explicit-offset forms the upstream producers emit most often.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// canonicalEventTime is the output timestamp form. The timezone
// designator is dropped on purpose; downstream consumers treat event
// times as naive.
const canonicalEventTime = "2006-01-02T15:04:05"

// NormalizeSignal extracts the normalized view of one raw signal.
func NormalizeSignal(sig casefile.Signal) NormalizedSignal {
	return NormalizedSignal{
		Summary:    unwrapSummary(sig.SecuritySummary),
		EventTime:  formatEventTime(sig.CreatedTime),
		Likelihood: numericScore(sig.ScoreLikelihood),
		Confidence: numericScore(sig.ScoreConfidence),
		Impact:     numericScore(sig.ScoreImpact),
	}
}

func unwrapSummary(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func formatEventTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalEventTime)
		}
	}
	return s
}

func numericScore(v any) *float64 {
	if f, ok := casefile.AsFloat(v); ok {
		return &f
	}
	return nil
}

// hasEventTime reports whether a normalized event time can key a
// timeline entry. Nil and empty-string values cannot.
func hasEventTime(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

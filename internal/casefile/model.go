// Package casefile models investigated case records and their correlated
// signals. Case documents arrive as loosely-typed JSON; every field that
// the upstream producers emit inconsistently is carried as a dynamic value
// and converted with total coercion helpers. Nothing is rejected at the
// record level: malformed fields degrade to zero values.
package casefile

import (
	"encoding/json"
	"strings"
)

// CaseRecord is one investigated ticket. Read-only once loaded.
type CaseRecord struct {
	// TicketID is opaque upstream: string, number, or absent. A missing
	// id is carried as nil and still grouped.
	TicketID        any
	ClosureReason   string
	ResolutionNotes []string
	Signals         []Signal
}

// Signal is a single correlated detection attached to a case.
type Signal struct {
	SignalName     string
	MitreTactic    *string
	MitreTechnique *string

	// SecuritySummary may be a scalar or a single-element list; the
	// normalizer unwraps it.
	SecuritySummary any

	// CreatedTime is the raw signal_createdTime value. It may be a
	// malformed timestamp or not a string at all; it is retained
	// verbatim either way.
	CreatedTime any

	ScoreLikelihood any
	ScoreConfidence any
	ScoreImpact     any

	// SignalID keys individual timeline events and is only used when
	// it is an integer.
	SignalID any

	// AssociatedEntities maps association-field name to the raw
	// entity-identifier strings observed under it.
	AssociatedEntities map[string][]string
}

// FromMap converts a decoded case document into a CaseRecord. Every
// access point degrades to a zero value when the document is missing or
// mistypes a field; this function never fails.
func FromMap(doc map[string]any) CaseRecord {
	rec := CaseRecord{
		TicketID:      doc["ticket_id"],
		ClosureReason: asString(doc["closure_reason"]),
	}

	for _, n := range asList(doc["notes"]) {
		note, ok := n.(map[string]any)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(asString(note["note_text"])); text != "" {
			rec.ResolutionNotes = append(rec.ResolutionNotes, text)
		}
	}

	for _, s := range asList(doc["correlated_signals"]) {
		sig, ok := s.(map[string]any)
		if !ok {
			continue
		}
		rec.Signals = append(rec.Signals, signalFromMap(sig))
	}

	return rec
}

func signalFromMap(doc map[string]any) Signal {
	return Signal{
		SignalName:         asString(doc["signal_name"]),
		MitreTactic:        asStringPtr(doc["mitre_tactic"]),
		MitreTechnique:     asStringPtr(doc["mitre_technique"]),
		SecuritySummary:    doc["securityResult.summary"],
		CreatedTime:        doc["signal_createdTime"],
		ScoreLikelihood:    doc["score_likelihood"],
		ScoreConfidence:    doc["score_confidence"],
		ScoreImpact:        doc["score_impact"],
		SignalID:           doc["signal_id"],
		AssociatedEntities: asEntityMap(doc["associated_signal_entities"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// asEntityMap coerces the associated-entities document. Scalar values
// inside the lists are kept (numbers are stringified); nested structures
// and nulls are skipped.
func asEntityMap(v any) map[string][]string {
	doc, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string][]string, len(doc))
	for field, raw := range doc {
		values := make([]string, 0)
		for _, item := range asList(raw) {
			switch t := item.(type) {
			case string:
				values = append(values, t)
			case json.Number:
				values = append(values, t.String())
			}
		}
		out[field] = values
	}
	return out
}

// AsFloat reports a value's numeric reading. Integers and floating-point
// numbers qualify; everything else (including numeric strings) does not.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// AsInt reports whether a value is an integer. A JSON number written
// with a fraction or exponent (e.g. 5.0, 1e3) is a float upstream and
// does not qualify, matching the producers' type discipline.
func AsInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			return 0, false
		}
		n, err := t.Int64()
		return n, err == nil
	case int:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

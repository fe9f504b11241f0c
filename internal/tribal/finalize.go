package tribal

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// EntityDocument is the finalized, immutable per-entity output shape.
type EntityDocument struct {
	EntityID           string              `yaml:"entity_id"`
	EntityType         string              `yaml:"entity_type"`
	SourceTickets      []any               `yaml:"source_tickets"`
	SignalStats        []SignalStatDoc     `yaml:"signal_stats"`
	SummaryInsights    SummaryInsights     `yaml:"summary_insights"`
	PolicyInstructions []PolicyInstruction `yaml:"policy_instructions"`
}

// SignalStatDoc is one finalized (signal, role) statistical context.
type SignalStatDoc struct {
	SignalName      string        `yaml:"signal_name"`
	Role            string        `yaml:"role"`
	Tactic          *string       `yaml:"tactic"`
	Technique       *string       `yaml:"technique"`
	SecuritySummary any           `yaml:"security_summary"`
	SignalEvents    []SignalEvent `yaml:"signal_events"`
	TotalSeenCount  int           `yaml:"total_seen_count"`
	BenignCount     int           `yaml:"benign_count"`
	BenignRatio     float64       `yaml:"benign_ratio"`
	AvgLikelihood   *float64      `yaml:"avg_likelihood"`
	AvgConfidence   *float64      `yaml:"avg_confidence"`
	AvgImpactScore  *float64      `yaml:"avg_impact_score"`
}

// SummaryInsights is an extension block reserved for analyst annotation.
// Emitted empty with a fixed shape.
type SummaryInsights struct {
	BehavioralPatterns []string `yaml:"behavioral_patterns"`
	AnalystConsensus   string   `yaml:"analyst_consensus"`
}

// PolicyInstruction is an extension block reserved for downstream policy
// authoring. One empty placeholder entry is emitted per entity.
type PolicyInstruction struct {
	PolicyDirective string `yaml:"policy_directive"`
	CreatedBy       string `yaml:"created_by"`
	CreatedAt       string `yaml:"created_at"`
}

// Finalize converts the accumulated state into output documents. Entity
// documents are sorted by entity id so runs over the same input diff
// cleanly; each entity's signal stats keep their encounter order.
func (a *Accumulator) Finalize() []EntityDocument {
	keys := make([]string, 0, len(a.profiles))
	for k := range a.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]EntityDocument, 0, len(keys))
	for _, key := range keys {
		docs = append(docs, finalizeProfile(key, a.profiles[key]))
	}
	return docs
}

func finalizeProfile(key string, p *profile) EntityDocument {
	stats := make([]SignalStatDoc, 0, len(p.statOrder))
	for _, sk := range p.statOrder {
		stat := p.stats[sk]
		doc := SignalStatDoc{
			SignalName:      sk.signal,
			Role:            sk.role,
			Tactic:          stat.tactic,
			Technique:       stat.technique,
			SecuritySummary: plainValue(stat.summary),
			SignalEvents:    plainEvents(stat.events),
			TotalSeenCount:  stat.totalSeen,
			BenignCount:     stat.benignCount,
			// A stat entry is only created on first appearance, so
			// totalSeen > 0 here by construction.
			BenignRatio:    round2(float64(stat.benignCount) / float64(stat.totalSeen)),
			AvgLikelihood:  mean2(stat.likelihoods),
			AvgConfidence:  mean2(stat.confidences),
			AvgImpactScore: mean2(stat.impacts),
		}
		stats = append(stats, doc)
	}

	return EntityDocument{
		EntityID:      key,
		EntityType:    p.entityType,
		SourceTickets: sortedTickets(p.tickets),
		SignalStats:   stats,
		SummaryInsights: SummaryInsights{
			BehavioralPatterns: []string{},
			AnalystConsensus:   "",
		},
		PolicyInstructions: []PolicyInstruction{{}},
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// mean2 returns the arithmetic mean rounded to 2 decimals, or nil for an
// empty list.
func mean2(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := round2(sum / float64(len(xs)))
	return &m
}

// sortedTickets orders ticket ids ascending for reproducible output:
// nil first, then numbers by value, then strings lexically.
func sortedTickets(tickets map[string]any) []any {
	out := make([]any, 0, len(tickets))
	for _, id := range tickets {
		out = append(out, plainValue(id))
	}
	sort.Slice(out, func(i, j int) bool {
		return ticketLess(out[i], out[j])
	})
	return out
}

func ticketLess(a, b any) bool {
	ra, rb := ticketRank(a), ticketRank(b)
	if ra != rb {
		return ra < rb
	}
	switch ra {
	case 1:
		fa, _ := numberValue(a)
		fb, _ := numberValue(b)
		return fa < fb
	case 2:
		return a.(string) < b.(string)
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func ticketRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int64, float64:
		return 1
	case string:
		return 2
	}
	return 3
}

func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// plainValue rewrites json.Number leaves into int64/float64 so the YAML
// encoder emits them as numbers, not strings.
func plainValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func plainEvents(events []SignalEvent) []SignalEvent {
	out := make([]SignalEvent, len(events))
	for i, e := range events {
		out[i] = SignalEvent{SignalID: e.SignalID, EventTime: plainValue(e.EventTime)}
	}
	return out
}

package tribal

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
	"github.com/telhawk-systems/tribalkb/internal/entitymap"
)

// EntityKey normalizes a raw entity identifier: surrounding whitespace
// trimmed, lower-cased. Two raw strings differing only by case or
// whitespace collapse to the same entity.
func EntityKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// statKey identifies one statistical context. The same signal may
// implicate an entity as both source and target of a detection; those
// are tracked as distinct contexts, so the key is the (name, role) pair.
type statKey struct {
	signal string
	role   string
}

// signalStat accumulates one entity's running statistics for a
// (signal, role) context. Descriptors (tactic, technique, summary) are
// first-seen and never overwritten; counts and lists grow per
// appearance.
type signalStat struct {
	tactic    *string
	technique *string
	summary   any

	events      []SignalEvent
	totalSeen   int
	benignCount int

	likelihoods []float64
	confidences []float64
	impacts     []float64
}

// profile accumulates everything observed for one entity key.
// entityType is last-write-wins across encounters, unlike the
// first-seen stat descriptors; that asymmetry is deliberate.
type profile struct {
	entityType string

	// tickets and patterns are genuine sets; order is irrelevant and
	// duplicates are dropped. tickets keeps the original id value so
	// numeric ids survive to the output.
	tickets  map[string]any
	patterns map[string]struct{}

	stats     map[statKey]*signalStat
	statOrder []statKey
}

// SignalEvent is one timeline entry, appended in encounter order. An
// entry is only recorded when the signal carries both a usable event
// time and an integer signal id.
type SignalEvent struct {
	SignalID  int64 `yaml:"signal_id"`
	EventTime any   `yaml:"event_time"`
}

// Accumulator is the aggregation state for a run. It is an explicit
// object, not package state, and is not safe for concurrent use: the
// whole run is one synchronous pass.
type Accumulator struct {
	resolver *entitymap.Resolver
	profiles map[string]*profile

	casesSeen   int
	signalsSeen int
}

// NewAccumulator creates an empty accumulator using the given resolver
// for association-field typing.
func NewAccumulator(resolver *entitymap.Resolver) *Accumulator {
	return &Accumulator{
		resolver: resolver,
		profiles: make(map[string]*profile),
	}
}

// AddCases folds a batch of case records in order.
func (a *Accumulator) AddCases(recs []casefile.CaseRecord) {
	for _, rec := range recs {
		a.AddCase(rec)
	}
}

// AddCase folds one case record into the accumulator. This never fails:
// missing or malformed fields degrade to safe defaults upstream and are
// absorbed here.
func (a *Accumulator) AddCase(rec casefile.CaseRecord) {
	a.casesSeen++

	benign := strings.EqualFold(strings.TrimSpace(rec.ClosureReason), "benign")

	for _, sig := range rec.Signals {
		a.signalsSeen++
		norm := NormalizeSignal(sig)

		// Go maps do not preserve document order, so association
		// fields are walked in sorted name order; stat encounter
		// order stays deterministic for identical inputs.
		fields := make([]string, 0, len(sig.AssociatedEntities))
		for f := range sig.AssociatedEntities {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		for _, field := range fields {
			values := sig.AssociatedEntities[field]
			if len(values) == 0 {
				continue
			}

			role, _, found := strings.Cut(field, ".")
			if !found {
				role = field
			}
			entityType := a.resolver.Resolve(field)

			for _, raw := range values {
				a.addAppearance(EntityKey(raw), entityType, rec, sig, norm, role, benign)
			}
		}
	}
}

func (a *Accumulator) addAppearance(key, entityType string, rec casefile.CaseRecord, sig casefile.Signal, norm NormalizedSignal, role string, benign bool) {
	p, ok := a.profiles[key]
	if !ok {
		p = &profile{
			tickets:  make(map[string]any),
			patterns: make(map[string]struct{}),
			stats:    make(map[statKey]*signalStat),
		}
		a.profiles[key] = p
	}

	p.entityType = entityType
	p.tickets[ticketSetKey(rec.TicketID)] = rec.TicketID
	for _, note := range rec.ResolutionNotes {
		p.patterns[note] = struct{}{}
	}

	sk := statKey{signal: sig.SignalName, role: role}
	stat, ok := p.stats[sk]
	if !ok {
		stat = &signalStat{
			tactic:    sig.MitreTactic,
			technique: sig.MitreTechnique,
			summary:   norm.Summary,
		}
		p.stats[sk] = stat
		p.statOrder = append(p.statOrder, sk)
	}

	stat.totalSeen++
	if benign {
		stat.benignCount++
	}

	if id, ok := casefile.AsInt(sig.SignalID); ok && hasEventTime(norm.EventTime) {
		stat.events = append(stat.events, SignalEvent{
			SignalID:  id,
			EventTime: norm.EventTime,
		})
	}

	if norm.Likelihood != nil {
		stat.likelihoods = append(stat.likelihoods, *norm.Likelihood)
	}
	if norm.Confidence != nil {
		stat.confidences = append(stat.confidences, *norm.Confidence)
	}
	if norm.Impact != nil {
		stat.impacts = append(stat.impacts, *norm.Impact)
	}
}

// EntityCount returns the number of distinct entities accumulated.
func (a *Accumulator) EntityCount() int { return len(a.profiles) }

// CasesSeen returns the number of case records folded.
func (a *Accumulator) CasesSeen() int { return a.casesSeen }

// SignalsSeen returns the number of correlated signals walked.
func (a *Accumulator) SignalsSeen() int { return a.signalsSeen }

// ticketSetKey gives a set key that keeps string and numeric ids with
// the same text distinct, the way the upstream producers treat them.
func ticketSetKey(id any) string {
	switch t := id.(type) {
	case nil:
		return "nil|"
	case string:
		return "str|" + t
	case json.Number:
		return "num|" + t.String()
	default:
		return fmt.Sprintf("%T|%v", t, t)
	}
}

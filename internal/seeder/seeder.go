// Package seeder generates synthetic case-record files for development
// and testing. Generated documents use the same loose shapes the real
// upstream producers emit, including single-element summary lists and
// the occasional missing field.
package seeder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/telhawk-systems/tribalkb/internal/entitymap"
)

// Config controls generation.
type Config struct {
	Cases       int
	Files       int
	MaxSignals  int
	MaxEntities int
	TimeSpread  time.Duration
	OutDir      string
	Seed        int64
}

// DefaultConfig returns sensible generation defaults.
func DefaultConfig() Config {
	return Config{
		Cases:       200,
		Files:       4,
		MaxSignals:  4,
		MaxEntities: 3,
		TimeSpread:  30 * 24 * time.Hour,
		OutDir:      ".",
	}
}

var closureReasons = []string{"Benign", "Malicious", "False Positive", "Duplicate", ""}

var detections = []struct {
	name      string
	tactic    string
	technique string
}{
	{"Suspicious Login", "Initial Access", "T1078"},
	{"Brute Force Attempt", "Credential Access", "T1110"},
	{"Malicious PowerShell", "Execution", "T1059.001"},
	{"Scheduled Task Created", "Persistence", "T1053"},
	{"Beaconing Detected", "Command and Control", "T1071"},
	{"Large Outbound Transfer", "Exfiltration", "T1048"},
	{"Admin Group Change", "Privilege Escalation", "T1098"},
}

// Run generates cfg.Cases case records spread over cfg.Files JSON files
// and returns the written paths.
func Run(cfg Config, resolver *entitymap.Resolver) ([]string, error) {
	if cfg.Cases <= 0 || cfg.Files <= 0 {
		return nil, fmt.Errorf("cases and files must be positive")
	}

	faker := gofakeit.New(cfg.Seed)
	fields := allFields(resolver)
	if len(fields) == 0 {
		return nil, fmt.Errorf("entity map has no association fields to seed from")
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", cfg.OutDir, err)
	}

	perFile := (cfg.Cases + cfg.Files - 1) / cfg.Files
	start := time.Now().Add(-cfg.TimeSpread)

	var paths []string
	caseNum := 0
	for fileIdx := 0; fileIdx < cfg.Files && caseNum < cfg.Cases; fileIdx++ {
		var docs []map[string]any
		for i := 0; i < perFile && caseNum < cfg.Cases; i++ {
			docs = append(docs, generateCase(faker, cfg, fields, start, caseNum))
			caseNum++
		}

		path := filepath.Join(cfg.OutDir, fmt.Sprintf("seeded_cases_part_%d.json", fileIdx+1))
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal case file: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write case file %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func generateCase(faker *gofakeit.Faker, cfg Config, fields []string, start time.Time, caseNum int) map[string]any {
	doc := map[string]any{
		"ticket_id":      fmt.Sprintf("INC-%06d", caseNum+1),
		"closure_reason": closureReasons[faker.Number(0, len(closureReasons)-1)],
	}

	if faker.Bool() {
		doc["notes"] = []map[string]any{
			{"note_text": faker.Sentence(8)},
		}
	}

	signalCount := faker.Number(1, max(cfg.MaxSignals, 1))
	signals := make([]map[string]any, 0, signalCount)
	for s := 0; s < signalCount; s++ {
		signals = append(signals, generateSignal(faker, cfg, fields, start))
	}
	doc["correlated_signals"] = signals
	return doc
}

func generateSignal(faker *gofakeit.Faker, cfg Config, fields []string, start time.Time) map[string]any {
	det := detections[faker.Number(0, len(detections)-1)]

	jitter := time.Duration(faker.Number(0, int(cfg.TimeSpread/time.Second))) * time.Second
	created := start.Add(jitter).UTC().Format("2006-01-02T15:04:05Z")

	sig := map[string]any{
		"signal_name":           det.name,
		"mitre_tactic":          det.tactic,
		"mitre_technique":       det.technique,
		"signal_createdTime":    created,
		"signal_id":             faker.Number(10000, 99999),
		"score_likelihood":      round2(faker.Float64Range(0, 1)),
		"score_confidence":      faker.Number(1, 100),
		"associated_signal_entities": generateEntities(faker, cfg, fields),
	}

	// Producers wrap the summary in a single-element list most of the
	// time, but not always.
	summary := faker.Sentence(10)
	if faker.Number(0, 3) > 0 {
		sig["securityResult.summary"] = []string{summary}
	} else {
		sig["securityResult.summary"] = summary
	}

	// Impact is frequently unrated upstream.
	if faker.Bool() {
		sig["score_impact"] = faker.Number(1, 100)
	}
	return sig
}

func generateEntities(faker *gofakeit.Faker, cfg Config, fields []string) map[string][]string {
	count := faker.Number(1, max(cfg.MaxEntities, 1))
	entities := make(map[string][]string, count)
	for i := 0; i < count; i++ {
		field := fields[faker.Number(0, len(fields)-1)]
		entities[field] = append(entities[field], valueForField(faker, field))
	}
	return entities
}

// valueForField picks a plausible identifier for an association field
// based on its name.
func valueForField(faker *gofakeit.Faker, field string) string {
	lower := strings.ToLower(field)
	switch {
	case strings.Contains(lower, "email"):
		return faker.Email()
	case strings.Contains(lower, ".ip") || strings.HasSuffix(lower, "ip"):
		return faker.IPv4Address()
	case strings.Contains(lower, "host") || strings.Contains(lower, "domain"):
		return faker.DomainName()
	case strings.Contains(lower, "user"):
		return faker.Username()
	case strings.Contains(lower, "hash"):
		return faker.UUID()
	default:
		return uuid.NewString()
	}
}

func allFields(resolver *entitymap.Resolver) []string {
	var fields []string
	for _, t := range resolver.Types() {
		fields = append(fields, resolver.FieldsFor(t)...)
	}
	return fields
}

func round2(f float64) float64 {
	return float64(int(f*100)) / 100
}

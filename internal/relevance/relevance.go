// Package relevance joins current-period signal rows against a 180-day
// historical user-activity dump and labels each pairing whose tactics
// form a meaningful progression. This is a filter-join batch job,
// separate from the knowledge-base fold.
package relevance

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/telhawk-systems/tribalkb/internal/entitymap"
)

// Column names shared by the current and historical signal dumps.
const (
	colAlertID   = "alertId"
	colEventTime = "security.events.metadata.eventTimestamp"
	colSummary   = "security.events.securityResult.summary"
	colTactic    = "alertCategory"
	colUserID    = "security.events.target.user.userid"
	colEmail     = "security.events.target.user.emailAddresses"
)

// userEntityType is the entity-map label whose fields identify users.
const userEntityType = "User"

// DefaultChunkSize bounds how many current rows are joined per batch.
// Chunking is a memory bound, not a correctness requirement.
const DefaultChunkSize = 500

// Row is one signal occurrence from either dataset.
type Row struct {
	AlertID   string
	Tactic    string
	Summary   string
	UserID    string
	Email     string
	EventTime time.Time
	TimeValid bool
}

// UserKey derives the join key: user id, falling back to email.
func (r Row) UserKey() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.Email
}

// Match is one flattened relevant pairing.
type Match struct {
	CurrentAlertID    string
	CurrentTactic     string
	CurrentSummary    string
	HistoricalAlertID string
	HistoricalTactic  string
	HistoricalSummary string
	Reason            string
	UserKey           string
}

// Job runs the historical relevance analysis.
type Job struct {
	Resolver  *entitymap.Resolver
	ChunkSize int
}

// Run reads both CSV dumps, joins them, and writes the relevant
// pairings to outputPath. It returns the number of matches written.
// Input loading is all-or-nothing: unreadable or malformed sources fail
// the run with the offending path.
func (j *Job) Run(signalsPath, historicalPath, outputPath string) (int, error) {
	current, err := readTable(signalsPath)
	if err != nil {
		return 0, err
	}
	historical, err := readTable(historicalPath)
	if err != nil {
		return 0, err
	}

	userFields := j.Resolver.FieldsFor(userEntityType)
	entities := current.uniqueValues(userFields)
	filtered := historical.filterByValues(userFields, entities)

	currentRows, err := rowsFrom(current, current.rows, signalsPath)
	if err != nil {
		return 0, err
	}
	historicalRows, err := rowsFrom(historical, filtered, historicalPath)
	if err != nil {
		return 0, err
	}

	matches := j.MatchRows(currentRows, historicalRows)
	if err := writeMatches(outputPath, matches); err != nil {
		return 0, err
	}
	return len(matches), nil
}

// MatchRows joins current rows against historical rows on the derived
// user key, keeping pairs whose historical event is strictly earlier and
// whose tactics are relevant. Rows without a parseable timestamp or a
// user key never pair.
func (j *Job) MatchRows(current, historical []Row) []Match {
	byUser := make(map[string][]Row)
	for _, h := range historical {
		key := h.UserKey()
		if key == "" {
			continue
		}
		byUser[key] = append(byUser[key], h)
	}

	chunkSize := j.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var matches []Match
	for start := 0; start < len(current); start += chunkSize {
		end := start + chunkSize
		if end > len(current) {
			end = len(current)
		}

		for _, cur := range current[start:end] {
			key := cur.UserKey()
			if key == "" || !cur.TimeValid {
				continue
			}
			for _, hist := range byUser[key] {
				if !hist.TimeValid || !hist.EventTime.Before(cur.EventTime) {
					continue
				}
				reason, ok := relevanceReason(hist.Tactic, cur.Tactic)
				if !ok {
					continue
				}
				matches = append(matches, Match{
					CurrentAlertID:    cur.AlertID,
					CurrentTactic:     cur.Tactic,
					CurrentSummary:    cur.Summary,
					HistoricalAlertID: hist.AlertID,
					HistoricalTactic:  hist.Tactic,
					HistoricalSummary: hist.Summary,
					Reason:            reason,
					UserKey:           key,
				})
			}
		}
	}
	return matches
}

// table is a header-indexed CSV dataset.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return &table{columns: map[string]int{}}, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	return &table{columns: columns, rows: records[1:]}, nil
}

func (t *table) value(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// uniqueValues collects the distinct non-empty values under whichever of
// the given columns exist in this table.
func (t *table) uniqueValues(columns []string) map[string]struct{} {
	values := make(map[string]struct{})
	for _, col := range columns {
		if _, ok := t.columns[col]; !ok {
			continue
		}
		for _, row := range t.rows {
			if v := t.value(row, col); v != "" {
				values[v] = struct{}{}
			}
		}
	}
	return values
}

// filterByValues keeps rows where any of the given columns holds one of
// the wanted values, deduplicating identical rows.
func (t *table) filterByValues(columns []string, wanted map[string]struct{}) [][]string {
	var out [][]string
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		for _, col := range columns {
			if _, ok := t.columns[col]; !ok {
				continue
			}
			v := t.value(row, col)
			if _, ok := wanted[v]; !ok || v == "" {
				continue
			}
			key := strings.Join(row, "\x1f")
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, row)
			}
			break
		}
	}
	return out
}

// eventTimeLayouts mirrors the flexible timestamp parsing of the
// upstream dumps.
var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func rowsFrom(t *table, raw [][]string, path string) ([]Row, error) {
	for _, required := range []string{colAlertID, colEventTime, colSummary, colTactic, colUserID, colEmail} {
		if _, ok := t.columns[required]; !ok {
			return nil, fmt.Errorf("csv %s: missing required column %q", path, required)
		}
	}

	rows := make([]Row, 0, len(raw))
	for _, rec := range raw {
		row := Row{
			AlertID: t.value(rec, colAlertID),
			Tactic:  t.value(rec, colTactic),
			Summary: t.value(rec, colSummary),
			UserID:  t.value(rec, colUserID),
			Email:   t.value(rec, colEmail),
		}
		if ts, ok := parseEventTime(t.value(rec, colEventTime)); ok {
			row.EventTime = ts
			row.TimeValid = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseEventTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func writeMatches(path string, matches []Match) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"current_alertId", "current_tactic", "current_summary",
		"historical_alertId", "historical_tactic", "historical_summary",
		"relevance_reason", "user_key",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write output file %s: %w", path, err)
	}
	for _, m := range matches {
		record := []string{
			m.CurrentAlertID, m.CurrentTactic, m.CurrentSummary,
			m.HistoricalAlertID, m.HistoricalTactic, m.HistoricalSummary,
			m.Reason, m.UserKey,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write output file %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write output file %s: %w", path, err)
	}
	return f.Close()
}

package casefile

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFiles parses each path as a JSON array of case documents and
// concatenates the results in argument order. Loading is all-or-nothing:
// an unreadable or unparseable source fails the whole run with the
// offending path in the error. No cross-file deduplication of ticket ids
// is performed.
func LoadFiles(paths ...string) ([]CaseRecord, error) {
	var cases []CaseRecord
	for _, path := range paths {
		recs, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cases = append(cases, recs...)
	}
	return cases, nil
}

func loadFile(path string) ([]CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open case file %s: %w", path, err)
	}
	defer f.Close()

	// UseNumber keeps the integer/float distinction from the source
	// document; timeline events depend on it.
	dec := json.NewDecoder(f)
	dec.UseNumber()

	var docs []any
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("parse case file %s: %w", path, err)
	}

	cases := make([]CaseRecord, 0, len(docs))
	for _, d := range docs {
		doc, ok := d.(map[string]any)
		if !ok {
			// Non-object elements carry no case data; skip rather
			// than fail the load.
			continue
		}
		cases = append(cases, FromMap(doc))
	}
	return cases, nil
}

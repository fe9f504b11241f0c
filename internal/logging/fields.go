package logging

import "log/slog"

// Common field names for consistent logging across commands.
const (
	FieldRunID    = "run_id"
	FieldSource   = "source"
	FieldCases    = "cases"
	FieldSignals  = "signals"
	FieldEntities = "entities"
	FieldMatches  = "matches"
	FieldOutput   = "output"
	FieldDuration = "duration_ms"
	FieldError    = "error"
)

// Source returns a slog attribute for an input source path or index.
func Source(src string) slog.Attr {
	return slog.String(FieldSource, src)
}

// Cases returns a slog attribute for a case-record count.
func Cases(n int) slog.Attr {
	return slog.Int(FieldCases, n)
}

// Signals returns a slog attribute for a correlated-signal count.
func Signals(n int) slog.Attr {
	return slog.Int(FieldSignals, n)
}

// Entities returns a slog attribute for a distinct-entity count.
func Entities(n int) slog.Attr {
	return slog.Int(FieldEntities, n)
}

// Matches returns a slog attribute for a relevance-match count.
func Matches(n int) slog.Attr {
	return slog.Int(FieldMatches, n)
}

// Output returns a slog attribute for an output path.
func Output(path string) slog.Attr {
	return slog.String(FieldOutput, path)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

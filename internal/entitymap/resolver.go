// Package entitymap loads the entity-type mapping that classifies the
// association fields attached to correlated signals. The mapping document
// is keyed by entity-type label (e.g. "User", "Host") with a list of
// association-field names under each type.
package entitymap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// UnknownType is returned for association fields absent from the mapping.
const UnknownType = "unknown"

// Resolver answers "what type of entity does association field X represent?"
// It is built once from the mapping document and is read-only afterwards.
type Resolver struct {
	fieldToType map[string]string
	mapping     map[string][]string
}

// New builds a Resolver by inverting the type→fields mapping.
// A field listed under more than one type resolves to the type loaded
// last; types are loaded in sorted label order so the outcome is
// deterministic. This is last-loaded-wins, not conflict detection.
func New(mapping map[string][]string) *Resolver {
	r := &Resolver{
		fieldToType: make(map[string]string),
		mapping:     make(map[string][]string, len(mapping)),
	}

	types := make([]string, 0, len(mapping))
	for t := range mapping {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		fields := mapping[t]
		r.mapping[t] = append([]string(nil), fields...)
		for _, f := range fields {
			r.fieldToType[f] = t
		}
	}
	return r
}

// Load reads a JSON mapping document from path and builds a Resolver.
func Load(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity map %s: %w", path, err)
	}

	var mapping map[string][]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse entity map %s: %w", path, err)
	}
	return New(mapping), nil
}

// Resolve returns the entity type for an association field, or
// UnknownType when the field is not listed under any type.
func (r *Resolver) Resolve(field string) string {
	if t, ok := r.fieldToType[field]; ok {
		return t
	}
	return UnknownType
}

// FieldsFor returns the association fields registered under a type.
// The result is a copy; callers may not mutate resolver state.
func (r *Resolver) FieldsFor(entityType string) []string {
	return append([]string(nil), r.mapping[entityType]...)
}

// Types returns all entity-type labels in sorted order.
func (r *Resolver) Types() []string {
	types := make([]string, 0, len(r.mapping))
	for t := range r.mapping {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

package internal

import (
	specs "github.com/growthops/rollup/specs"
)

// RawRow wraps a provider row's untyped key/value pairs.
type RawRow struct {
	values map[string]string
}

func NewRawRow(spec specs.RawRowSpec) RawRow {
	values := make(map[string]string, len(spec))
	for key, value := range spec {
		values[key] = value
	}
	return RawRow{values: values}
}

func (r RawRow) Get(key string) (string, bool) {
	val, ok := r.values[key]
	return val, ok
}

func (r RawRow) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r RawRow) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for key := range r.values {
		keys = append(keys, key)
	}
	return keys
}

// Probe returns the first non-empty value among the candidate keys, in order.
// This is the lookup primitive behind field maps: upstream APIs rename keys
// across versions, so every internal field declares several acceptable names.
func (r RawRow) Probe(keys []string) (string, bool) {
	for _, key := range keys {
		if val, ok := r.values[key]; ok && val != "" {
			return val, true
		}
	}
	return "", false
}

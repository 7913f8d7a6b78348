package internal

import (
	"fmt"
	"time"

	specs "github.com/growthops/rollup/specs"
)

// defaultDateFormats covers the known providers: Meta and RD Station report
// plain dates, GA4 reports compact dates, RD Station event feeds report
// RFC 3339 timestamps.
var defaultDateFormats = []string{
	"2006-01-02",
	"20060102",
	time.RFC3339,
}

type NormalizeConfig struct {
	dateKeys    []string
	dateFormats []string
	fields      []FieldMapping
}

func NewNormalizeConfig(spec specs.NormalizeConfigSpec) (NormalizeConfig, error) {
	if len(spec.DateKeys) == 0 {
		return NormalizeConfig{}, fmt.Errorf("at least one date key is required")
	}
	for i, key := range spec.DateKeys {
		if key == "" {
			return NormalizeConfig{}, fmt.Errorf("date key %d is empty", i)
		}
	}

	if len(spec.Fields) == 0 {
		return NormalizeConfig{}, fmt.Errorf("at least one field mapping is required")
	}

	fields := make([]FieldMapping, 0, len(spec.Fields))
	for i, m := range spec.Fields {
		mapping, err := NewFieldMapping(m)
		if err != nil {
			return NormalizeConfig{}, fmt.Errorf("field mapping %d: %w", i, err)
		}
		fields = append(fields, mapping)
	}

	dateFormats := spec.DateFormats
	if len(dateFormats) == 0 {
		dateFormats = defaultDateFormats
	}

	return NormalizeConfig{
		dateKeys:    spec.DateKeys,
		dateFormats: dateFormats,
		fields:      fields,
	}, nil
}

func (c NormalizeConfig) Fields() []FieldMapping {
	return c.fields
}

// ResolveDate probes the configured date keys against a row and parses the
// first non-empty match with the accepted layouts. Failure to resolve a date
// means the row must be excluded, never attributed to the current date.
func (c NormalizeConfig) ResolveDate(row RawRow) (time.Time, error) {
	raw, ok := row.Probe(c.dateKeys)
	if !ok {
		return time.Time{}, fmt.Errorf("no date value under keys %v", c.dateKeys)
	}

	for _, layout := range c.dateFormats {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

type FieldMapping struct {
	field      FieldName
	sourceKeys []string
}

func NewFieldMapping(spec specs.FieldMappingSpec) (FieldMapping, error) {
	field, err := NewFieldName(spec.Field)
	if err != nil {
		return FieldMapping{}, fmt.Errorf("invalid field: %w", err)
	}

	if len(spec.SourceKeys) == 0 {
		return FieldMapping{}, fmt.Errorf("at least one source key is required for field %q", spec.Field)
	}
	for i, key := range spec.SourceKeys {
		if key == "" {
			return FieldMapping{}, fmt.Errorf("source key %d for field %q is empty", i, spec.Field)
		}
	}

	return FieldMapping{
		field:      field,
		sourceKeys: spec.SourceKeys,
	}, nil
}

func (m FieldMapping) Field() FieldName {
	return m.field
}

func (m FieldMapping) SourceKeys() []string {
	return m.sourceKeys
}

// Resolve probes the row for this field and coerces the match to a decimal.
// Missing or unparseable values coerce to zero: one bad number must not
// poison an entire bucket's sum.
func (m FieldMapping) Resolve(row RawRow) Decimal {
	raw, ok := row.Probe(m.sourceKeys)
	if !ok {
		return ZeroDecimal()
	}
	quantity, err := NewDecimal(raw)
	if err != nil {
		return ZeroDecimal()
	}
	return quantity
}

type FieldName struct {
	value string
}

func NewFieldName(value string) (FieldName, error) {
	if value == "" {
		return FieldName{}, fmt.Errorf("field name is required")
	}
	return FieldName{value: value}, nil
}

func (f FieldName) ToString() string {
	return f.value
}

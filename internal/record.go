package internal

import (
	"fmt"
	"time"

	specs "github.com/growthops/rollup/specs"
)

type Record struct {
	Timestamp RecordTimestamp
	Fields    RecordFields
}

func NewRecord(spec specs.RecordSpec) (Record, error) {
	timestamp, err := NewRecordTimestamp(spec.Timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	fields := NewRecordFields()
	for name, value := range spec.Fields {
		if name == "" {
			return Record{}, fmt.Errorf("field name is required")
		}
		quantity, err := NewDecimal(value)
		if err != nil {
			return Record{}, fmt.Errorf("invalid field %q: %w", name, err)
		}
		fields.Set(name, quantity)
	}

	return Record{
		Timestamp: timestamp,
		Fields:    fields,
	}, nil
}

type RecordTimestamp struct {
	value time.Time
}

// NewRecordTimestamp validates and truncates a timestamp to its calendar date
// in UTC. Only the date component carries meaning for bucketing.
func NewRecordTimestamp(value time.Time) (RecordTimestamp, error) {
	if value.IsZero() {
		return RecordTimestamp{}, fmt.Errorf("timestamp is required")
	}
	truncated := time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
	return RecordTimestamp{value: truncated}, nil
}

func (t RecordTimestamp) ToTime() time.Time {
	return t.value
}

type RecordFields struct {
	values map[string]Decimal
}

func NewRecordFields() RecordFields {
	return RecordFields{
		values: make(map[string]Decimal),
	}
}

func (f *RecordFields) Set(name string, value Decimal) {
	f.values[name] = value
}

// Get returns the named field value, or decimal zero when absent.
// Missing fields aggregate as zero so one provider's sparse rows cannot
// poison another field's totals.
func (f RecordFields) Get(name string) Decimal {
	if val, ok := f.values[name]; ok {
		return val
	}
	return ZeroDecimal()
}

func (f RecordFields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f RecordFields) Names() []string {
	names := make([]string, 0, len(f.values))
	for name := range f.values {
		names = append(names, name)
	}
	return names
}

package internal

import (
	"fmt"

	specs "github.com/growthops/rollup/specs"
)

// Normalize implements specs.Normalize.
// Converts specs to domain objects, transforms, and converts back to specs.
func Normalize(rows []specs.RawRowSpec, configSpec specs.NormalizeConfigSpec) (specs.NormalizeResultSpec, error) {
	config, err := NewNormalizeConfig(configSpec)
	if err != nil {
		return specs.NormalizeResultSpec{}, fmt.Errorf("invalid config: %w", err)
	}

	rawRows := make([]RawRow, len(rows))
	for i, row := range rows {
		rawRows[i] = NewRawRow(row)
	}

	records, excluded := normalize(rawRows, config)

	recordSpecs := make([]specs.RecordSpec, len(records))
	for i, record := range records {
		fields := make(map[string]string, len(record.Fields.Names()))
		for _, name := range record.Fields.Names() {
			fields[name] = record.Fields.Get(name).String()
		}
		recordSpecs[i] = specs.RecordSpec{
			Timestamp: record.Timestamp.ToTime(),
			Fields:    fields,
		}
	}

	return specs.NormalizeResultSpec{
		Records:      recordSpecs,
		ExcludedRows: excluded,
	}, nil
}

// normalize converts raw provider rows into Records by applying the field map.
// This is the private domain-level function that operates on domain objects.
//
// For each row:
//  1. Resolve the date by probing the configured date keys
//  2. Rows without a valid date are excluded and counted, never defaulted
//  3. Resolve every mapped field; missing or unparseable values become zero
//
// Returns the normalized records in input order plus the excluded-row count.
func normalize(rows []RawRow, config NormalizeConfig) ([]Record, int) {
	records := make([]Record, 0, len(rows))
	excluded := 0

	for _, row := range rows {
		date, err := config.ResolveDate(row)
		if err != nil {
			excluded++
			continue
		}

		timestamp, err := NewRecordTimestamp(date)
		if err != nil {
			excluded++
			continue
		}

		fields := NewRecordFields()
		for _, mapping := range config.Fields() {
			fields.Set(mapping.Field().ToString(), mapping.Resolve(row))
		}

		records = append(records, Record{
			Timestamp: timestamp,
			Fields:    fields,
		})
	}

	return records, excluded
}

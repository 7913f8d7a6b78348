package specs

import "time"

// RawRowSpec represents one row as returned by an upstream data provider.
//
// Raw rows are the input boundary of the reporting engine. Each provider
// (GA4 Data API, Meta Graph API Insights, RD Station Analytics, or a local
// database listing) returns rows with its own key names and formats, so rows
// are carried as untyped string maps and only acquire meaning once a
// normalization configuration maps provider keys onto internal field names.
//
// All values are strings regardless of their logical type; the normalizer
// performs numeric and date coercion. Providers that return typed JSON should
// stringify values before handing rows to the engine.
type RawRowSpec map[string]string

// RecordSpec represents a normalized, timestamped set of metric values.
//
// Records are produced by applying a normalization configuration to raw rows.
// They are the uniform unit of input for bucketing and aggregation: a calendar
// date plus named numeric fields. One raw row produces at most one record;
// rows whose date cannot be resolved produce none.
type RecordSpec struct {
	// Calendar date this record's values are attributed to.
	//
	// Only the date component is significant; all bucketing is date-based.
	// Time-of-day, if present, is discarded during normalization. Should be
	// in UTC to avoid timezone ambiguity.
	Timestamp time.Time `json:"timestamp"`

	// Named numeric values as decimal strings.
	//
	// Keys are internal field names (e.g., "mql", "sql", "spend", "clicks"),
	// not provider key names. Values are stored as decimal strings to preserve
	// precision across language boundaries and avoid floating-point
	// representation issues. Examples: "42", "230.50", "0".
	Fields map[string]string `json:"fields"`
}

// DateRangeSpec represents an inclusive calendar-date interval [Start, End].
//
// Unlike sub-day time windows, reporting ranges are whole calendar dates:
// both bounds are inclusive and time-of-day components are ignored. A range
// of [2024-01-01, 2024-01-31] covers every record dated within January.
type DateRangeSpec struct {
	// Inclusive first date of the range.
	Start time.Time `json:"start"`

	// Inclusive last date of the range.
	//
	// Must not precede Start. End equal to Start describes a single-day range.
	End time.Time `json:"end"`
}

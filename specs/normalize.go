package specs

// Normalize converts provider rows into uniform timestamped records by applying
// a normalization configuration.
//
// For each raw row:
//  1. Resolve the date by probing the configured date keys in order
//  2. If no date resolves to a valid calendar date, exclude the row and count it
//  3. Resolve each configured field by probing its source keys in order
//  4. Coerce matched values to decimal numbers; unparseable or missing → "0"
//
// Rows are never defaulted to the current date: a row with an unparseable date
// is excluded so it cannot be silently attributed to the wrong period. The
// excluded count is returned so callers can detect upstream data-quality
// regressions.
//
// This is the spec-level interface using only primitive types.
// See internal.Normalize for the reference implementation.
type Normalize func(rows []RawRowSpec, config NormalizeConfigSpec) (NormalizeResultSpec, error)

// NormalizeConfigSpec defines how provider rows map onto internal records.
//
// Upstream APIs rename fields across versions and endpoints, so every internal
// field declares an ordered list of acceptable provider keys; the first key
// present with a non-empty value wins. This configuration is the contract
// boundary that absorbs provider naming differences.
type NormalizeConfigSpec struct {
	// Ordered provider keys to probe for the row's date.
	//
	// The first key present with a non-empty value is parsed as the record
	// date. Examples: ["date"], ["send_at", "sent_at", "date"].
	DateKeys []string `json:"dateKeys"`

	// Accepted date layouts, in Go reference-time notation, tried in order.
	//
	// Optional. When empty, a default set covering the known providers is
	// used: "2006-01-02" (Meta, RD Station), "20060102" (GA4), and RFC 3339
	// timestamps (RD Station event feeds). Parsed timestamps are truncated
	// to their calendar date.
	DateFormats []string `json:"dateFormats,omitempty"`

	// Field mappings from internal field names to provider keys.
	//
	// At least one mapping is required. Each raw row yields one record
	// carrying every mapped field (missing or unparseable values coerce
	// to zero rather than poisoning downstream sums).
	Fields []FieldMappingSpec `json:"fields"`
}

// FieldMappingSpec maps one internal field name to its provider key candidates.
type FieldMappingSpec struct {
	// Internal field name the matched value is stored under.
	//
	// Examples: "mql", "sql", "spend", "clicks", "bounceRate", "users".
	Field string `json:"field"`

	// Ordered provider keys to probe; first non-empty match wins.
	//
	// Examples: ["totalUsers", "activeUsers"], ["inline_link_clicks", "clicks"].
	SourceKeys []string `json:"sourceKeys"`
}

// NormalizeResultSpec carries the normalization output plus data-quality counts.
type NormalizeResultSpec struct {
	// Records successfully normalized, in input row order.
	Records []RecordSpec `json:"records"`

	// Number of input rows excluded because no valid date could be resolved.
	//
	// A nonzero count signals an upstream format change or data-quality
	// problem; it never aborts normalization of the remaining rows.
	ExcludedRows int `json:"excludedRows"`
}

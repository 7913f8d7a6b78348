package specs

import "time"

// BucketsFor enumerates every reporting bucket of the given granularity that
// intersects the requested date range.
//
// Buckets are full calendar periods: the first bucket may start before
// Range.Start and the last may end after Range.End, but together they cover
// the whole range with no gaps and no overlaps, ordered oldest to newest.
// Empty periods are enumerated too — chart continuity requires buckets with
// zero activity to appear in output rather than being silently dropped.
//
// Valid granularities: "week" (ISO, Monday start), "month", "quarter"
// (January-aligned), "year".
//
// This is the spec-level interface using only primitive types.
// See internal.BucketsFor for the reference implementation.
type BucketsFor func(granularity string, r DateRangeSpec) ([]BucketSpec, error)

// BucketSpec represents one reporting period at one granularity.
type BucketSpec struct {
	// Bucket granularity: "week", "month", "quarter", or "year".
	Granularity string `json:"granularity"`

	// Inclusive first date of the period.
	//
	// Week buckets start on Monday, month buckets on the first of the month,
	// quarter buckets on Jan/Apr/Jul/Oct 1, year buckets on January 1.
	// A record dated exactly on a bucket boundary belongs to the bucket that
	// starts on that date.
	Start time.Time `json:"start"`

	// Inclusive last date of the period (Sunday, last day of month, etc.).
	End time.Time `json:"end"`

	// Human-readable identifier derived from the boundaries.
	//
	// Presentation-only; not used as a grouping key. Examples:
	// "Week of 2024-01-01", "2024-01", "2024-Q1", "2024".
	Label string `json:"label"`
}

// AggregatedBucketSpec is a bucket together with its computed values.
//
// All quantities are decimal strings to preserve precision across language
// implementations. Every value is defined: a bucket with no records (or zero
// total weight, or a zero denominator) reports "0", never NaN or Infinity.
type AggregatedBucketSpec struct {
	// The reporting period these values cover.
	Bucket BucketSpec `json:"bucket"`

	// Per-field totals for the additive fields, as decimal strings.
	//
	// Every configured sum field is present, including in empty buckets
	// (where the total is "0").
	Sums map[string]string `json:"sums"`

	// Weighted averages for the configured rate fields.
	//
	// Keyed by rate field name. Each entry records the weight field used so
	// consumers can tell how the average was computed.
	WeightedAverages map[string]WeightedAverageSpec `json:"weightedAverages,omitempty"`

	// Derived metrics computed from Sums, as decimal strings.
	//
	// Examples: conversionRate = sql / mql × 100, cpc = spend / clicks.
	Derived map[string]string `json:"derived,omitempty"`

	// Number of records assigned to this bucket.
	RecordCount int `json:"recordCount"`
}

// WeightedAverageSpec is a weighted-average value plus the weight field used.
type WeightedAverageSpec struct {
	// The weighted average as a decimal string; "0" when total weight is zero.
	Value string `json:"value"`

	// Name of the field each record's contribution was weighted by.
	WeightField string `json:"weightField"`
}

// ReportSpec is the full output of one aggregation run.
//
// Reports are derived values recomputed on each call from their inputs; they
// carry no wall-clock state, so identical inputs produce identical reports.
type ReportSpec struct {
	// Granularity the buckets were computed at.
	Granularity string `json:"granularity"`

	// The requested date range.
	Range DateRangeSpec `json:"range"`

	// One aggregated bucket per period intersecting the range, oldest first.
	Buckets []AggregatedBucketSpec `json:"buckets"`

	// Grand totals over the whole range, with the same sums, weighted
	// averages, and derived metrics as the per-period buckets.
	Totals AggregatedBucketSpec `json:"totals"`
}

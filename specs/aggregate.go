package specs

// Aggregate transforms normalized records into a bucketed report by grouping
// them into calendar periods and computing sums, weighted averages, and
// derived metrics per period.
//
// Process:
//  1. Enumerate every bucket of the configured granularity intersecting the range
//  2. Assign each record dated within the range to exactly one bucket
//  3. Sum the configured additive fields per bucket (empty bucket → "0")
//  4. Compute each weighted average as Σ(field × weight) / Σ(weight); zero
//     total weight → "0"
//  5. Compute derived metrics from the bucket sums; zero denominator → "0"
//  6. Compute the same values over the whole range as grand totals
//
// Records dated outside the range are ignored. Aggregation carries no state
// across calls: identical inputs yield identical reports.
//
// Returns an error for caller-input mistakes (invalid granularity, end before
// start, empty field names) before any computation.
//
// This is the spec-level interface using only primitive types.
// See internal.Aggregate for the reference implementation.
type Aggregate func(records []RecordSpec, config AggregateConfigSpec) (ReportSpec, error)

// AggregateConfigSpec defines one aggregation request.
type AggregateConfigSpec struct {
	// Bucket granularity: "week", "month", "quarter", or "year".
	Granularity string `json:"granularity"`

	// Inclusive date range to report over.
	Range DateRangeSpec `json:"range"`

	// Field names summed per bucket.
	//
	// Additive quantities: counts and currency. Examples: "mql", "sql",
	// "spend", "clicks", "mrr".
	SumFields []string `json:"sumFields"`

	// Rate fields averaged per bucket, each weighted by a named weight field.
	//
	// Rates must not be naively averaged; each record contributes
	// proportionally to its weight field value. The weight field choice is
	// explicit caller configuration — there is no hidden default.
	AverageFields []WeightedFieldSpec `json:"averageFields,omitempty"`

	// Ratio metrics computed from bucket sums.
	DerivedMetrics []DerivedMetricSpec `json:"derivedMetrics,omitempty"`
}

// WeightedFieldSpec names a rate field and the field that weights it.
type WeightedFieldSpec struct {
	// The rate field to average. Examples: "bounceRate", "engagementTime".
	Field string `json:"field"`

	// The field each record's rate is weighted by. Examples: "users",
	// "sessions". Weight values are read from the same record as the rate.
	WeightField string `json:"weightField"`
}

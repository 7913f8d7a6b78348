package specs

// DerivedMetricSpec defines a ratio metric computed from aggregated sums.
//
// Derived metrics are pure functions of already-aggregated totals; they never
// re-scan raw records. Each is evaluated per bucket and once more over the
// grand totals, so every consuming view gets the same value for the same
// period.
//
// The division-by-zero guard is part of the contract, not an implementation
// detail: a zero denominator yields "0", never NaN or Infinity.
type DerivedMetricSpec struct {
	// Name the computed value is stored under in AggregatedBucketSpec.Derived.
	//
	// Examples: "conversionRate", "cpc", "ctr", "openRate".
	Name string `json:"name"`

	// Sum field used as the numerator. Example: "sql".
	Numerator string `json:"numerator"`

	// Sum field used as the denominator. Example: "mql".
	//
	// When the bucket's total for this field is zero the metric is "0".
	Denominator string `json:"denominator"`

	// Multiplier applied to the ratio, as a decimal string.
	//
	// Optional; empty means "1". Use "100" for percentage metrics, e.g.
	// conversionRate = sql / mql × 100.
	Scale string `json:"scale,omitempty"`
}

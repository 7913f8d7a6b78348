package internal

import (
	"time"
)

// AggregateValues holds the computed values for one period (or for the grand
// total across the whole range).
type AggregateValues struct {
	Sums             RecordFields
	WeightedAverages []WeightedAverage
	Derived          RecordFields
	RecordCount      int
}

// WeightedAverage is one computed rate average plus the weight field used.
type WeightedAverage struct {
	Field       FieldName
	WeightField FieldName
	Value       Decimal
}

// AggregatedBucket is a bucket plus its computed values.
type AggregatedBucket struct {
	Bucket Bucket
	Values AggregateValues
}

// aggregate groups records into the range's buckets and computes sums,
// weighted averages, and derived metrics per bucket, plus grand totals over
// the whole range.
//
// Records dated outside the range are ignored. Every enumerated bucket
// appears in the output, including empty ones. The computation is a pure
// function of its inputs: no state survives the call and the inputs are
// never mutated.
func aggregate(records []Record, config AggregateConfig) ([]AggregatedBucket, AggregateValues) {
	buckets := bucketsFor(config.Granularity(), config.Range())

	// Assign each in-range record to its bucket by bucket start date.
	assigned := make(map[time.Time][]Record, len(buckets))
	inRange := make([]Record, 0, len(records))
	for _, record := range records {
		ts := record.Timestamp.ToTime()
		if !config.Range().Contains(ts) {
			continue
		}
		key := config.Granularity().BucketStart(ts)
		assigned[key] = append(assigned[key], record)
		inRange = append(inRange, record)
	}

	aggregated := make([]AggregatedBucket, len(buckets))
	for i, bucket := range buckets {
		aggregated[i] = AggregatedBucket{
			Bucket: bucket,
			Values: computeValues(assigned[bucket.Start()], config),
		}
	}

	return aggregated, computeValues(inRange, config)
}

// computeValues computes sums, weighted averages, and derived metrics over one
// group of records. An empty group yields zero for every value — an empty
// period reports 0, never NaN.
func computeValues(records []Record, config AggregateConfig) AggregateValues {
	sums := NewRecordFields()
	for _, field := range config.SumFields() {
		total := ZeroDecimal()
		for _, record := range records {
			total = total.Add(record.Fields.Get(field.ToString()))
		}
		sums.Set(field.ToString(), total)
	}

	averages := make([]WeightedAverage, 0, len(config.AverageFields()))
	for _, weighted := range config.AverageFields() {
		averages = append(averages, computeWeightedAverage(records, weighted))
	}

	derived := NewRecordFields()
	for _, metric := range config.DerivedMetrics() {
		derived.Set(metric.Name().ToString(), metric.Compute(sums))
	}

	return AggregateValues{
		Sums:             sums,
		WeightedAverages: averages,
		Derived:          derived,
		RecordCount:      len(records),
	}
}

// computeWeightedAverage computes Σ(field × weight) / Σ(weight) over the
// records. Zero total weight yields zero by contract: naive division here is
// what renders as "NaN%" in dashboards.
func computeWeightedAverage(records []Record, weighted WeightedField) WeightedAverage {
	weightedSum := ZeroDecimal()
	totalWeight := ZeroDecimal()

	for _, record := range records {
		weight := record.Fields.Get(weighted.WeightField().ToString())
		value := record.Fields.Get(weighted.Field().ToString())
		weightedSum = weightedSum.Add(value.Mul(weight))
		totalWeight = totalWeight.Add(weight)
	}

	value := ZeroDecimal()
	if !totalWeight.IsZero() {
		value = weightedSum.Div(totalWeight)
	}

	return WeightedAverage{
		Field:       weighted.Field(),
		WeightField: weighted.WeightField(),
		Value:       value,
	}
}

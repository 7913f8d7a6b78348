package internal

import (
	"fmt"

	specs "github.com/growthops/rollup/specs"
)

// Aggregate implements specs.Aggregate.
// Converts specs to domain objects, transforms, and converts back to specs.
func Aggregate(recordSpecs []specs.RecordSpec, configSpec specs.AggregateConfigSpec) (specs.ReportSpec, error) {
	config, err := NewAggregateConfig(configSpec)
	if err != nil {
		return specs.ReportSpec{}, fmt.Errorf("invalid config: %w", err)
	}

	records := make([]Record, len(recordSpecs))
	for i, spec := range recordSpecs {
		record, err := NewRecord(spec)
		if err != nil {
			return specs.ReportSpec{}, fmt.Errorf("invalid record at index %d: %w", i, err)
		}
		records[i] = record
	}

	return AggregateRecords(records, config)
}

// AggregateRecords runs one aggregation over domain records. Go callers that
// already hold domain objects (custom formulas, pipelines) use this directly;
// Aggregate is the primitive-typed boundary on top of it.
func AggregateRecords(records []Record, config AggregateConfig) (specs.ReportSpec, error) {
	buckets, totals := aggregate(records, config)

	bucketSpecs := make([]specs.AggregatedBucketSpec, len(buckets))
	for i, bucket := range buckets {
		bucketSpecs[i] = specs.AggregatedBucketSpec{
			Bucket:           bucket.Bucket.ToSpec(),
			Sums:             sumsToSpec(bucket.Values.Sums),
			WeightedAverages: averagesToSpec(bucket.Values.WeightedAverages),
			Derived:          derivedToSpec(bucket.Values.Derived),
			RecordCount:      bucket.Values.RecordCount,
		}
	}

	return specs.ReportSpec{
		Granularity: config.Granularity().ToString(),
		Range:       config.Range().ToSpec(),
		Buckets:     bucketSpecs,
		Totals: specs.AggregatedBucketSpec{
			Bucket: specs.BucketSpec{
				Granularity: config.Granularity().ToString(),
				Start:       config.Range().Start().ToTime(),
				End:         config.Range().End().ToTime(),
				Label:       "Total",
			},
			Sums:             sumsToSpec(totals.Sums),
			WeightedAverages: averagesToSpec(totals.WeightedAverages),
			Derived:          derivedToSpec(totals.Derived),
			RecordCount:      totals.RecordCount,
		},
	}, nil
}

func sumsToSpec(sums RecordFields) map[string]string {
	result := make(map[string]string, len(sums.Names()))
	for _, name := range sums.Names() {
		result[name] = sums.Get(name).String()
	}
	return result
}

func averagesToSpec(averages []WeightedAverage) map[string]specs.WeightedAverageSpec {
	if len(averages) == 0 {
		return nil
	}
	result := make(map[string]specs.WeightedAverageSpec, len(averages))
	for _, avg := range averages {
		result[avg.Field.ToString()] = specs.WeightedAverageSpec{
			Value:       avg.Value.String(),
			WeightField: avg.WeightField.ToString(),
		}
	}
	return result
}

func derivedToSpec(derived RecordFields) map[string]string {
	names := derived.Names()
	if len(names) == 0 {
		return nil
	}
	result := make(map[string]string, len(names))
	for _, name := range names {
		result[name] = derived.Get(name).String()
	}
	return result
}

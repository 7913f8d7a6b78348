package benchmarks

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/growthops/rollup/internal"
	specs "github.com/growthops/rollup/specs"
)

func yearRange() specs.DateRangeSpec {
	return specs.DateRangeSpec{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// generateDailyRecords spreads count records evenly across 2024.
func generateDailyRecords(count int) []specs.RecordSpec {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]specs.RecordSpec, count)
	for i := 0; i < count; i++ {
		records[i] = specs.RecordSpec{
			Timestamp: start.AddDate(0, 0, i%366),
			Fields: map[string]string{
				"mql":   strconv.Itoa(i % 50),
				"sql":   strconv.Itoa(i % 12),
				"spend": "120.50",
			},
		}
	}
	return records
}

// Benchmark full aggregation at increasing record volumes
func BenchmarkAggregate(b *testing.B) {
	config := specs.AggregateConfigSpec{
		Granularity: "week",
		Range:       yearRange(),
		SumFields:   []string{"mql", "sql", "spend"},
		DerivedMetrics: []specs.DerivedMetricSpec{
			{Name: "conversionRate", Numerator: "sql", Denominator: "mql", Scale: "100"},
		},
	}

	for _, count := range []int{100, 1000, 10000} {
		records := generateDailyRecords(count)
		b.Run(fmt.Sprintf("%dRecords", count), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := internal.Aggregate(records, config)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark aggregation across granularities at a fixed volume
func BenchmarkAggregate_Granularities(b *testing.B) {
	records := generateDailyRecords(1000)

	for _, granularity := range []string{"week", "month", "quarter", "year"} {
		config := specs.AggregateConfigSpec{
			Granularity: granularity,
			Range:       yearRange(),
			SumFields:   []string{"mql", "sql", "spend"},
		}
		b.Run(granularity, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := internal.Aggregate(records, config)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark normalization of raw provider rows
func BenchmarkNormalize(b *testing.B) {
	config := specs.NormalizeConfigSpec{
		DateKeys: []string{"date"},
		Fields: []specs.FieldMappingSpec{
			{Field: "mql", SourceKeys: []string{"mql", "mqls"}},
			{Field: "sql", SourceKeys: []string{"sql", "sqls"}},
			{Field: "spend", SourceKeys: []string{"spend"}},
		},
	}

	for _, count := range []int{100, 1000, 10000} {
		rows := make([]specs.RawRowSpec, count)
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range rows {
			rows[i] = specs.RawRowSpec{
				"date":  start.AddDate(0, 0, i%366).Format("2006-01-02"),
				"mqls":  strconv.Itoa(i % 50),
				"sql":   strconv.Itoa(i % 12),
				"spend": "120.50",
			}
		}
		b.Run(fmt.Sprintf("%dRows", count), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := internal.Normalize(rows, config)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark window planning over wide ranges
func BenchmarkPlanWindows(b *testing.B) {
	tenYears := specs.DateRangeSpec{
		Start: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := internal.PlanWindows(tenYears, 40)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark bucket enumeration at the finest granularity
func BenchmarkBucketsFor_WeeklyYear(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := internal.BucketsFor("week", yearRange())
		if err != nil {
			b.Fatal(err)
		}
	}
}

package internal

import (
	"fmt"
	"time"

	specs "github.com/growthops/rollup/specs"
)

// Bucket is one reporting period at one granularity. Buckets are full
// calendar periods; the enclosing report's range may begin or end inside the
// first or last bucket.
type Bucket struct {
	granularity Granularity
	start       time.Time
	end         time.Time
}

func NewBucket(granularity Granularity, start time.Time) Bucket {
	start = granularity.BucketStart(start)
	end := granularity.NextBucketStart(start).AddDate(0, 0, -1)
	return Bucket{
		granularity: granularity,
		start:       start,
		end:         end,
	}
}

func (b Bucket) Granularity() Granularity {
	return b.granularity
}

func (b Bucket) Start() time.Time {
	return b.start
}

func (b Bucket) End() time.Time {
	return b.end
}

func (b Bucket) Label() string {
	return b.granularity.Label(b.start)
}

// ToSpec converts Bucket to specs.BucketSpec.
func (b Bucket) ToSpec() specs.BucketSpec {
	return specs.BucketSpec{
		Granularity: b.granularity.ToString(),
		Start:       b.start,
		End:         b.end,
		Label:       b.Label(),
	}
}

// bucketsFor enumerates every bucket of the granularity intersecting the
// range, oldest first. Empty periods are enumerated too: chart continuity
// requires buckets with zero activity to appear in output.
func bucketsFor(granularity Granularity, r DateRange) []Bucket {
	var buckets []Bucket
	for start := granularity.BucketStart(r.Start().ToTime()); !start.After(r.End().ToTime()); start = granularity.NextBucketStart(start) {
		buckets = append(buckets, NewBucket(granularity, start))
	}
	return buckets
}

// BucketsFor implements specs.BucketsFor.
// Converts specs to domain objects, enumerates, and converts back to specs.
func BucketsFor(granularitySpec string, rangeSpec specs.DateRangeSpec) ([]specs.BucketSpec, error) {
	granularity, err := NewGranularity(granularitySpec)
	if err != nil {
		return nil, fmt.Errorf("invalid granularity: %w", err)
	}

	dateRange, err := NewDateRange(rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid range: %w", err)
	}

	buckets := bucketsFor(granularity, dateRange)
	bucketSpecs := make([]specs.BucketSpec, len(buckets))
	for i, bucket := range buckets {
		bucketSpecs[i] = bucket.ToSpec()
	}
	return bucketSpecs, nil
}

package internal

import (
	"fmt"

	specs "github.com/growthops/rollup/specs"
)

type AggregateConfig struct {
	granularity    Granularity
	dateRange      DateRange
	sumFields      []FieldName
	averageFields  []WeightedField
	derivedMetrics []DerivedMetric
}

func NewAggregateConfig(spec specs.AggregateConfigSpec) (AggregateConfig, error) {
	granularity, err := NewGranularity(spec.Granularity)
	if err != nil {
		return AggregateConfig{}, fmt.Errorf("invalid granularity: %w", err)
	}

	dateRange, err := NewDateRange(spec.Range)
	if err != nil {
		return AggregateConfig{}, fmt.Errorf("invalid range: %w", err)
	}

	if len(spec.SumFields) == 0 && len(spec.AverageFields) == 0 {
		return AggregateConfig{}, fmt.Errorf("at least one sum field or average field is required")
	}

	sumFields := make([]FieldName, 0, len(spec.SumFields))
	for i, name := range spec.SumFields {
		field, err := NewFieldName(name)
		if err != nil {
			return AggregateConfig{}, fmt.Errorf("sum field %d: %w", i, err)
		}
		sumFields = append(sumFields, field)
	}

	averageFields := make([]WeightedField, 0, len(spec.AverageFields))
	for i, wf := range spec.AverageFields {
		weighted, err := NewWeightedField(wf)
		if err != nil {
			return AggregateConfig{}, fmt.Errorf("average field %d: %w", i, err)
		}
		averageFields = append(averageFields, weighted)
	}

	derivedMetrics := make([]DerivedMetric, 0, len(spec.DerivedMetrics))
	for i, dm := range spec.DerivedMetrics {
		metric, err := NewDerivedMetric(dm)
		if err != nil {
			return AggregateConfig{}, fmt.Errorf("derived metric %d: %w", i, err)
		}
		derivedMetrics = append(derivedMetrics, metric)
	}

	return AggregateConfig{
		granularity:    granularity,
		dateRange:      dateRange,
		sumFields:      sumFields,
		averageFields:  averageFields,
		derivedMetrics: derivedMetrics,
	}, nil
}

func (c AggregateConfig) Granularity() Granularity {
	return c.granularity
}

func (c AggregateConfig) Range() DateRange {
	return c.dateRange
}

func (c AggregateConfig) SumFields() []FieldName {
	return c.sumFields
}

func (c AggregateConfig) AverageFields() []WeightedField {
	return c.averageFields
}

func (c AggregateConfig) DerivedMetrics() []DerivedMetric {
	return c.derivedMetrics
}

// WithDerivedMetric returns a copy of the config with an extra derived metric
// appended. Used by Go callers that need custom formulas beyond the
// declarative ratio form.
func (c AggregateConfig) WithDerivedMetric(metric DerivedMetric) AggregateConfig {
	derived := make([]DerivedMetric, len(c.derivedMetrics), len(c.derivedMetrics)+1)
	copy(derived, c.derivedMetrics)
	c.derivedMetrics = append(derived, metric)
	return c
}

type WeightedField struct {
	field       FieldName
	weightField FieldName
}

func NewWeightedField(spec specs.WeightedFieldSpec) (WeightedField, error) {
	field, err := NewFieldName(spec.Field)
	if err != nil {
		return WeightedField{}, fmt.Errorf("invalid field: %w", err)
	}

	weightField, err := NewFieldName(spec.WeightField)
	if err != nil {
		return WeightedField{}, fmt.Errorf("invalid weight field: %w", err)
	}

	return WeightedField{
		field:       field,
		weightField: weightField,
	}, nil
}

func (w WeightedField) Field() FieldName {
	return w.field
}

func (w WeightedField) WeightField() FieldName {
	return w.weightField
}

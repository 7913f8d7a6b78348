package internal

import (
	"fmt"

	specs "github.com/growthops/rollup/specs"
)

// Formula computes a derived metric from already-aggregated sums.
// Formulas never re-scan raw records, which keeps derivation independent of
// record volume. Every formula must define its own division-by-zero behavior
// as zero; RatioFormula does this for the declarative ratio case.
type Formula func(sums RecordFields) Decimal

// RatioFormula builds the standard ratio formula numerator / denominator × scale.
// A zero denominator yields decimal zero, never NaN or Infinity.
func RatioFormula(numerator, denominator FieldName, scale Decimal) Formula {
	return func(sums RecordFields) Decimal {
		den := sums.Get(denominator.ToString())
		if den.IsZero() {
			return ZeroDecimal()
		}
		return sums.Get(numerator.ToString()).Div(den).Mul(scale)
	}
}

type DerivedMetric struct {
	name    FieldName
	formula Formula
}

func NewDerivedMetric(spec specs.DerivedMetricSpec) (DerivedMetric, error) {
	name, err := NewFieldName(spec.Name)
	if err != nil {
		return DerivedMetric{}, fmt.Errorf("invalid name: %w", err)
	}

	numerator, err := NewFieldName(spec.Numerator)
	if err != nil {
		return DerivedMetric{}, fmt.Errorf("invalid numerator: %w", err)
	}

	denominator, err := NewFieldName(spec.Denominator)
	if err != nil {
		return DerivedMetric{}, fmt.Errorf("invalid denominator: %w", err)
	}

	scale := NewDecimalFromInt64(1)
	if spec.Scale != "" {
		scale, err = NewDecimal(spec.Scale)
		if err != nil {
			return DerivedMetric{}, fmt.Errorf("invalid scale: %w", err)
		}
	}

	return DerivedMetric{
		name:    name,
		formula: RatioFormula(numerator, denominator, scale),
	}, nil
}

// NewCustomDerivedMetric builds a derived metric from a caller-supplied
// formula, for ratios the declarative spec cannot express. The formula is
// responsible for its own zero guards.
func NewCustomDerivedMetric(name string, formula Formula) (DerivedMetric, error) {
	fieldName, err := NewFieldName(name)
	if err != nil {
		return DerivedMetric{}, fmt.Errorf("invalid name: %w", err)
	}
	if formula == nil {
		return DerivedMetric{}, fmt.Errorf("formula is required")
	}
	return DerivedMetric{
		name:    fieldName,
		formula: formula,
	}, nil
}

func (m DerivedMetric) Name() FieldName {
	return m.name
}

// Compute evaluates the metric against aggregated sums.
func (m DerivedMetric) Compute(sums RecordFields) Decimal {
	return m.formula(sums)
}

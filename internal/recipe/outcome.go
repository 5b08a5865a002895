package recipe

import (
	"math"
	"strconv"

	"MetricRecipes/internal/model"
)

// Outcome is the result of evaluating a formula or resolving an ingredient:
// a number, NoValue (date recorded without a reading) or Unknown (date never
// recorded).
type Outcome struct {
	kind  model.OutcomeKind
	value float64
}

var (
	// NoValue marks a date that exists in a series but carries no reading.
	NoValue = Outcome{kind: model.KindNoValue}
	// Unknown marks a date that is absent from a series.
	Unknown = Outcome{kind: model.KindUnknown}
)

// Number wraps a numeric outcome.
func Number(v float64) Outcome {
	return Outcome{kind: model.KindNumber, value: v}
}

// Kind returns the outcome's classification.
func (o Outcome) Kind() model.OutcomeKind {
	if o.kind == "" {
		return model.KindUnknown
	}
	return o.kind
}

// Float returns the numeric value and whether the outcome is a number.
func (o Outcome) Float() (float64, bool) {
	return o.value, o.kind == model.KindNumber
}

func (o Outcome) IsNumber() bool  { return o.kind == model.KindNumber }
func (o Outcome) IsNoValue() bool { return o.kind == model.KindNoValue }
func (o Outcome) IsUnknown() bool { return o.Kind() == model.KindUnknown }

func (o Outcome) String() string {
	switch o.Kind() {
	case model.KindNumber:
		return strconv.FormatFloat(o.value, 'f', -1, 64)
	case model.KindNoValue:
		return "no value"
	default:
		return "unknown"
	}
}

// combine applies op to two outcomes. Unknown wins over NoValue, and either
// sentinel wins over a number. Division by zero follows IEEE semantics.
func combine(op Operator, left, right Outcome) Outcome {
	if left.IsUnknown() || right.IsUnknown() {
		return Unknown
	}
	if left.IsNoValue() || right.IsNoValue() {
		return NoValue
	}
	l, r := left.value, right.value
	switch op {
	case Add:
		return Number(l + r)
	case Subtract:
		return Number(l - r)
	case Multiply:
		return Number(l * r)
	case Divide:
		return Number(l / r)
	}
	return Unknown
}

// roundCents rounds finite numbers to two decimal places, ties toward +Inf
// (-0.125 becomes -0.12).
func roundCents(o Outcome) Outcome {
	v, ok := o.Float()
	if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
		return o
	}
	return Number(math.Floor(v*100+0.5) / 100)
}

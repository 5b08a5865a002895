package recipe

import (
	"fmt"
	"strings"

	"MetricRecipes/internal/model"
)

// Recipe evaluates a formula against a list of ingredients. The infix steps
// are computed once at construction; postfix order and ingredient values are
// derived afresh on every evaluation. A Recipe holds no mutable state and may
// be evaluated concurrently as long as the ingredient series are not mutated.
type Recipe struct {
	formula     string
	ingredients []model.Ingredient
	infix       []Step
}

// New tokenizes formula against ingredients and validates its grouping.
// The ingredient slice is referenced, not copied.
func New(formula string, ingredients []model.Ingredient) (*Recipe, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, ErrMissingFormula
	}

	steps, unresolved := Tokenize(formula, ingredients)
	if err := ValidateGrouping(steps); err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, strings.Join(unresolved, ", "))
	}

	return &Recipe{
		formula:     formula,
		ingredients: ingredients,
		infix:       steps,
	}, nil
}

// Formula returns the raw formula string.
func (r *Recipe) Formula() string {
	return r.formula
}

// Steps returns a copy of the infix steps.
func (r *Recipe) Steps() []Step {
	out := make([]Step, len(r.infix))
	copy(out, r.infix)
	return out
}

// Postfix returns the formula's steps in postfix order.
func (r *Recipe) Postfix() []Step {
	return ToPostfix(r.infix)
}

// ValueFor evaluates the recipe at dateKey. dateKey may be empty when the
// formula references no ingredients.
func (r *Recipe) ValueFor(dateKey string) Outcome {
	return Evaluate(ToPostfix(r.infix), r.IngredientValue, dateKey)
}

// IngredientValue resolves an ingredient step at dateKey: the recorded number,
// NoValue when the date carries no reading, or Unknown when the date is absent.
func (r *Recipe) IngredientValue(step IngredientStep, dateKey string) Outcome {
	if step.Index < 0 || step.Index >= len(r.ingredients) {
		return Unknown
	}
	reading, recorded := r.ingredients[step.Index].Values.Lookup(dateKey)
	switch {
	case !recorded:
		return Unknown
	case reading == nil:
		return NoValue
	default:
		return Number(*reading)
	}
}

// Resolver maps an ingredient step to its outcome at a date key.
type Resolver func(step IngredientStep, dateKey string) Outcome

// Evaluate runs a postfix program on a value stack. Operators pop the right
// operand first. A well-formed program leaves exactly one outcome, which is
// rounded to two decimals when it is a finite number; anything else evaluates
// to Unknown.
func Evaluate(postfix []Step, resolve Resolver, dateKey string) Outcome {
	stack := make([]Outcome, 0, len(postfix))

	for _, s := range postfix {
		switch st := s.(type) {
		case NumberStep:
			stack = append(stack, Number(st.Value))
		case IngredientStep:
			if resolve == nil {
				stack = append(stack, Unknown)
				continue
			}
			stack = append(stack, resolve(st, dateKey))
		case OperatorStep:
			if len(stack) < 2 {
				return Unknown
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = append(stack[:len(stack)-2], combine(st.Op, left, right))
		}
	}

	if len(stack) != 1 {
		return Unknown
	}
	return roundCents(stack[0])
}

// FormatSteps renders steps separated by spaces.
func FormatSteps(steps []Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

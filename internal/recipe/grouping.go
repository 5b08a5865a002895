package recipe

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFormula is returned when a recipe is built without a formula.
	ErrMissingFormula = errors.New("formula is required")
	// ErrMalformedFormula is returned when a formula's parentheses do not balance.
	ErrMalformedFormula = errors.New("malformed formula")
	// ErrUnknownIngredient is returned when a formula references a name that is
	// not in the recipe's ingredient list.
	ErrUnknownIngredient = errors.New("unknown ingredient")
)

// ValidateGrouping checks that every close grouper matches an earlier open one
// and that no group is left open.
func ValidateGrouping(steps []Step) error {
	depth := 0
	for i, s := range steps {
		g, ok := s.(GrouperStep)
		if !ok {
			continue
		}
		if g.IsOpen() {
			depth++
			continue
		}
		depth--
		if depth < 0 {
			return fmt.Errorf("%w: unmatched %q at step %d", ErrMalformedFormula, CloseGroup, i)
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed %q", ErrMalformedFormula, depth, OpenGroup)
	}
	return nil
}

package recipe

import (
	"strconv"
	"strings"

	"MetricRecipes/internal/model"
)

// Tokenize scans formula left to right and returns its steps in infix order.
// Bracketed names are matched exactly against ingredients; names with no match
// produce no step and are returned in unresolved instead. Characters outside
// the grammar are skipped.
func Tokenize(formula string, ingredients []model.Ingredient) (steps []Step, unresolved []string) {
	index := make(map[string]int, len(ingredients))
	for i, ing := range ingredients {
		if _, dup := index[ing.Name]; !dup {
			index[ing.Name] = i
		}
	}

	for pos := 0; pos < len(formula); {
		ch := formula[pos]
		switch {
		case isDigit(ch):
			end := scanNumber(formula, pos)
			// scanNumber only accepts digits and one interior point, so the only
			// possible error is ErrRange for huge literals, which yield +Inf.
			v, _ := strconv.ParseFloat(formula[pos:end], 64)
			steps = append(steps, NumberStep{Value: v})
			pos = end

		case ch == '[':
			closing := strings.IndexByte(formula[pos+1:], ']')
			if closing < 0 {
				pos++
				continue
			}
			name := formula[pos+1 : pos+1+closing]
			if i, ok := index[name]; ok {
				steps = append(steps, IngredientStep{Index: i, Name: name})
			} else {
				unresolved = append(unresolved, name)
			}
			pos += closing + 2

		case isOperator(ch):
			steps = append(steps, OperatorStep{Op: Operator(ch)})
			pos++

		case ch == OpenGroup || ch == CloseGroup:
			steps = append(steps, GrouperStep{Symbol: ch})
			pos++

		default:
			pos++
		}
	}
	return steps, unresolved
}

// scanNumber returns the end of the maximal digit run starting at start,
// allowing a single decimal point that is followed by a digit.
func scanNumber(s string, start int) int {
	end := start
	seenPoint := false
	for end < len(s) {
		switch {
		case isDigit(s[end]):
			end++
		case s[end] == '.' && !seenPoint && end+1 < len(s) && isDigit(s[end+1]):
			seenPoint = true
			end++
		default:
			return end
		}
	}
	return end
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperator(ch byte) bool {
	_, ok := operatorPrecedence[Operator(ch)]
	return ok
}

package recipe

import (
	"fmt"
	"strconv"
)

// Step is one classified token of a formula. The set of implementations is
// closed: NumberStep, IngredientStep, OperatorStep and GrouperStep.
type Step interface {
	step()
	String() string
}

// Operator is one of the four binary arithmetic operators.
type Operator byte

const (
	Add      Operator = '+'
	Subtract Operator = '-'
	Multiply Operator = '*'
	Divide   Operator = '/'
)

// operatorPrecedence ranks operators for the shunting-yard conversion.
var operatorPrecedence = map[Operator]int{
	Add:      1,
	Subtract: 1,
	Multiply: 2,
	Divide:   2,
}

// Grouping symbols.
const (
	OpenGroup  byte = '('
	CloseGroup byte = ')'
)

// NumberStep holds a numeric literal.
type NumberStep struct {
	Value float64
}

// IngredientStep references an ingredient by its position in the recipe's
// ingredient list.
type IngredientStep struct {
	Index int
	Name  string
}

// OperatorStep holds an arithmetic operator.
type OperatorStep struct {
	Op Operator
}

// GrouperStep holds an open or close parenthesis.
type GrouperStep struct {
	Symbol byte
}

func (NumberStep) step()     {}
func (IngredientStep) step() {}
func (OperatorStep) step()   {}
func (GrouperStep) step()    {}

func (s NumberStep) String() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

func (s IngredientStep) String() string {
	return fmt.Sprintf("[%s]", s.Name)
}

func (s OperatorStep) String() string {
	return string(s.Op)
}

func (s GrouperStep) String() string {
	return string(s.Symbol)
}

// IsOpen reports whether the grouper opens a group.
func (s GrouperStep) IsOpen() bool {
	return s.Symbol == OpenGroup
}

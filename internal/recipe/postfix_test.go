package recipe

import (
	"reflect"
	"testing"

	"MetricRecipes/internal/model"
)

func TestToPostfix(t *testing.T) {
	animals := []model.Ingredient{{Name: "cat"}, {Name: "bird"}, {Name: "dog"}}

	tests := []struct {
		name        string
		formula     string
		ingredients []model.Ingredient
		want        []Step
	}{
		{
			name:    "mixed precedence",
			formula: "1 / 2 - 3 * 4 + 5",
			want: []Step{
				NumberStep{Value: 1}, NumberStep{Value: 2}, OperatorStep{Op: Divide},
				NumberStep{Value: 3}, NumberStep{Value: 4}, OperatorStep{Op: Multiply},
				OperatorStep{Op: Subtract},
				NumberStep{Value: 5}, OperatorStep{Op: Add},
			},
		},
		{
			name:    "left associative addition",
			formula: "1 + 1 + 1",
			want: []Step{
				NumberStep{Value: 1}, NumberStep{Value: 1}, OperatorStep{Op: Add},
				NumberStep{Value: 1}, OperatorStep{Op: Add},
			},
		},
		{
			name:        "left associative division of ingredients",
			formula:     "[cat] / [dog] / [bird]",
			ingredients: animals,
			want: []Step{
				IngredientStep{Index: 0, Name: "cat"}, IngredientStep{Index: 2, Name: "dog"}, OperatorStep{Op: Divide},
				IngredientStep{Index: 1, Name: "bird"}, OperatorStep{Op: Divide},
			},
		},
		{
			name:    "groups override precedence",
			formula: "(1 + 2) * 3",
			want: []Step{
				NumberStep{Value: 1}, NumberStep{Value: 2}, OperatorStep{Op: Add},
				NumberStep{Value: 3}, OperatorStep{Op: Multiply},
			},
		},
		{
			name:    "nested groups",
			formula: "2 * ((3 - 1) / 4)",
			want: []Step{
				NumberStep{Value: 2}, NumberStep{Value: 3}, NumberStep{Value: 1}, OperatorStep{Op: Subtract},
				NumberStep{Value: 4}, OperatorStep{Op: Divide}, OperatorStep{Op: Multiply},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infix, _ := Tokenize(tt.formula, tt.ingredients)
			got := ToPostfix(infix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %s, got %s", FormatSteps(tt.want), FormatSteps(got))
			}
		})
	}
}

func TestToPostfix_PreservesOperands(t *testing.T) {
	formulas := []string{
		"((1+2)/3)+([c]-[d])",
		"[a] * ([b] + [c]) / ([d] - 2.5) * [e]",
		"(((1)))",
		"1 - 2 - 3 * (4 / [a])",
	}
	for _, f := range formulas {
		infix, _ := Tokenize(f, letters())
		postfix := ToPostfix(infix)

		var inOperands, outOperands []Step
		inOperators, outOperators := 0, 0
		for _, s := range infix {
			switch s.(type) {
			case NumberStep, IngredientStep:
				inOperands = append(inOperands, s)
			case OperatorStep:
				inOperators++
			}
		}
		for _, s := range postfix {
			switch s.(type) {
			case NumberStep, IngredientStep:
				outOperands = append(outOperands, s)
			case OperatorStep:
				outOperators++
			case GrouperStep:
				t.Errorf("%q: grouper %v left in postfix output", f, s)
			}
		}
		if !reflect.DeepEqual(inOperands, outOperands) {
			t.Errorf("%q: operands changed: %s -> %s", f, FormatSteps(inOperands), FormatSteps(outOperands))
		}
		if inOperators != outOperators {
			t.Errorf("%q: expected %d operators, got %d", f, inOperators, outOperators)
		}
	}
}

func TestToPostfix_DoesNotModifyInput(t *testing.T) {
	infix, _ := Tokenize("(1 + 2) * 3", nil)
	before := append([]Step(nil), infix...)
	ToPostfix(infix)
	if !reflect.DeepEqual(infix, before) {
		t.Error("input steps were modified")
	}
}

func TestToPostfix_UnbalancedInput(t *testing.T) {
	infix, _ := Tokenize("1 + 2) * (3", nil)
	got := ToPostfix(infix)
	want := []Step{
		NumberStep{Value: 1}, NumberStep{Value: 2}, OperatorStep{Op: Add},
		NumberStep{Value: 3}, OperatorStep{Op: Multiply},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %s, got %s", FormatSteps(want), FormatSteps(got))
	}
}

func TestEvaluate_MatchesArithmetic(t *testing.T) {
	tests := []struct {
		formula string
		want    float64
	}{
		{"1 / 2 - 3 * 4 + 5", 1.0/2 - 3*4 + 5},
		{"10 - 4 - 3", 3},
		{"100 / 10 / 5", 2},
		{"2 * 3 + 4 * 5", 26},
		{"(3 + 4) * 2", 14},
		{"1.5 * 4 - 0.25", 5.75},
	}
	for _, tt := range tests {
		infix, _ := Tokenize(tt.formula, nil)
		if got := Evaluate(ToPostfix(infix), nil, ""); got != Number(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.formula, tt.want, got)
		}
	}
}

package recipe

// ToPostfix reorders infix steps into postfix order using the shunting-yard
// algorithm. Number and ingredient steps keep their relative order; groupers
// are consumed. Equal-precedence operators associate to the left.
func ToPostfix(infix []Step) []Step {
	output := make([]Step, 0, len(infix))
	var stack []Step

	for _, s := range infix {
		switch st := s.(type) {
		case NumberStep, IngredientStep:
			output = append(output, st)

		case OperatorStep:
			for len(stack) > 0 {
				top, ok := stack[len(stack)-1].(OperatorStep)
				if !ok || operatorPrecedence[top.Op] < operatorPrecedence[st.Op] {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, st)

		case GrouperStep:
			if st.IsOpen() {
				stack = append(stack, st)
				continue
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if g, ok := top.(GrouperStep); ok && g.IsOpen() {
					break
				}
				output = append(output, top)
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if op, ok := stack[i].(OperatorStep); ok {
			output = append(output, op)
		}
	}
	return output
}

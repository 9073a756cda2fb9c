package stdlib

import (
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

func isNumber(v evaluator.Value) bool {
	switch v.(type) {
	case evaluator.Integer, evaluator.Number:
		return true
	}
	return false
}

func toFloat(v evaluator.Value) float64 {
	switch n := v.(type) {
	case evaluator.Integer:
		return float64(n.Value)
	case evaluator.Number:
		return n.Value
	}
	return 0
}

// numericArgs accepts either numbers as separate arguments or a single array
// of numbers.
func numericArgs(args []evaluator.Value) ([]evaluator.Value, *evaluator.ErrorSignal) {
	if len(args) == 1 {
		if arr, ok := args[0].(*evaluator.Array); ok {
			args = arr.Elements
		}
	}
	if len(args) == 0 {
		return nil, evaluator.NewError("expected at least one number")
	}
	for _, a := range args {
		if !isNumber(a) {
			return nil, wrongTypeOfArgument(evaluator.IntegerType, a.Type())
		}
	}
	return args, nil
}

// pick keeps the element for which better(candidate, current) holds. The
// original value is returned so Integers stay Integers.
func pick(args []evaluator.Value, better func(a, b float64) bool) evaluator.Value {
	nums, errSig := numericArgs(args)
	if errSig != nil {
		return errSig
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if better(toFloat(n), toFloat(best)) {
			best = n
		}
	}
	return best
}

// max(a, b, ...) or max(array) → largest number
func builtinMax(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	return pick(args, func(a, b float64) bool { return a > b })
}

// min(a, b, ...) or min(array) → smallest number
func builtinMin(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	return pick(args, func(a, b float64) bool { return a < b })
}

// abs(n) → absolute value, same type as n
func builtinAbs(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	switch n := args[0].(type) {
	case evaluator.Integer:
		if n.Value < 0 {
			return evaluator.Integer{Value: -n.Value}
		}
		return n
	case evaluator.Number:
		if n.Value < 0 {
			return evaluator.Number{Value: -n.Value}
		}
		return n
	}
	return wrongTypeOfArgument(evaluator.IntegerType, args[0].Type())
}

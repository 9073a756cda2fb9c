package stdlib

import (
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// parseJson(string) → value
func builtinParseJSON(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	s, ok := args[0].(evaluator.String)
	if !ok {
		return wrongTypeOfArgument(evaluator.StringType, args[0].Type())
	}
	result, err := evaluator.ParseJSON([]byte(s.Value))
	if err != nil {
		return evaluator.NewError("parseJson: %v", err)
	}
	return result
}

// toJson(value) → STRING
func builtinToJSON(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	b, err := evaluator.ValueToJSON(args[0])
	if err != nil {
		return evaluator.NewError("toJson: %v", err)
	}
	return evaluator.String{Value: string(b)}
}

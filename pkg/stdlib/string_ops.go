package stdlib

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// len(array|string|hash) → INTEGER
func builtinLen(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	switch arg := args[0].(type) {
	case *evaluator.Array:
		return evaluator.Integer{Value: int64(len(arg.Elements))}
	case evaluator.String:
		return evaluator.Integer{Value: int64(utf8.RuneCountInString(arg.Value))}
	case *evaluator.Hash:
		return evaluator.Integer{Value: int64(arg.Len())}
	}
	return wrongTypeOfArgument(evaluator.ArrayType, args[0].Type())
}

// str(x) → STRING, the display form of x
func builtinStr(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	if s, ok := args[0].(evaluator.String); ok {
		return s
	}
	return evaluator.String{Value: args[0].Inspect()}
}

// int(string|number|integer) → INTEGER
func builtinInt(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	switch arg := args[0].(type) {
	case evaluator.Integer:
		return arg
	case evaluator.Number:
		if math.IsNaN(arg.Value) || arg.Value >= math.MaxInt64 || arg.Value < math.MinInt64 {
			return evaluator.NewError("could not convert %s to integer", arg.Inspect())
		}
		return evaluator.Integer{Value: int64(arg.Value)}
	case evaluator.String:
		i, err := strconv.ParseInt(strings.TrimSpace(arg.Value), 10, 64)
		if err != nil {
			return evaluator.NewError("could not parse %q as integer", arg.Value)
		}
		return evaluator.Integer{Value: i}
	}
	return wrongTypeOfArgument(evaluator.StringType, args[0].Type())
}

// number(string|number|integer) → NUMBER
func builtinNumber(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	switch arg := args[0].(type) {
	case evaluator.Number:
		return arg
	case evaluator.Integer:
		return evaluator.Number{Value: float64(arg.Value)}
	case evaluator.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
		if err != nil {
			return evaluator.NewError("could not parse %q as number", arg.Value)
		}
		return evaluator.Number{Value: f}
	}
	return wrongTypeOfArgument(evaluator.StringType, args[0].Type())
}

// split(s, sep) → ARRAY of STRING
func builtinSplit(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	s, ok := args[0].(evaluator.String)
	if !ok {
		return wrongTypeOfArgument(evaluator.StringType, args[0].Type())
	}
	sep, ok := args[1].(evaluator.String)
	if !ok {
		return wrongTypeOfArgument(evaluator.StringType, args[1].Type())
	}
	parts := strings.Split(s.Value, sep.Value)
	out := make([]evaluator.Value, len(parts))
	for i, p := range parts {
		out[i] = evaluator.String{Value: p}
	}
	return &evaluator.Array{Elements: out}
}

// join(array of STRING, sep) → STRING
func builtinJoin(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return wrongTypeOfArgument(evaluator.ArrayType, args[0].Type())
	}
	sep, ok := args[1].(evaluator.String)
	if !ok {
		return wrongTypeOfArgument(evaluator.StringType, args[1].Type())
	}
	parts := make([]string, len(arr.Elements))
	for i, el := range arr.Elements {
		s, ok := el.(evaluator.String)
		if !ok {
			return evaluator.NewError("join: element %d is %s, not STRING", i, el.Type())
		}
		parts[i] = s.Value
	}
	return evaluator.String{Value: strings.Join(parts, sep.Value)}
}

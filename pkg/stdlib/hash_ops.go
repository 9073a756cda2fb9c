package stdlib

import (
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

func hashArg(args []evaluator.Value) (*evaluator.Hash, evaluator.Value) {
	if len(args) != 1 {
		return nil, wrongNumberOfArgs(len(args), 1)
	}
	h, ok := args[0].(*evaluator.Hash)
	if !ok {
		return nil, wrongTypeOfArgument(evaluator.HashType, args[0].Type())
	}
	return h, nil
}

// keys(hash) → ARRAY of the original keys, in insertion order
func builtinKeys(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	h, errVal := hashArg(args)
	if errVal != nil {
		return errVal
	}
	pairs := h.Pairs()
	out := make([]evaluator.Value, len(pairs))
	for i, p := range pairs {
		out[i] = p.Key
	}
	return &evaluator.Array{Elements: out}
}

// values(hash) → ARRAY of values, in insertion order
func builtinValues(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	h, errVal := hashArg(args)
	if errVal != nil {
		return errVal
	}
	pairs := h.Pairs()
	out := make([]evaluator.Value, len(pairs))
	for i, p := range pairs {
		out[i] = p.Value
	}
	return &evaluator.Array{Elements: out}
}

// entries(hash) → ARRAY of [key, value] pairs
func builtinEntries(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	h, errVal := hashArg(args)
	if errVal != nil {
		return errVal
	}
	pairs := h.Pairs()
	out := make([]evaluator.Value, len(pairs))
	for i, p := range pairs {
		out[i] = &evaluator.Array{Elements: []evaluator.Value{p.Key, p.Value}}
	}
	return &evaluator.Array{Elements: out}
}

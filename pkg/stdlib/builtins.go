package stdlib

import (
	"fmt"
	"io"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

// RegisterDefaults adds all pure builtins. puts writes to stdout.
func RegisterDefaults(r *Registry, stdout io.Writer) {
	// General
	r.Register("puts", putsFn(stdout))
	r.Register("type", builtinType)

	// Strings and conversions
	r.Register("len", builtinLen)
	r.Register("str", builtinStr)
	r.Register("int", builtinInt)
	r.Register("number", builtinNumber)
	r.Register("split", builtinSplit)
	r.Register("join", builtinJoin)

	// Arrays
	r.Register("append", builtinAppend)
	r.Register("prepend", builtinPrepend)
	r.Register("first", builtinFirst)
	r.Register("last", builtinLast)
	r.Register("rest", builtinRest)
	r.Register("map", builtinMap)
	r.Register("filter", builtinFilter)
	r.Register("reduce", builtinReduce)
	r.Register("sort", builtinSort)
	r.Register("zip", builtinZip)
	r.Register("zipLongest", builtinZipLongest)
	r.Register("range", builtinRange)
	r.Register("contains", builtinContains)

	// Hashes
	r.Register("keys", builtinKeys)
	r.Register("values", builtinValues)
	r.Register("entries", builtinEntries)

	// Math
	r.Register("max", builtinMax)
	r.Register("min", builtinMin)
	r.Register("abs", builtinAbs)

	// JSON
	r.Register("parseJson", builtinParseJSON)
	r.Register("toJson", builtinToJSON)
}

// --- argument helpers ---

func wrongNumberOfArgs(got, want int) *evaluator.ErrorSignal {
	return evaluator.NewError("wrong number of arguments. got=%d, want=%d.", got, want)
}

func wrongTypeOfArgument(expected, got evaluator.ValueType) *evaluator.ErrorSignal {
	return evaluator.NewError("wrong type of argument. expected=%s got=%s.", expected, got)
}

// isCallable reports whether v can be passed to Evaluator.Apply.
func isCallable(v evaluator.Value) bool {
	switch v.(type) {
	case *evaluator.Function, *evaluator.Builtin:
		return true
	}
	return false
}

// --- general ---

// puts writes its arguments separated by spaces and a newline.
func putsFn(w io.Writer) evaluator.BuiltinFunction {
	return func(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return evaluator.NewError("puts: %v", err)
		}
		return evaluator.NULL
	}
}

// type(x) → STRING
func builtinType(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	return evaluator.String{Value: string(args[0].Type())}
}

package stdlib

import (
	"sort"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

func arrayArg(args []evaluator.Value, i int) (*evaluator.Array, *evaluator.ErrorSignal) {
	arr, ok := args[i].(*evaluator.Array)
	if !ok {
		return nil, wrongTypeOfArgument(evaluator.ArrayType, args[i].Type())
	}
	return arr, nil
}

// append(array, x) → new ARRAY with x at the end
func builtinAppend(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	out := make([]evaluator.Value, len(arr.Elements), len(arr.Elements)+1)
	copy(out, arr.Elements)
	return &evaluator.Array{Elements: append(out, args[1])}
}

// prepend(array, x) → new ARRAY with x at the front
func builtinPrepend(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	out := make([]evaluator.Value, 0, len(arr.Elements)+1)
	out = append(out, args[1])
	return &evaluator.Array{Elements: append(out, arr.Elements...)}
}

// first(array) → element or null
func builtinFirst(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	if len(arr.Elements) == 0 {
		return evaluator.NULL
	}
	return arr.Elements[0]
}

// last(array) → element or null
func builtinLast(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	if len(arr.Elements) == 0 {
		return evaluator.NULL
	}
	return arr.Elements[len(arr.Elements)-1]
}

// rest(array) → new ARRAY without the first element
func builtinRest(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	out := []evaluator.Value{}
	if len(arr.Elements) > 1 {
		out = append(out, arr.Elements[1:]...)
	}
	return &evaluator.Array{Elements: out}
}

// map(array, fn) → ARRAY of fn(el)
func builtinMap(ev *evaluator.Evaluator, env *evaluator.Environment, modulePath string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	if !isCallable(args[1]) {
		return wrongTypeOfArgument(evaluator.FunctionType, args[1].Type())
	}
	out := make([]evaluator.Value, 0, len(arr.Elements))
	for _, el := range arr.Elements {
		res := ev.Apply(env, modulePath, args[1], el)
		if evaluator.IsError(res) {
			return res
		}
		out = append(out, res)
	}
	return &evaluator.Array{Elements: out}
}

// filter(array, fn) → ARRAY of the elements for which fn is truthy
func builtinFilter(ev *evaluator.Evaluator, env *evaluator.Environment, modulePath string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	if !isCallable(args[1]) {
		return wrongTypeOfArgument(evaluator.FunctionType, args[1].Type())
	}
	out := []evaluator.Value{}
	for _, el := range arr.Elements {
		res := ev.Apply(env, modulePath, args[1], el)
		if evaluator.IsError(res) {
			return res
		}
		if evaluator.Truthiness(res) {
			out = append(out, el)
		}
	}
	return &evaluator.Array{Elements: out}
}

// reduce(array, fn, initial?) → accumulated value
func builtinReduce(ev *evaluator.Evaluator, env *evaluator.Environment, modulePath string, args ...evaluator.Value) evaluator.Value {
	if len(args) < 2 || len(args) > 3 {
		return wrongNumberOfArgs(len(args), 2)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	if !isCallable(args[1]) {
		return wrongTypeOfArgument(evaluator.FunctionType, args[1].Type())
	}

	elements := arr.Elements
	var acc evaluator.Value
	if len(args) == 3 {
		acc = args[2]
	} else {
		if len(elements) == 0 {
			return evaluator.NewError("cannot reduce an empty array without an initial value")
		}
		acc, elements = elements[0], elements[1:]
	}
	for _, el := range elements {
		acc = ev.Apply(env, modulePath, args[1], acc, el)
		if evaluator.IsError(acc) {
			return acc
		}
	}
	return acc
}

// sort(array) → new ARRAY sorted ascending; numbers and strings only
func builtinSort(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 1 {
		return wrongNumberOfArgs(len(args), 1)
	}
	arr, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}

	sorted := make([]evaluator.Value, len(arr.Elements))
	copy(sorted, arr.Elements)

	var cmpErr *evaluator.ErrorSignal
	sort.SliceStable(sorted, func(i, j int) bool {
		c, err := compareValues(sorted[i], sorted[j])
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c < 0
	})
	if cmpErr != nil {
		return cmpErr
	}
	return &evaluator.Array{Elements: sorted}
}

func compareValues(a, b evaluator.Value) (int, *evaluator.ErrorSignal) {
	if isNumber(a) && isNumber(b) {
		x, y := toFloat(a), toFloat(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	as, aok := a.(evaluator.String)
	bs, bok := b.(evaluator.String)
	if aok && bok {
		return strings.Compare(as.Value, bs.Value), nil
	}
	return 0, evaluator.NewError("sort: cannot compare %s and %s", a.Type(), b.Type())
}

// zip(a, b) → ARRAY of [a[i], b[i]] pairs, as long as the shorter input
func builtinZip(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	return zipArrays(args, false)
}

// zipLongest(a, b) → like zip, padding the shorter input with null
func builtinZipLongest(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	return zipArrays(args, true)
}

func zipArrays(args []evaluator.Value, longest bool) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	a, errSig := arrayArg(args, 0)
	if errSig != nil {
		return errSig
	}
	b, errSig := arrayArg(args, 1)
	if errSig != nil {
		return errSig
	}
	n := min(len(a.Elements), len(b.Elements))
	if longest {
		n = max(len(a.Elements), len(b.Elements))
	}
	at := func(els []evaluator.Value, i int) evaluator.Value {
		if i < len(els) {
			return els[i]
		}
		return evaluator.NULL
	}
	out := make([]evaluator.Value, n)
	for i := 0; i < n; i++ {
		out[i] = &evaluator.Array{Elements: []evaluator.Value{at(a.Elements, i), at(b.Elements, i)}}
	}
	return &evaluator.Array{Elements: out}
}

// range(end) or range(start, end) → ARRAY of INTEGER, end exclusive
func builtinRange(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) < 1 || len(args) > 2 {
		return wrongNumberOfArgs(len(args), 1)
	}
	bounds := make([]int64, len(args))
	for i, a := range args {
		n, ok := a.(evaluator.Integer)
		if !ok {
			return wrongTypeOfArgument(evaluator.IntegerType, a.Type())
		}
		bounds[i] = n.Value
	}
	start, end := int64(0), bounds[0]
	if len(bounds) == 2 {
		start, end = bounds[0], bounds[1]
	}
	out := []evaluator.Value{}
	for i := start; i < end; i++ {
		out = append(out, evaluator.Integer{Value: i})
	}
	return &evaluator.Array{Elements: out}
}

// contains(array|string|hash, x) → BOOLEAN
func builtinContains(_ *evaluator.Evaluator, _ *evaluator.Environment, _ string, args ...evaluator.Value) evaluator.Value {
	if len(args) != 2 {
		return wrongNumberOfArgs(len(args), 2)
	}
	switch coll := args[0].(type) {
	case *evaluator.Array:
		for _, el := range coll.Elements {
			if sameValue(el, args[1]) {
				return evaluator.TRUE
			}
		}
		return evaluator.FALSE
	case evaluator.String:
		sub, ok := args[1].(evaluator.String)
		if !ok {
			return wrongTypeOfArgument(evaluator.StringType, args[1].Type())
		}
		return evaluator.NativeBool(strings.Contains(coll.Value, sub.Value))
	case *evaluator.Hash:
		key, ok := args[1].(evaluator.Hashable)
		if !ok {
			return evaluator.NewError("unusable as hash key: %s", args[1].Type())
		}
		_, found := coll.Get(key)
		return evaluator.NativeBool(found)
	}
	return wrongTypeOfArgument(evaluator.ArrayType, args[0].Type())
}

// sameValue follows the language's == rules without raising type mismatches.
func sameValue(a, b evaluator.Value) bool {
	if isNumber(a) && isNumber(b) {
		return toFloat(a) == toFloat(b)
	}
	return a == b
}

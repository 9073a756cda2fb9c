// Package evaluator implements the Orangutan runtime evaluator.
package evaluator

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/ast"
	"github.com/orangutan-lang/orangutan/pkg/formatter"
)

// ValueType is the type tag of a runtime value. It appears in error messages
// and is what the `type` builtin returns.
type ValueType string

const (
	IntegerType  ValueType = "INTEGER"
	NumberType   ValueType = "NUMBER"
	StringType   ValueType = "STRING"
	BooleanType  ValueType = "BOOLEAN"
	NullType     ValueType = "NULL"
	ArrayType    ValueType = "ARRAY"
	HashType     ValueType = "HASH"
	FunctionType ValueType = "FUNCTION"
	BuiltinType  ValueType = "BUILTIN"
	ReturnType   ValueType = "RETURN"
	ErrorType    ValueType = "ERROR"
)

// Value is the interface for all runtime values.
// The sealed marker method restricts implementations to this package.
type Value interface {
	Type() ValueType
	Inspect() string
	oraValue() // sealed marker
}

// Hashable is implemented by the values that can key a Hash.
type Hashable interface {
	Value
	HashKey() HashKey
}

// HashKey is the canonical identity of a hashable value.
type HashKey struct {
	Type  ValueType
	Value string
}

func (k HashKey) String() string {
	return string(k.Type) + ":" + k.Value
}

// --- Scalars ---

// Integer is a 64-bit signed integer.
type Integer struct {
	Value int64
}

func (Integer) Type() ValueType   { return IntegerType }
func (i Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }
func (i Integer) HashKey() HashKey {
	return HashKey{Type: IntegerType, Value: strconv.FormatInt(i.Value, 10)}
}
func (Integer) oraValue() {}

// Number is a 64-bit float.
type Number struct {
	Value float64
}

func (Number) Type() ValueType   { return NumberType }
func (n Number) Inspect() string { return FormatNumber(n.Value) }
func (Number) oraValue()         {}

// String holds text verbatim.
type String struct {
	Value string
}

func (String) Type() ValueType   { return StringType }
func (s String) Inspect() string { return s.Value }

// HashKey uses a sha256 digest so that keys have a fixed size whatever the
// length of the string.
func (s String) HashKey() HashKey {
	sum := sha256.Sum256([]byte(s.Value))
	return HashKey{Type: StringType, Value: hex.EncodeToString(sum[:])}
}
func (String) oraValue() {}

// Boolean is true or false.
type Boolean struct {
	Value bool
}

func (Boolean) Type() ValueType { return BooleanType }
func (b Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b Boolean) HashKey() HashKey {
	if b.Value {
		return HashKey{Type: BooleanType, Value: "1"}
	}
	return HashKey{Type: BooleanType, Value: "0"}
}
func (Boolean) oraValue() {}

// Null is the absence of a value. All Null values are interchangeable.
type Null struct{}

func (Null) Type() ValueType { return NullType }
func (Null) Inspect() string { return "null" }
func (Null) oraValue()       {}

var (
	NULL  Value = Null{}
	TRUE  Value = Boolean{Value: true}
	FALSE Value = Boolean{Value: false}
)

// NativeBool returns the shared Boolean for b.
func NativeBool(b bool) Value {
	if b {
		return TRUE
	}
	return FALSE
}

// --- Collections ---

// Array is a mutable ordered list. Arrays are shared by reference.
type Array struct {
	Elements []Value
}

func (*Array) Type() ValueType { return ArrayType }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = inspectNested(el)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (*Array) oraValue() {}

// HashPair is a stored entry. Key keeps the original key value so that
// `keys` and `entries` can hand it back.
type HashPair struct {
	Key   Hashable
	Value Value
}

// Hash maps hashable values to values. Iteration follows insertion order;
// overwriting a key keeps its original position. Hashes are shared by
// reference.
type Hash struct {
	pairs map[string]HashPair
	order []string
}

// NewHash creates an empty hash.
func NewHash() *Hash {
	return &Hash{pairs: make(map[string]HashPair)}
}

func (*Hash) Type() ValueType { return HashType }
func (h *Hash) Inspect() string {
	parts := make([]string, 0, len(h.order))
	for _, p := range h.Pairs() {
		parts = append(parts, inspectNested(p.Key)+": "+inspectNested(p.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (*Hash) oraValue() {}

// Get returns the value stored under key.
func (h *Hash) Get(key Hashable) (Value, bool) {
	p, ok := h.pairs[key.HashKey().String()]
	if !ok {
		return nil, false
	}
	return p.Value, true
}

// Set inserts or replaces the value under key.
func (h *Hash) Set(key Hashable, val Value) {
	k := key.HashKey().String()
	if _, ok := h.pairs[k]; !ok {
		h.order = append(h.order, k)
	}
	h.pairs[k] = HashPair{Key: key, Value: val}
}

// Len returns the number of entries.
func (h *Hash) Len() int {
	return len(h.order)
}

// Pairs returns the entries in insertion order.
func (h *Hash) Pairs() []HashPair {
	out := make([]HashPair, len(h.order))
	for i, k := range h.order {
		out[i] = h.pairs[k]
	}
	return out
}

// --- Callables ---

// Function is a closure: a function literal together with the environment it
// was defined in and the module file it came from.
type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStmt
	Env        *Environment
	ModulePath string
}

func (*Function) Type() ValueType { return FunctionType }
func (f *Function) Inspect() string {
	return formatter.FormatExpr(&ast.FunctionLiteral{Parameters: f.Parameters, Body: f.Body})
}
func (*Function) oraValue() {}

// BuiltinFunction is the native calling convention. The evaluator is passed
// so that builtins can call back into user functions; modulePath is the file
// currently executing, used to resolve relative paths.
type BuiltinFunction func(ev *Evaluator, env *Environment, modulePath string, args ...Value) Value

// Builtin wraps a native function.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (*Builtin) Type() ValueType { return BuiltinType }
func (*Builtin) Inspect() string { return "builtin function" }
func (*Builtin) oraValue()       {}

// --- Control flow signals ---

// ReturnSignal carries a `return` up to the enclosing function or program.
type ReturnSignal struct {
	Value Value
}

func (*ReturnSignal) Type() ValueType   { return ReturnType }
func (r *ReturnSignal) Inspect() string { return r.Value.Inspect() }
func (*ReturnSignal) oraValue()         {}

// ErrorSignal aborts evaluation up to the host. Span is the position of the
// expression that failed, when known.
type ErrorSignal struct {
	Message string
	Span    *ast.Span
}

func (*ErrorSignal) Type() ValueType   { return ErrorType }
func (e *ErrorSignal) Inspect() string { return "ERROR: " + e.Message }
func (*ErrorSignal) oraValue()         {}

// IsError reports whether v is an ErrorSignal.
func IsError(v Value) bool {
	_, ok := v.(*ErrorSignal)
	return ok
}

func isSignal(v Value) bool {
	switch v.(type) {
	case *ReturnSignal, *ErrorSignal:
		return true
	}
	return false
}

// Truthiness returns the boolean interpretation of a value.
// false and null are falsy; everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case Null:
		return false
	case Boolean:
		return val.Value
	default:
		return true
	}
}

// inspectNested quotes strings so that container output stays unambiguous.
func inspectNested(v Value) string {
	if s, ok := v.(String); ok {
		return `"` + s.Value + `"`
	}
	return v.Inspect()
}

// FormatNumber returns the shortest decimal form of n, using an exponent only
// for very large or very small magnitudes.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	abs := math.Abs(n)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

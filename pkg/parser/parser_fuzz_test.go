package parser_test

import (
	"testing"

	"github.com/orangutan-lang/orangutan/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; invalid input yields diagnostics.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`42`,
		`let x = 1; x`,
		`let x;`,
		`return;`,
		`{"a": 1, "b": "hello"}`,
		`[1, 2, 3][0]`,
		`let add = fn(a, b) { a + b }; add(1, 2)`,
		`if (x > 1) { 1 } else if (x < 0) { 2 } else { 3 }`,
		`while (i < 10) { i = i + 1 }`,
		`let m = use("lib/math"); m.add(1, 2)`,
		`[1, 2] |> map(fn(x) { x * 2 }) |> len`,
		`h.k = 5`,
		`// just a comment`,
		`f(1, 2,)`,
		`{`,
		`fn(`,
		`let = ;`,
		`((((`,
		`-!-!x`,
		`"unterminated`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on input %q: %v", input, r)
				}
			}()
			prog, _ := parser.Parse(input, "fuzz.ora")
			if prog == nil {
				t.Fatalf("Parse(%q) returned nil program", input)
			}
		}()
	})
}

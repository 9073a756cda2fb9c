package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic and must always terminate with EOF.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		`fn let true false if else return use null while`,
		`42 3.14 0 7.`,
		`"hello" "" "unterminated`,
		`= == ! != < <= > >= && || |> : :: & |`,
		`{ } [ ] ( ) , ; .`,
		`x foo bar_baz myVar`,
		`// comment`,
		"let x = 1;\nlet y = 2;\r\n",
		``,
		`   `,
		"\t\n\r",
		`@#$^`,
		"\x00",
		`"""`,
		`use("lib/math") |> puts`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			tokens := Tokenize(input)
			if tokens[len(tokens)-1].Type != TokEOF {
				t.Fatalf("Tokenize(%q) did not end with EOF", input)
			}
			if len(tokens) > len(input)+1 {
				t.Fatalf("Tokenize(%q) produced %d tokens for %d bytes", input, len(tokens), len(input))
			}
		}()
	})
}

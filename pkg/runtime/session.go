package runtime

import (
	"context"

	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/lexer"
	"github.com/orangutan-lang/orangutan/pkg/parser"
)

// Session keeps one global environment across evaluations, as the REPL
// needs: each input sees the bindings made by earlier ones.
type Session struct {
	rt       *Runtime
	env      *evaluator.Environment
	filename string
}

// NewSession starts an interactive session. filename labels diagnostics.
func (rt *Runtime) NewSession(filename string) *Session {
	return &Session{rt: rt, env: evaluator.NewEnvironment(nil), filename: filename}
}

// Complete reports whether source can be evaluated as is. It is false only
// when the parser ran out of input, e.g. inside an unclosed block; other
// syntax errors count as complete so that Eval reports them.
func (s *Session) Complete(source string) bool {
	p := parser.New(lexer.New(source), s.filename)
	p.ParseProgram()
	return !p.Incomplete()
}

// Eval evaluates one input in the session environment. A runtime error
// leaves the bindings made before it in place.
func (s *Session) Eval(ctx context.Context, source string) (evaluator.Value, error) {
	program, diags := parser.Parse(source, s.filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	ev, err := s.rt.newEvaluator()
	if err != nil {
		return nil, err
	}
	val := ev.Run(ctx, program, s.env, modulePathFor(s.filename))
	if errSig, ok := val.(*evaluator.ErrorSignal); ok {
		return nil, newRuntimeError(errSig)
	}
	return val, nil
}

// Names lists the bindings made so far, in declaration order.
func (s *Session) Names() []string {
	return s.env.Names()
}

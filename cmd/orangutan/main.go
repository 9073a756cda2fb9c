// Command orangutan is the Orangutan CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/help"
	"github.com/orangutan-lang/orangutan/pkg/lexer"
	"github.com/orangutan-lang/orangutan/pkg/project"
	"github.com/orangutan-lang/orangutan/pkg/runtime"
)

// Exit codes.
const (
	exitOK         = 0
	exitUsage      = 1
	exitDiagnostic = 2
	exitIO         = 3
	exitRuntime    = 4
)

const usage = `usage: orangutan <command> [options]
commands: run, repl, check, fmt, tokens, trace, new, help`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	code := c.main(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// cli holds the streams a command talks to.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) main(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(c.stderr, usage)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return c.cmdRun(ctx, rest)
	case "repl":
		return c.cmdRepl(ctx, rest)
	case "check":
		return c.cmdCheck(rest)
	case "fmt":
		return c.cmdFmt(rest)
	case "tokens":
		return c.cmdTokens(rest)
	case "trace":
		return c.cmdTrace(ctx, rest)
	case "new":
		return c.cmdNew(rest)
	case "help", "--help", "-h":
		return c.cmdHelp(rest)
	case "version", "--version":
		fmt.Fprintln(c.stdout, "orangutan", help.Version)
		return exitOK
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n%s\n", cmd, usage)
		return exitUsage
	}
}

// flags are the options shared by the commands. Each command rejects the
// ones it does not understand.
type flags struct {
	pretty         bool
	unsafeAllowAll bool
	strict         bool
	verbose        bool
	write          bool
	print          bool
	json           bool
	summary        bool
	index          bool
	out            string
	dir            string
	args           []string
}

func parseFlags(args []string, allowed ...string) (*flags, error) {
	f := &flags{}
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			f.args = append(f.args, arg)
			continue
		}
		if !ok[arg] {
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
		switch arg {
		case "--pretty":
			f.pretty = true
		case "--unsafe-allow-all":
			f.unsafeAllowAll = true
		case "--strict":
			f.strict = true
		case "--verbose":
			f.verbose = true
		case "--write":
			f.write = true
		case "--print":
			f.print = true
		case "--json":
			f.json = true
		case "--summary":
			f.summary = true
		case "--index":
			f.index = true
		case "--out", "--dir":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			if arg == "--out" {
				f.out = args[i]
			} else {
				f.dir = args[i]
			}
		}
	}
	return f, nil
}

func (c *cli) usageError(err error, line string) int {
	if err != nil {
		fmt.Fprintf(c.stderr, "error: %s\n", err)
	}
	fmt.Fprintln(c.stderr, line)
	return exitUsage
}

func (c *cli) logger(f *flags) *slog.Logger {
	if !f.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newRuntime builds a runtime for file, applying the nearest orangutan.yml
// above it when there is one.
func (c *cli) newRuntime(f *flags, file string, extra ...runtime.Option) (*runtime.Runtime, int) {
	logger := c.logger(f)
	opts := []runtime.Option{runtime.WithStdout(c.stdout), runtime.WithLogger(logger)}

	dir := "."
	if file != "" && file != "-" {
		dir = filepath.Dir(file)
	}
	m, err := project.Find(dir)
	switch {
	case err == nil:
		logger.Debug("using manifest", "path", m.Path, "project", m.Name)
		opts = append(opts, runtime.WithProject(m))
	case !errors.Is(err, project.ErrNoManifest):
		c.printDiags([]diagnostics.Diagnostic{manifestDiag(err)}, f.pretty)
		return nil, exitDiagnostic
	}

	if f.unsafeAllowAll {
		opts = append(opts, runtime.WithUnsafeAllowAll())
	}
	if f.strict {
		opts = append(opts, runtime.WithStrict())
	}
	opts = append(opts, extra...)
	return runtime.New(opts...), exitOK
}

func (c *cli) cmdRun(ctx context.Context, args []string) int {
	const line = "usage: orangutan run [file.ora|-] [--pretty] [--strict] [--unsafe-allow-all] [--print|--json] [--verbose]"
	f, err := parseFlags(args, "--pretty", "--unsafe-allow-all", "--strict", "--verbose", "--print", "--json")
	if err != nil || len(f.args) > 1 {
		return c.usageError(err, line)
	}

	var file string
	if len(f.args) == 1 {
		file = f.args[0]
	} else {
		m, err := project.Find(".")
		if err != nil {
			if errors.Is(err, project.ErrNoManifest) {
				return c.usageError(errors.New("no file given and no "+project.FileName+" found"), line)
			}
			c.printDiags([]diagnostics.Diagnostic{manifestDiag(err)}, f.pretty)
			return exitDiagnostic
		}
		file = m.EntryPath()
	}

	source, filename, code := c.readSource(file, f.pretty)
	if code != exitOK {
		return code
	}
	rt, code := c.newRuntime(f, file)
	if code != exitOK {
		return code
	}

	result, err := rt.Run(ctx, source, filename)
	if err != nil {
		return c.reportError(err, f.pretty)
	}
	return c.printResult(result.Value, f)
}

func (c *cli) printResult(val evaluator.Value, f *flags) int {
	switch {
	case f.json:
		b, err := evaluator.ValueToJSON(val)
		if err != nil {
			fmt.Fprintf(c.stderr, "error serializing result: %s\n", err)
			return exitRuntime
		}
		fmt.Fprintln(c.stdout, string(b))
	case f.print:
		if _, isNull := val.(evaluator.Null); !isNull {
			fmt.Fprintln(c.stdout, val.Inspect())
		}
	}
	return exitOK
}

func (c *cli) cmdCheck(args []string) int {
	f, err := parseFlags(args, "--pretty")
	if err != nil || len(f.args) != 1 {
		return c.usageError(err, "usage: orangutan check <file.ora> [--pretty]")
	}

	source, filename, code := c.readSource(f.args[0], f.pretty)
	if code != exitOK {
		return code
	}
	rt, code := c.newRuntime(f, f.args[0])
	if code != exitOK {
		return code
	}

	if diags := rt.Check(source, filename); len(diags) > 0 {
		c.printDiags(diags, f.pretty)
		return exitDiagnostic
	}
	if f.pretty {
		fmt.Fprintln(c.stdout, "No errors found.")
	} else {
		fmt.Fprintln(c.stdout, "[]")
	}
	return exitOK
}

func (c *cli) cmdFmt(args []string) int {
	f, err := parseFlags(args, "--write", "--pretty")
	if err != nil || len(f.args) != 1 {
		return c.usageError(err, "usage: orangutan fmt <file.ora> [--write]")
	}
	file := f.args[0]

	source, filename, code := c.readSource(file, f.pretty)
	if code != exitOK {
		return code
	}
	formatted, err := runtime.New().Format(source, filename)
	if err != nil {
		return c.reportError(err, f.pretty)
	}

	if f.write && file != "-" {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			c.printDiags([]diagnostics.Diagnostic{ioDiag("cannot write file: %s", file)}, f.pretty)
			return exitIO
		}
		return exitOK
	}
	fmt.Fprint(c.stdout, formatted)
	return exitOK
}

type tokenJSON struct {
	Type    string `json:"type"`
	Literal string `json:"literal"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (c *cli) cmdTokens(args []string) int {
	f, err := parseFlags(args, "--json")
	if err != nil || len(f.args) != 1 {
		return c.usageError(err, "usage: orangutan tokens <file.ora> [--json]")
	}
	source, _, code := c.readSource(f.args[0], false)
	if code != exitOK {
		return code
	}

	tokens := lexer.Tokenize(source)
	if f.json {
		out := make([]tokenJSON, len(tokens))
		for i, tok := range tokens {
			out[i] = tokenJSON{Type: tok.Type.String(), Literal: tok.Literal, Line: tok.Line, Column: tok.Column}
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(c.stdout, string(b))
		return exitOK
	}
	for _, tok := range tokens {
		fmt.Fprintf(c.stdout, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
	}
	return exitOK
}

func (c *cli) cmdNew(args []string) int {
	f, err := parseFlags(args, "--dir")
	if err != nil || len(f.args) != 1 {
		return c.usageError(err, "usage: orangutan new <name> [--dir <parent>]")
	}
	parent := f.dir
	if parent == "" {
		parent = "."
	}
	dir, err := project.Scaffold(f.args[0], parent)
	if err != nil {
		fmt.Fprintf(c.stderr, "error: %s\n", err)
		return exitIO
	}
	fmt.Fprintf(c.stdout, "Created %s\nRun it with: cd %s && orangutan run\n", dir, dir)
	return exitOK
}

func (c *cli) cmdHelp(args []string) int {
	f, err := parseFlags(args, "--index")
	if err != nil || len(f.args) > 1 {
		return c.usageError(err, "usage: orangutan help [topic] [--index]")
	}
	topic := ""
	if len(f.args) == 1 {
		topic = f.args[0]
	}

	if f.index {
		if topic == "" {
			fmt.Fprintln(c.stderr, "error: --index requires a topic (e.g., orangutan help stdlib --index)")
			return exitUsage
		}
		if name, _, err := help.MatchTopic(topic); err != nil || name != "stdlib" {
			fmt.Fprintln(c.stderr, "error: --index is only supported for the stdlib topic")
			return exitUsage
		}
		fmt.Fprint(c.stdout, help.StdlibIndex())
		return exitOK
	}

	if topic == "" {
		fmt.Fprint(c.stdout, help.QUICKREF)
		return exitOK
	}
	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return exitUsage
	}
	fmt.Fprint(c.stdout, content)
	return exitOK
}

// readSource reads file, or stdin for "-".
func (c *cli) readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			c.printDiags([]diagnostics.Diagnostic{ioDiag("error reading stdin: %s", err)}, pretty)
			return "", "", exitIO
		}
		return string(data), "<stdin>", exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		c.printDiags([]diagnostics.Diagnostic{ioDiag("cannot read file: %s", file)}, pretty)
		return "", "", exitIO
	}
	return string(source), file, exitOK
}

// reportError prints a runtime error as diagnostics and maps it to an exit
// code.
func (c *cli) reportError(err error, pretty bool) int {
	var (
		diagErr *runtime.DiagnosticError
		rtErr   *runtime.RuntimeError
		ioErr   *runtime.IOError
	)
	switch {
	case errors.As(err, &diagErr):
		c.printDiags(diagErr.Diagnostics, pretty)
		return exitDiagnostic
	case errors.As(err, &rtErr):
		c.printDiags([]diagnostics.Diagnostic{rtErr.Diagnostic()}, pretty)
		return exitCodeForDiag(rtErr.Code)
	case errors.As(err, &ioErr):
		c.printDiags([]diagnostics.Diagnostic{ioDiag("cannot read file: %s", ioErr.Path)}, pretty)
		return exitIO
	}
	fmt.Fprintln(c.stderr, err.Error())
	return exitRuntime
}

func (c *cli) printDiags(diags []diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diags, pretty))
}

func exitCodeForDiag(code string) int {
	if code == diagnostics.EIO {
		return exitIO
	}
	return exitRuntime
}

func ioDiag(format string, args ...any) diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf(format, args...), nil, "")
}

func manifestDiag(err error) diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EManifest, err.Error(), nil, "fix "+project.FileName+" or run outside the project")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/help"
	"github.com/orangutan-lang/orangutan/pkg/runtime"
)

const (
	historyFile = ".orangutan_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

func (c *cli) cmdRepl(ctx context.Context, args []string) int {
	f, err := parseFlags(args, "--unsafe-allow-all", "--verbose")
	if err != nil || len(f.args) > 0 {
		return c.usageError(err, "usage: orangutan repl [--unsafe-allow-all] [--verbose]")
	}
	rt, code := c.newRuntime(f, "")
	if code != exitOK {
		return code
	}
	session := rt.NewSession("<repl>")

	fmt.Fprintf(c.stdout, "Orangutan %s. Type :help for commands, :quit to exit.\n", help.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		return completeNames(session, line)
	})

	if hf, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(hf)
		_ = hf.Close()
	}
	defer func() {
		if hf, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(hf)
			_ = hf.Close()
		}
	}()

	for {
		src, ok := readByParseProbe(ln, session)
		if !ok {
			fmt.Fprintln(c.stdout)
			return exitOK
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := c.replCommand(session, trimmed); quit {
				return exitOK
			}
			continue
		}
		c.replEval(ctx, session, src)
	}
}

// replCommand runs a colon command and reports whether the REPL should exit.
func (c *cli) replCommand(session *runtime.Session, cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":env":
		fmt.Fprintln(c.stdout, strings.Join(session.Names(), " "))
	case ":help":
		fmt.Fprintln(c.stdout, ":env   list bindings\n:quit  exit\nanything else is evaluated")
	default:
		fmt.Fprintln(c.stdout, "unknown command. Type :help for commands.")
	}
	return false
}

func (c *cli) replEval(ctx context.Context, session *runtime.Session, src string) {
	val, err := session.Eval(ctx, src)
	if err != nil {
		c.reportError(err, true)
		return
	}
	if _, isNull := val.(evaluator.Null); !isNull {
		fmt.Fprintln(c.stdout, val.Inspect())
	}
}

// readByParseProbe reads lines until they form a complete program. It
// reports false at end of input.
func readByParseProbe(ln *liner.State, session *runtime.Session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || session.Complete(src) {
			return src, true
		}
	}
}

// completeNames offers session bindings that extend the last word of line.
func completeNames(session *runtime.Session, line string) []string {
	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) + 1
	word := line[start:]
	if word == "" {
		return nil
	}
	var out []string
	for _, name := range session.Names() {
		if strings.HasPrefix(name, word) {
			out = append(out, line[:start]+name)
		}
	}
	return out
}

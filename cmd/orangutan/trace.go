package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/orangutan-lang/orangutan/pkg/diagnostics"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
	"github.com/orangutan-lang/orangutan/pkg/runtime"
)

func (c *cli) cmdTrace(ctx context.Context, args []string) int {
	const line = "usage: orangutan trace <file.ora> [--out <trace.jsonl>] [--unsafe-allow-all]\n       orangutan trace --summary <trace.jsonl> [--pretty]"
	f, err := parseFlags(args, "--summary", "--pretty", "--out", "--unsafe-allow-all", "--verbose")
	if err != nil || len(f.args) != 1 {
		return c.usageError(err, line)
	}
	if f.summary {
		return c.traceSummary(f)
	}

	source, filename, code := c.readSource(f.args[0], f.pretty)
	if code != exitOK {
		return code
	}

	var sink io.Writer = c.stderr
	if f.out != "" {
		out, err := os.Create(f.out)
		if err != nil {
			c.printDiags([]diagnostics.Diagnostic{ioDiag("cannot create trace file: %s", f.out)}, f.pretty)
			return exitIO
		}
		defer out.Close()
		sink = out
	}
	enc := json.NewEncoder(sink)
	record := func(ev evaluator.TraceEvent) {
		_ = enc.Encode(ev)
	}

	runID := strconv.FormatInt(time.Now().UnixNano(), 36)
	rt, code := c.newRuntime(f, f.args[0], runtime.WithTrace(record), runtime.WithRunID(runID))
	if code != exitOK {
		return code
	}
	if _, err := rt.Run(ctx, source, filename); err != nil {
		return c.reportError(err, f.pretty)
	}
	return exitOK
}

func (c *cli) traceSummary(f *flags) int {
	file, err := os.Open(f.args[0])
	if err != nil {
		c.printDiags([]diagnostics.Diagnostic{ioDiag("cannot read file: %s", f.args[0])}, f.pretty)
		return exitIO
	}
	defer file.Close()

	summary := computeTraceSummary(file)
	if f.pretty {
		printTraceSummaryText(c.stdout, summary)
		return exitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(c.stdout, string(b))
	return exitOK
}

// TraceSummary aggregates a JSON-lines trace.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	FnCalls        int            `json:"fnCalls"`
	BuiltinCalls   int            `json:"builtinCalls"`
	BuiltinsByName map[string]int `json:"builtinsByName"`
	ModuleLoads    int            `json:"moduleLoads"`
	Errors         []string       `json:"errors,omitempty"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		BuiltinsByName: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
		case evaluator.TraceFnCallStart:
			summary.FnCalls++
		case evaluator.TraceBuiltinCall:
			summary.BuiltinCalls++
			if name := event.Data["fn"]; name != "" {
				summary.BuiltinsByName[name]++
			}
		case evaluator.TraceModuleLoadStart:
			summary.ModuleLoads++
		case evaluator.TraceError:
			summary.Errors = append(summary.Errors, event.Data["message"])
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Function calls: %d\n", s.FnCalls)
	fmt.Fprintf(w, "Builtin calls: %d\n", s.BuiltinCalls)
	names := make([]string, 0, len(s.BuiltinsByName))
	for name := range s.BuiltinsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.BuiltinsByName[name])
	}
	fmt.Fprintf(w, "Modules loaded: %d\n", s.ModuleLoads)
	for _, msg := range s.Errors {
		fmt.Fprintf(w, "Error: %s\n", msg)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

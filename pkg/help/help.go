// Package help holds the reference text printed by `orangutan help`.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is the language version reported by the CLI.
const Version = "v0.3"

// QUICKREF is the overview printed by `orangutan help` with no topic.
var QUICKREF = `Orangutan ` + Version + ` - a small dynamically typed scripting language

USAGE
  orangutan run [file.ora]      run a file, or the project entry from orangutan.yml
  orangutan repl                start an interactive session
  orangutan check <file.ora>    parse and validate without running
  orangutan fmt <file.ora>      print canonical source (--write to rewrite)
  orangutan tokens <file.ora>   dump the token stream
  orangutan trace <file.ora>    run and print trace events as JSON lines
  orangutan new <name>          scaffold a project
  orangutan help [topic]        show a topic

AT A GLANCE
  let greet = fn(name) { "hello " + name };
  let xs = map([1, 2, 3], fn(x) { x * 2 });
  xs |> len |> puts;
  let util = use("lib/util");

TOPICS
  syntax       statements, expressions, operator precedence
  types        value types, truthiness, equality, hash keys
  stdlib       pure builtins (orangutan help stdlib --index for a list)
  tools        host builtins for files and HTTP
  caps         capability policy and orangutan.yml
  modules      use(), search roots, exports
  limits       call depth and loop iteration limits
  diagnostics  error codes and exit codes
  examples     complete programs
`

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax":      topicSyntax,
	"types":       topicTypes,
	"stdlib":      topicStdlib,
	"tools":       topicTools,
	"caps":        topicCaps,
	"modules":     topicModules,
	"limits":      topicLimits,
	"diagnostics": topicDiagnostics,
	"examples":    topicExamples,
}

// TopicList is the display order of Topics.
var TopicList = []string{"syntax", "types", "stdlib", "tools", "caps", "modules", "limits", "diagnostics", "examples"}

// MatchTopic finds a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown help topic: %q", query)
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", fmt.Errorf("ambiguous help topic %q: matches %s", query, strings.Join(matches, ", "))
}

// stdlibCategories groups the builtins for the index. Host tools are listed
// under their own topic.
var stdlibCategories = []struct {
	name  string
	funcs []string
}{
	{"core", []string{"puts", "type", "len", "str", "int", "number"}},
	{"strings", []string{"split", "join"}},
	{"arrays", []string{"append", "prepend", "first", "last", "rest", "map", "filter", "reduce", "sort", "zip", "zipLongest", "range", "contains"}},
	{"hashes", []string{"keys", "values", "entries"}},
	{"math", []string{"max", "min", "abs"}},
	{"json", []string{"parseJson", "toJson"}},
}

// StdlibNames returns every builtin named in the index, sorted.
func StdlibNames() []string {
	var names []string
	for _, c := range stdlibCategories {
		names = append(names, c.funcs...)
	}
	sort.Strings(names)
	return names
}

// StdlibIndex renders the builtins grouped by category.
func StdlibIndex() string {
	var b strings.Builder
	total := 0
	for _, c := range stdlibCategories {
		fmt.Fprintf(&b, "%-8s %s\n", c.name, strings.Join(c.funcs, ", "))
		total += len(c.funcs)
	}
	fmt.Fprintf(&b, "\nTotal: %d functions\n", total)
	return b.String()
}

const topicSyntax = `SYNTAX

Statements
  let x = expr;            declare in the current scope (let x; binds null)
  x = expr;                assign to the nearest scope that declares x
  return expr;             leave the enclosing function (return; gives null)
  while (cond) { ... }     loop; the body runs in the current scope
  expr;                    expression statement
  // comment               line comment

Expressions
  1  2.5  "text"  true  false  null
  [1, 2, 3]   {"a": 1, 2: "b"}
  fn(a, b) { a + b }       functions are closures
  if (c) { ... } else if (d) { ... } else { ... }
  f(x)  xs[0]  h["k"]  h.k  use("path")
  x |> f(a)                same as f(x, a)

Precedence (low to high)
  =  ||  &&  == !=  < <= > >=  + -  * /  %  prefix - !  call [] .

Strings have no escape sequences; their contents are taken verbatim.
Semicolons are optional after the last statement of a block.
`

const topicTypes = `TYPES

  INTEGER   64-bit signed, overflow wraps
  NUMBER    64-bit float; Integer op Number promotes to Number
  STRING    + concatenates
  BOOLEAN   true, false
  NULL      null
  ARRAY     mutable, shared by reference
  HASH      insertion ordered, shared by reference
  FUNCTION  closure over its defining scope
  BUILTIN   native function

Truthiness: only false and null are falsy; 0, "" and [] are truthy.
Equality: scalars compare by value; arrays, hashes and functions by identity.
Hash keys: INTEGER, STRING and BOOLEAN. 1 and "1" are different keys.
Integer / and % truncate toward zero; dividing by zero is an error.
`

const topicStdlib = `STDLIB

Builtins are looked up after all scopes, so a let binding can shadow one.
None of them mutate their arguments.

  puts(a, ...)           print the arguments separated by spaces, returns null
  type(v)                type name, e.g. "INTEGER"
  len(s | xs | h)        length
  str(v) int(v) number(v) conversions
  split(s, sep) join(xs, sep)
  append(xs, v) prepend(xs, v) first(xs) last(xs) rest(xs)
  map(xs, f) filter(xs, f) reduce(xs, f, init) sort(xs)
  zip(a, b) zipLongest(a, b) range(n) range(a, b) contains(xs, v)
  keys(h) values(h) entries(h)
  max(a, ...) min(a, ...) abs(n)
  parseJson(s) toJson(v)

Use orangutan help stdlib --index for a compact list.
`

const topicTools = `TOOLS

Host builtins, each gated by a capability. Relative paths resolve against
the directory of the module that calls them.

  readFile(path)          fs.read   file contents as a string
  writeFile(path, data)   fs.write  writes data (non-strings as JSON),
                                    returns {path, bytes, sha256}
  listDir(path)           fs.read   [{name, type}]
  exists(path)            fs.read   boolean
  get(url)                http      response body
  post(url, body)         http      response body
`

const topicCaps = `CAPABILITIES

  fs.read    read files and directories (allowed by default)
  fs.write   create and overwrite files
  http       outbound HTTP requests

Configure them in orangutan.yml:

  capabilities:
    allow: [fs.write, http]
    deny: [fs.read]

deny wins over allow. --unsafe-allow-all grants everything.
A denied call fails with E_CAP_DENIED.
`

const topicModules = `MODULES

  let util = use("lib/util");
  util.double(2);

use() evaluates a file once per call and returns a hash of its top-level
bindings in declaration order. The module sees builtins and the caller's
scope but its own lets stay private to the hash.

Lookup order: the importing file's directory, then each lib directory from
orangutan.yml, then ORANGUTAN_PATH. The .ora extension is optional.
Import cycles fail with "import cycle detected: a -> b -> a".
`

const topicLimits = `LIMITS

Evaluation is unbounded unless limited in orangutan.yml:

  limits:
    maxCallDepth: 1000
    maxLoopIterations: 1000000

Exceeding a limit fails with E_LIMIT.
`

const topicDiagnostics = `DIAGNOSTICS

  E_PARSE           syntax error
  E_UNBOUND         identifier never declared (check, --strict)
  E_DUP_PARAM       duplicate parameter name
  E_ASSIGN_TARGET   left side of = is not assignable
  E_USE_PATH        use() needs a string literal
  E_RUNTIME         evaluation error
  E_MODULE          module not found or import cycle
  E_CAP_DENIED      capability not granted
  E_IO              file could not be read or written
  E_LIMIT           call depth or loop limit reached
  E_MANIFEST        invalid orangutan.yml

Exit codes: 0 ok, 1 usage, 2 diagnostics, 3 I/O, 4 runtime error.
--pretty prints human readable diagnostics instead of JSON.
`

const topicExamples = `EXAMPLES

Fibonacci
  let fib = fn(n) { if (n < 2) { n } else { fib(n - 1) + fib(n - 2) } };
  puts(fib(15));

Counter closure
  let counter = fn() {
    let n = 0;
    fn() { n = n + 1; n }
  };
  let next = counter();
  next(); next();

Word count
  let words = split(readFile("words.txt"), " ");
  let counts = reduce(words, fn(acc, w) {
    acc[w] = if (contains(keys(acc), w)) { acc[w] + 1 } else { 1 };
    acc
  }, {});
  puts(toJson(counts));
`

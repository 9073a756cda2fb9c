package tools

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orangutan-lang/orangutan/pkg/capabilities"
	"github.com/orangutan-lang/orangutan/pkg/evaluator"
)

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// readFile(path) → STRING
func readFileTool() Def {
	return Def{
		Name:         "readFile",
		CapabilityID: capabilities.FSRead,
		Arity:        1,
		Execute: func(_ context.Context, call Call) (evaluator.Value, error) {
			p, err := stringArg(call.Args, 0)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(resolve(call.Dir, p))
			if err != nil {
				return nil, fmt.Errorf("error reading file: %w", err)
			}
			return evaluator.String{Value: string(data)}, nil
		},
	}
}

// writeFile(path, data) → {"path", "bytes", "sha256"}. Non-string data is
// written as indented JSON.
func writeFileTool() Def {
	return Def{
		Name:         "writeFile",
		CapabilityID: capabilities.FSWrite,
		Arity:        2,
		Execute: func(_ context.Context, call Call) (evaluator.Value, error) {
			p, err := stringArg(call.Args, 0)
			if err != nil {
				return nil, err
			}

			var content string
			if s, ok := call.Args[1].(evaluator.String); ok {
				content = s.Value
			} else {
				raw, err := evaluator.ValueToJSON(call.Args[1])
				if err != nil {
					return nil, fmt.Errorf("error writing to file: %w", err)
				}
				var pretty any
				if err := json.Unmarshal(raw, &pretty); err == nil {
					if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
						raw = indented
					}
				}
				content = string(raw)
			}

			resolved := resolve(call.Dir, p)
			if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
				return nil, fmt.Errorf("error writing to file: %w", err)
			}
			if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("error writing to file: %w", err)
			}

			sum := sha256.Sum256([]byte(content))
			result := evaluator.NewHash()
			result.Set(evaluator.String{Value: "path"}, evaluator.String{Value: resolved})
			result.Set(evaluator.String{Value: "bytes"}, evaluator.Integer{Value: int64(len(content))})
			result.Set(evaluator.String{Value: "sha256"}, evaluator.String{Value: fmt.Sprintf("%x", sum)})
			return result, nil
		},
	}
}

// listDir(path) → ARRAY of {"name", "type"}
func listDirTool() Def {
	return Def{
		Name:         "listDir",
		CapabilityID: capabilities.FSRead,
		Arity:        1,
		Execute: func(_ context.Context, call Call) (evaluator.Value, error) {
			p, err := stringArg(call.Args, 0)
			if err != nil {
				return nil, err
			}
			entries, err := os.ReadDir(resolve(call.Dir, p))
			if err != nil {
				return nil, fmt.Errorf("error listing directory: %w", err)
			}

			items := make([]evaluator.Value, len(entries))
			for i, entry := range entries {
				entryType := "other"
				if entry.IsDir() {
					entryType = "directory"
				} else if entry.Type().IsRegular() {
					entryType = "file"
				}
				item := evaluator.NewHash()
				item.Set(evaluator.String{Value: "name"}, evaluator.String{Value: entry.Name()})
				item.Set(evaluator.String{Value: "type"}, evaluator.String{Value: entryType})
				items[i] = item
			}
			return &evaluator.Array{Elements: items}, nil
		},
	}
}

// exists(path) → BOOLEAN
func existsTool() Def {
	return Def{
		Name:         "exists",
		CapabilityID: capabilities.FSRead,
		Arity:        1,
		Execute: func(_ context.Context, call Call) (evaluator.Value, error) {
			p, err := stringArg(call.Args, 0)
			if err != nil {
				return nil, err
			}
			_, err = os.Stat(resolve(call.Dir, p))
			return evaluator.NativeBool(err == nil), nil
		},
	}
}

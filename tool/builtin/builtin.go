// Package builtin provides ready-made tools usable from crew definitions by
// name: file writing and basic arithmetic.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/hupe1980/agentcrew/tool"
)

// WriteTextFile returns the write_str_to_txt tool, which writes a string to a
// text file, overwriting existing content.
func WriteTextFile() tool.Tool {
	return tool.MustFunctionTool(
		"write_str_to_txt",
		"Writes a string to a txt file. If the file already exists, it will be overwritten with the new data.",
		[]tool.Param{
			{Name: "string_data", Type: tool.String},
			{Name: "txt_filename", Type: tool.String},
		},
		func(_ context.Context, args tool.Args) (any, error) {
			name := args.String("txt_filename")
			if name == "" {
				return nil, errors.New("txt_filename is required")
			}

			if dir := filepath.Dir(name); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create directory: %w", err)
				}
			}

			if err := os.WriteFile(name, []byte(args.String("string_data")), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", name, err)
			}

			return fmt.Sprintf("Data successfully written to %s", name), nil
		},
	)
}

// Add returns a tool adding two integers.
func Add() tool.Tool {
	return tool.MustFunctionTool(
		"add",
		"Adds two integers and returns the result.",
		[]tool.Param{{Name: "a", Type: tool.Int}, {Name: "b", Type: tool.Int}},
		func(_ context.Context, args tool.Args) (any, error) {
			return args.Int("a") + args.Int("b"), nil
		},
	)
}

// Multiply returns a tool multiplying two integers.
func Multiply() tool.Tool {
	return tool.MustFunctionTool(
		"multiply",
		"Multiplies two integers and returns the result.",
		[]tool.Param{{Name: "a", Type: tool.Int}, {Name: "b", Type: tool.Int}},
		func(_ context.Context, args tool.Args) (any, error) {
			return args.Int("a") * args.Int("b"), nil
		},
	)
}

// ComputeLog returns a tool computing the natural logarithm of a positive integer.
func ComputeLog() tool.Tool {
	return tool.MustFunctionTool(
		"compute_log",
		"Calculates the natural logarithm of a given positive integer.",
		[]tool.Param{{Name: "a", Type: tool.Int}},
		func(_ context.Context, args tool.Args) (any, error) {
			a := args.Int("a")
			if a <= 0 {
				return nil, errors.New("input must be a positive integer")
			}
			return math.Log(float64(a)), nil
		},
	)
}

// ByName resolves built-in tools by their tool name.
func ByName(name string) (tool.Tool, bool) {
	switch name {
	case "write_str_to_txt":
		return WriteTextFile(), true
	case "add":
		return Add(), true
	case "multiply":
		return Multiply(), true
	case "compute_log":
		return ComputeLog(), true
	default:
		return nil, false
	}
}

// Names lists the available built-in tool names.
func Names() []string {
	return []string{"write_str_to_txt", "add", "multiply", "compute_log"}
}

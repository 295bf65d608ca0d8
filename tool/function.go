package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentcrew/core"
)

// Args holds the coerced arguments passed to a tool. Accessors return the
// zero value when an argument is absent.
type Args map[string]any

// Int returns the named argument as an int.
func (a Args) Int(name string) int { v, _ := a[name].(int); return v }

// Float returns the named argument as a float64.
func (a Args) Float(name string) float64 { v, _ := a[name].(float64); return v }

// String returns the named argument as a string.
func (a Args) String(name string) string { v, _ := a[name].(string); return v }

// Bool returns the named argument as a bool.
func (a Args) Bool(name string) bool { v, _ := a[name].(bool); return v }

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Responsibilities:
//   - Holds the explicit parameter declaration (name and type per argument)
//   - Invokes the wrapped function with arguments already coerced by ValidateAndCoerce
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	params      []Param
	fn          func(ctx context.Context, args Args) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit declaration.
// It fails with core.ErrSignature when the declaration is incomplete.
//
// Example:
//
//	add, err := tool.NewFunctionTool(
//	  "add",
//	  "Adds two integers and returns the result.",
//	  []tool.Param{{Name: "a", Type: tool.Int}, {Name: "b", Type: tool.Int}},
//	  func(_ context.Context, args tool.Args) (any, error) {
//	    return args.Int("a") + args.Int("b"), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	params []Param,
	fn func(ctx context.Context, args Args) (any, error),
) (*FunctionTool, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: tool %s has no function", core.ErrSignature, name)
	}

	t := &FunctionTool{
		name:        name,
		description: description,
		params:      append([]Param(nil), params...),
		fn:          fn,
	}

	if err := Describe(t); err != nil {
		return nil, err
	}

	return t, nil
}

// MustFunctionTool is NewFunctionTool for declarations fixed at compile time.
func MustFunctionTool(
	name, description string,
	params []Param,
	fn func(ctx context.Context, args Args) (any, error),
) *FunctionTool {
	t, err := NewFunctionTool(name, description, params, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the unique tool name used in tool call routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns a copy of the declared arguments.
func (t *FunctionTool) Parameters() []Param { return append([]Param(nil), t.params...) }

// Call invokes the wrapped function.
func (t *FunctionTool) Call(ctx context.Context, args Args) (any, error) {
	return t.fn(ctx, args)
}

// String returns the serialized signature.
func (t *FunctionTool) String() string { return Signature(t) }

// Registry is an agent's tool set indexed by name, preserving declaration order.
type Registry struct {
	order []Tool
	index map[string]Tool
}

// NewRegistry builds a registry; duplicate names or incomplete declarations
// fail with core.ErrSignature.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{index: make(map[string]Tool, len(tools))}

	for _, t := range tools {
		if err := Describe(t); err != nil {
			return nil, err
		}
		if _, dup := r.index[t.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate tool name %q", core.ErrSignature, t.Name())
		}
		r.index[t.Name()] = t
		r.order = append(r.order, t)
	}

	return r, nil
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Tools returns the tools in declaration order.
func (r *Registry) Tools() []Tool { return append([]Tool(nil), r.order...) }

// Signatures concatenates every tool signature in declaration order.
func (r *Registry) Signatures() string {
	var out string
	for _, t := range r.order {
		out += Signature(t)
	}
	return out
}

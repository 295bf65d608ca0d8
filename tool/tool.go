// Package tool implements the function / tool calling subsystem that lets agents
// invoke Go functions from model output. A tool declares its name, description
// and typed parameters explicitly; calls parsed from <tool_call> envelopes are
// validated and coerced against that declaration before execution.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
)

// Type is the declared type of a tool parameter.
type Type string

const (
	// Int parameters are coerced to Go int.
	Int Type = util.TypeInt
	// String parameters are coerced to Go string.
	String Type = util.TypeString
	// Bool parameters are coerced to Go bool.
	Bool Type = util.TypeBool
	// Float parameters are coerced to Go float64.
	Float Type = util.TypeFloat
)

// Param declares one named, typed tool argument.
type Param struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are handed to agents at construction; the ReAct loop advertises their
// signatures to the model and dispatches matching <tool_call> requests.
type Tool interface {
	// Name returns the unique identifier for this tool within an agent's tool set.
	Name() string

	// Description returns a human-readable description shown to the model.
	Description() string

	// Parameters returns the declared arguments in declaration order.
	Parameters() []Param

	// Call executes the tool with already coerced arguments.
	Call(ctx context.Context, args Args) (any, error)
}

// Error codes carried by ToolError.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeUnknownTool = "UNKNOWN_TOOL"
	CodeMalformed   = "MALFORMED_CALL"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur while resolving, validating or
// executing a tool call.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
	Err     error  `json:"-"`                 // Underlying cause
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap exposes both the taxonomy sentinel for the code and the original cause.
func (e *ToolError) Unwrap() []error {
	var sentinel error
	switch e.Code {
	case CodeValidation:
		sentinel = core.ErrTypeCoercion
		if errors.Is(e.Err, core.ErrUnknownArgument) || errors.Is(e.Err, core.ErrMissingArgument) {
			sentinel = nil
		}
	case CodeExecution:
		sentinel = core.ErrToolExecution
	case CodeUnknownTool:
		sentinel = core.ErrUnknownTool
	case CodeMalformed:
		sentinel = core.ErrMalformedToolCall
	}

	errs := make([]error, 0, 2)
	if sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Call is a single tool invocation request parsed from model output.
type Call struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	ID        int            `json:"id"`
}

// ParseCall decodes a <tool_call> envelope body. The id may be a JSON number
// or a numeric string; a missing id decodes as 0.
func ParseCall(raw string) (Call, error) {
	var envelope struct {
		Name      string          `json:"name"`
		Arguments map[string]any  `json:"arguments"`
		ID        json.RawMessage `json:"id"`
	}

	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return Call{}, &ToolError{Message: fmt.Sprintf("invalid tool call JSON: %v", err), Code: CodeMalformed, Err: err}
	}

	if envelope.Name == "" {
		return Call{}, &ToolError{Message: "tool call has no name", Code: CodeMalformed}
	}

	call := Call{Name: envelope.Name, Arguments: envelope.Arguments}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}

	if len(envelope.ID) > 0 && string(envelope.ID) != "null" {
		id, err := strconv.Atoi(strings.Trim(string(envelope.ID), `"`))
		if err != nil {
			return Call{}, &ToolError{Tool: envelope.Name, Message: fmt.Sprintf("tool call id %s is not an integer", envelope.ID), Code: CodeMalformed, Err: err}
		}
		call.ID = id
	}

	return call, nil
}

// Observation maps tool call ids to their results. Failed calls map to an
// error value of the form {"error": ..., "code": ...}.
type Observation map[int]any

// String renders the observation as `{0: 5, 1: "text"}` with ids in
// ascending order and values JSON encoded.
func (o Observation) String() string {
	ids := make([]int, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	b.WriteString("{")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(id))
		b.WriteString(": ")
		encoded, err := json.Marshal(o[id])
		if err != nil {
			encoded = []byte(strconv.Quote(fmt.Sprint(o[id])))
		}
		b.Write(encoded)
	}
	b.WriteString("}")

	return b.String()
}

// ErrorValue is the observation entry recorded for a failed call.
func ErrorValue(err error) map[string]any {
	code := CodeExecution
	var toolErr *ToolError
	if errors.As(err, &toolErr) && toolErr.Code != "" {
		code = toolErr.Code
	}

	return map[string]any{"error": err.Error(), "code": code}
}

// Signature serializes the tool declaration as
// {"name", "description", "parameters": {"properties": {param: {"type"}}}}.
func Signature(t Tool) string {
	properties := make(map[string]any, len(t.Parameters()))
	for _, p := range t.Parameters() {
		properties[p.Name] = map[string]any{"type": string(p.Type)}
	}

	sig := map[string]any{
		"name":        t.Name(),
		"description": t.Description(),
		"parameters":  map[string]any{"properties": properties},
	}

	// map keys are sorted by encoding/json so the output is deterministic
	out, err := json.Marshal(sig)
	if err != nil {
		return fmt.Sprintf(`{"name":%q}`, t.Name())
	}

	return string(out)
}

// Describe checks that a tool's declaration is complete: a non-empty name,
// uniquely named parameters and a known type for every parameter.
func Describe(t Tool) error {
	if t == nil {
		return fmt.Errorf("%w: nil tool", core.ErrSignature)
	}

	if strings.TrimSpace(t.Name()) == "" {
		return fmt.Errorf("%w: tool name is empty", core.ErrSignature)
	}

	seen := make(map[string]struct{}, len(t.Parameters()))
	for _, p := range t.Parameters() {
		if p.Name == "" {
			return fmt.Errorf("%w: tool %s declares an unnamed parameter", core.ErrSignature, t.Name())
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: tool %s declares parameter %q twice", core.ErrSignature, t.Name(), p.Name)
		}
		if !util.KnownType(string(p.Type)) {
			return fmt.Errorf("%w: tool %s parameter %q has undeclared type %q", core.ErrSignature, t.Name(), p.Name, p.Type)
		}
		seen[p.Name] = struct{}{}
	}

	return nil
}

// ValidateAndCoerce returns a copy of call whose arguments are converted to
// the types t declares. Every declared parameter must be present and no
// undeclared one may appear. The input call is not mutated.
func ValidateAndCoerce(call Call, t Tool) (Call, error) {
	declared := make(map[string]Type, len(t.Parameters()))
	for _, p := range t.Parameters() {
		declared[p.Name] = p.Type
	}

	out := Call{Name: call.Name, ID: call.ID, Arguments: make(map[string]any, len(call.Arguments))}

	for name, value := range call.Arguments {
		typ, ok := declared[name]
		if !ok {
			verr := &ValidationError{
				Field:   name,
				Value:   value,
				Message: "argument is not declared by the tool",
				Err:     core.ErrUnknownArgument,
			}
			return Call{}, &ToolError{Tool: t.Name(), Message: verr.Error(), Code: CodeValidation, Details: verr, Err: verr}
		}

		coerced, err := util.CoerceValue(name, value, string(typ))
		if err != nil {
			return Call{}, &ToolError{Tool: t.Name(), Message: err.Error(), Code: CodeValidation, Details: err, Err: err}
		}

		out.Arguments[name] = coerced
	}

	for _, p := range t.Parameters() {
		if _, ok := call.Arguments[p.Name]; !ok {
			verr := &ValidationError{
				Field:   p.Name,
				Message: "declared argument is missing from the call",
				Err:     core.ErrMissingArgument,
			}
			return Call{}, &ToolError{Tool: t.Name(), Message: verr.Error(), Code: CodeValidation, Details: verr, Err: verr}
		}
	}

	return out, nil
}

// Execute invokes t with args. Errors and panics raised by the tool are
// wrapped in a *ToolError with CodeExecution; a *ToolError returned by the
// tool itself is forwarded unchanged.
func Execute(ctx context.Context, t Tool, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ToolError{
				Tool:    t.Name(),
				Message: fmt.Sprintf("panic: %v", r),
				Code:    CodeExecution,
				Err:     fmt.Errorf("panic recovered: %v", r),
			}
		}
	}()

	result, err = t.Call(ctx, Args(args))
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}

		return nil, &ToolError{Tool: t.Name(), Message: err.Error(), Code: CodeExecution, Err: err}
	}

	return result, nil
}

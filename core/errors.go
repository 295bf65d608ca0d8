package core

import "errors"

var (
	// ErrTypeKind reports a malformed message or dependency argument.
	ErrTypeKind = errors.New("invalid argument kind")
	// ErrSignature reports a tool whose declared schema is incomplete.
	ErrSignature = errors.New("invalid tool signature")
	// ErrUnknownArgument reports a tool call argument the tool does not declare.
	ErrUnknownArgument = errors.New("unknown tool argument")
	// ErrMissingArgument reports a declared tool parameter absent from a call.
	ErrMissingArgument = errors.New("missing tool argument")
	// ErrTypeCoercion reports an argument that cannot be converted to its declared type.
	ErrTypeCoercion = errors.New("tool argument type coercion failed")
	// ErrToolExecution reports a tool callable that returned an error or panicked.
	ErrToolExecution = errors.New("tool execution failed")
	// ErrUnknownTool reports a tool call naming a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrMalformedToolCall reports a tool call envelope that is not valid JSON.
	ErrMalformedToolCall = errors.New("malformed tool call")
	// ErrCyclicDependency reports a crew dependency graph that contains a cycle.
	ErrCyclicDependency = errors.New("cyclic dependency detected in the crew")
	// ErrNestedActivation reports an attempt to activate a crew while another is active.
	ErrNestedActivation = errors.New("a crew is already active")
	// ErrCompletionFailure reports a failed model completion call.
	ErrCompletionFailure = errors.New("completion failed")
	// ErrRoundBudgetExhausted marks a ReAct run that used every round without a final response.
	// It is logged, never returned: the loop falls back to an unframed completion.
	ErrRoundBudgetExhausted = errors.New("round budget exhausted")
)

// Package agent contains the model-driven agents that turn free-form LLM
// output into validated tool calls:
//
//  1. ReactAgent – a bounded Thought / Action / Observation loop
//  2. ToolAgent – a single round of tool calls followed by an answer
//
// Both parse the text protocol emitted by the model: <thought>, one or more
// <tool_call> JSON envelopes and the terminal <response>. Tool failures
// (malformed JSON, unknown tool, bad arguments, tool errors) are fed back as
// observation entries instead of aborting the run, and failed completions
// yield a placeholder answer. Only context cancellation is returned as an error.
package agent

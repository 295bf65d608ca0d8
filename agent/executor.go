package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/tool"
)

// callExecutor resolves, validates and executes the raw <tool_call> bodies
// of one model response. Calls run sequentially in the order they appear.
// Failures never abort the batch: each one is recorded in the observation
// as a tool.ErrorValue so the model can correct itself on the next round.
type callExecutor struct {
	agent    string
	registry *tool.Registry
	logger   logging.Logger
}

// Execute processes every raw call body and returns the collected observation.
// A call whose envelope cannot be decoded is keyed by its position in raws.
// Duplicate ids overwrite earlier results (last write wins).
func (e *callExecutor) Execute(ctx context.Context, raws []string) tool.Observation {
	obs := make(tool.Observation, len(raws))

	for i, raw := range raws {
		if ctx.Err() != nil {
			break
		}

		call, err := tool.ParseCall(raw)
		if err != nil {
			e.logger.Warn("agent.tool_call.malformed", "agent", e.agent, "position", i, "error", err.Error())
			e.record(obs, i, tool.ErrorValue(err))
			continue
		}

		result, err := e.executeOne(ctx, call)
		if err != nil {
			e.record(obs, call.ID, tool.ErrorValue(err))
			continue
		}

		e.record(obs, call.ID, result)
	}

	return obs
}

func (e *callExecutor) executeOne(ctx context.Context, call tool.Call) (any, error) {
	impl, ok := e.registry.Get(call.Name)
	if !ok {
		names := make([]string, 0, e.registry.Len())
		for _, t := range e.registry.Tools() {
			names = append(names, t.Name())
		}

		e.logger.Warn("agent.tool_call.unknown_tool", "agent", e.agent, "tool", call.Name)

		return nil, &tool.ToolError{
			Tool:    call.Name,
			Message: fmt.Sprintf("tool %s not found; available tools: %s", call.Name, strings.Join(names, ", ")),
			Code:    tool.CodeUnknownTool,
		}
	}

	validated, err := tool.ValidateAndCoerce(call, impl)
	if err != nil {
		e.logger.Warn("agent.tool_call.validation_failed", "agent", e.agent, "tool", call.Name, "error", err.Error())
		return nil, err
	}

	e.logger.Info("agent.function.start", "agent", e.agent, "function", call.Name, "function_call_id", call.ID, "arguments", validated.Arguments)

	start := time.Now()
	result, err := tool.Execute(ctx, impl, validated.Arguments)

	e.logCall(call, time.Since(start), err)

	return result, err
}

func (e *callExecutor) logCall(call tool.Call, dur time.Duration, err error) {
	if cl, ok := e.logger.(*logging.CrewLogger); ok {
		cl.WithAgent(e.agent).LogToolCall(call.Name, call.ID, dur, err)
		return
	}

	e.logger.Info(
		"agent.function.executed",
		"agent", e.agent,
		"function", call.Name,
		"function_call_id", call.ID,
		"duration_ms", dur.Milliseconds(),
		"error", err != nil,
	)
}

func (e *callExecutor) record(obs tool.Observation, id int, value any) {
	if _, dup := obs[id]; dup {
		e.logger.Warn("agent.tool_call.duplicate_id", "agent", e.agent, "function_call_id", id)
	}
	obs[id] = value
}

package agent

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/tool"
)

// toolAgentHistoryLength bounds the ToolAgent conversation: system prompt,
// user message and the observation.
const toolAgentHistoryLength = 3

// ToolAgentOptions configures a ToolAgent instance.
type ToolAgentOptions struct {
	Name              string
	Tools             []tool.Tool
	Model             string
	CompletionTimeout time.Duration
	Logger            logging.Logger
}

// ToolAgent performs a single tool round: one tool-framed completion, the
// execution of any requested calls, then one final completion that sees the
// observation. Its history keeps the system message when full.
type ToolAgent struct {
	completer
	registry *tool.Registry
	executor *callExecutor
}

// NewToolAgent creates a single-shot tool agent.
func NewToolAgent(llm model.Model, optFns ...func(o *ToolAgentOptions)) (*ToolAgent, error) {
	opts := ToolAgentOptions{
		Model:             model.DefaultModelID,
		CompletionTimeout: DefaultCompletionTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if llm == nil {
		return nil, errors.New("tool agent requires a model")
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, err
	}

	logger := logging.OrNoOp(opts.Logger)

	return &ToolAgent{
		completer: completer{
			name:    opts.Name,
			llm:     llm,
			modelID: opts.Model,
			timeout: opts.CompletionTimeout,
			logger:  logger,
		},
		registry: registry,
		executor: &callExecutor{agent: opts.Name, registry: registry, logger: logger},
	}, nil
}

// Run answers userMsg using at most one round of tool calls.
func (a *ToolAgent) Run(ctx context.Context, userMsg string) (string, error) {
	system := util.MustRenderTemplate(toolSystemPrompt, map[string]string{"Tools": a.registry.Signatures()})

	history := core.NewHistory(
		[]core.Message{core.SystemMessage(system), core.UserMessage(userMsg)},
		func(o *core.HistoryOptions) {
			o.MaxLength = toolAgentHistoryLength
			o.Eviction = core.PreserveFirst
		},
	)

	resp, err := a.complete(ctx, history.Snapshot())
	if err != nil {
		return "", err
	}

	if calls := util.ExtractTagContent(resp, "tool_call"); calls.Found {
		obs := a.executor.Execute(ctx, calls.Content)
		a.logger.Info("tool_agent.observation", "agent", a.name, "observation", obs.String())

		if err := history.Append(core.UserMessage("Observations " + obs.String())); err != nil {
			return "", err
		}
	}

	return a.complete(ctx, history.Snapshot())
}

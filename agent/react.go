package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/tool"
)

// Defaults applied by NewReactAgent.
const (
	DefaultMaxIterations     = 20
	DefaultCompletionTimeout = 60 * time.Second
)

// ReactAgentOptions configures a ReactAgent instance.
//
// Use functional options with NewReactAgent to override defaults.
type ReactAgentOptions struct {
	// Name identifies the agent in logs.
	Name string
	// SystemPrompt is the agent's own instruction (backstory). Tool framing is appended to it.
	SystemPrompt string
	// Tools available to the model. An empty set disables tool parsing.
	Tools []tool.Tool
	// Model is the provider model identifier sent with every request.
	Model string
	// MaxIterations bounds the number of tool-parsing rounds.
	MaxIterations int
	// CompletionTimeout bounds each completion call. Zero disables the timeout.
	CompletionTimeout time.Duration
	// HistoryMaxLength caps the conversation buffer; <= 0 is unbounded.
	HistoryMaxLength int
	// Eviction selects the history eviction policy when HistoryMaxLength is set.
	Eviction core.EvictionPolicy
	Logger   logging.Logger
}

// ReactAgent runs the Thought / Action / Observation loop over a completion
// model. Each Run uses a fresh conversation history; the agent itself holds
// no per-run state and may be reused.
type ReactAgent struct {
	completer
	systemPrompt  string
	registry      *tool.Registry
	executor      *callExecutor
	maxIterations int
	historyMax    int
	eviction      core.EvictionPolicy
}

// NewReactAgent creates a ReAct agent. It fails with core.ErrSignature when
// the tool set contains incomplete declarations or duplicate names.
func NewReactAgent(llm model.Model, optFns ...func(o *ReactAgentOptions)) (*ReactAgent, error) {
	opts := ReactAgentOptions{
		Model:             model.DefaultModelID,
		MaxIterations:     DefaultMaxIterations,
		CompletionTimeout: DefaultCompletionTimeout,
		Eviction:          core.EvictOldest,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if llm == nil {
		return nil, errors.New("react agent requires a model")
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, err
	}

	logger := logging.OrNoOp(opts.Logger)

	return &ReactAgent{
		completer: completer{
			name:    opts.Name,
			llm:     llm,
			modelID: opts.Model,
			timeout: opts.CompletionTimeout,
			logger:  logger,
		},
		systemPrompt:  opts.SystemPrompt,
		registry:      registry,
		executor:      &callExecutor{agent: opts.Name, registry: registry, logger: logger},
		maxIterations: opts.MaxIterations,
		historyMax:    opts.HistoryMaxLength,
		eviction:      opts.Eviction,
	}, nil
}

// Tools returns the agent's tool set in declaration order.
func (a *ReactAgent) Tools() []tool.Tool { return a.registry.Tools() }

// MaxIterations returns the round budget.
func (a *ReactAgent) MaxIterations() int { return a.maxIterations }

// SystemPrompt returns the full system prompt, including tool framing when
// the agent has tools.
func (a *ReactAgent) SystemPrompt() string {
	if a.registry.Len() == 0 {
		return a.systemPrompt
	}

	framing := util.MustRenderTemplate(reactSystemPrompt, map[string]string{"Tools": a.registry.Signatures()})

	return a.systemPrompt + "\n" + framing
}

// Run answers userMsg. With tools it iterates up to MaxIterations rounds,
// returning the first <response> found; when the budget runs out it asks
// for one last completion without tool framing and returns it verbatim.
// Without tools a single completion determines the output.
//
// Failed completions yield the placeholder "Error in generating response"
// rather than an error; only cancellation of ctx is returned.
func (a *ReactAgent) Run(ctx context.Context, userMsg string) (string, error) {
	history := core.NewHistory(
		[]core.Message{
			core.SystemMessage(a.SystemPrompt()),
			core.NewMessage(core.RoleUser, userMsg, "question"),
		},
		func(o *core.HistoryOptions) {
			o.MaxLength = a.historyMax
			o.Eviction = a.eviction
		},
	)

	if a.registry.Len() == 0 {
		return a.complete(ctx, history.Snapshot())
	}

	for round := 0; round < a.maxIterations; round++ {
		a.logger.Debug("react.round.start", "agent", a.name, "round", round)

		resp, err := a.complete(ctx, history.Snapshot())
		if err != nil {
			return "", err
		}

		if final := util.ExtractTagContent(resp, "response"); final.Found {
			a.logger.Debug("react.round.final", "agent", a.name, "round", round)
			return final.First(), nil
		}

		thought := util.ExtractTagContent(resp, "thought")
		calls := util.ExtractTagContent(resp, "tool_call")

		if thought.Found {
			a.logger.Info("react.thought", "agent", a.name, "thought", thought.First())
			if err := history.Append(core.NewMessage(core.RoleAssistant, thought.First(), "thought")); err != nil {
				return "", err
			}
		}

		if calls.Found {
			obs := a.executor.Execute(ctx, calls.Content)
			a.logger.Info("react.observation", "agent", a.name, "round", round, "observation", obs.String())
			if err := history.Append(core.NewMessage(core.RoleUser, obs.String(), "observation")); err != nil {
				return "", err
			}
		}

		if !thought.Found && !calls.Found {
			if err := history.Append(core.AssistantMessage(resp)); err != nil {
				return "", err
			}
		}
	}

	a.logger.Warn("react.round_budget.exhausted", "agent", a.name, "rounds", a.maxIterations, "error", core.ErrRoundBudgetExhausted.Error())

	return a.complete(ctx, a.unframed(history.Snapshot()))
}

// unframed swaps the tool-framed system message for the plain system prompt,
// dropping it entirely when the agent has no prompt of its own.
func (a *ReactAgent) unframed(msgs []core.Message) []core.Message {
	out := make([]core.Message, 0, len(msgs))
	for i, msg := range msgs {
		if i == 0 && msg.Role == core.RoleSystem {
			if a.systemPrompt != "" {
				out = append(out, core.SystemMessage(a.systemPrompt))
			}
			continue
		}
		out = append(out, msg)
	}
	return out
}

// completer issues completion requests with a per-call timeout and turns
// provider failures into the placeholder text.
type completer struct {
	name    string
	llm     model.Model
	modelID string
	timeout time.Duration
	logger  logging.Logger
}

// complete returns the completion text, or completionFailedText when the
// provider fails. The error is non-nil only when ctx itself is done.
func (c *completer) complete(ctx context.Context, msgs []core.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.llm.Complete(callCtx, model.Request{Model: c.modelID, Messages: msgs})
	dur := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		err = fmt.Errorf("%w: %w", core.ErrCompletionFailure, err)
		c.logCall(dur, err)

		return completionFailedText, nil
	}

	c.logCall(dur, nil)

	return out, nil
}

func (c *completer) logCall(dur time.Duration, err error) {
	if cl, ok := c.logger.(*logging.CrewLogger); ok {
		cl.WithAgent(c.name).LogLLMCall(c.modelID, dur, err)
		return
	}

	if err != nil {
		c.logger.Error("llm.call.failed", "agent", c.name, "model", c.modelID, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}

	c.logger.Debug("llm.call.completed", "agent", c.name, "model", c.modelID, "duration_ms", dur.Milliseconds())
}

package crew

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/agent"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/tool"
)

const agentPromptTemplate = `You are an AI agent. You are part of a team of agents working together to complete a task.
I'm going to give you the task description enclosed in <task_description></task_description> tags. I'll also give
you the available context from the other agents in <context></context> tags. If the context
is not available, the <context></context> tags will be empty. You'll also receive the task
expected output enclosed in <task_expected_output></task_expected_output> tags. With all this information
you need to create the best possible response, always respecting the format as described in
<task_expected_output></task_expected_output> tags. If expected output is not available, just create
a meaningful response to complete the task.

<task_description>
{{.TaskDescription}}
</task_description>

<task_expected_output>
{{.ExpectedOutput}}
</task_expected_output>

<context>
{{.Context}}
</context>

Your response:`

// AgentOptions configures an Agent node.
type AgentOptions struct {
	// Backstory becomes the system prompt of the agent's ReAct loop.
	Backstory       string
	TaskDescription string
	ExpectedOutput  string
	Tools           []tool.Tool
	// Model is the provider model identifier.
	Model             string
	MaxIterations     int
	CompletionTimeout time.Duration
	Logger            logging.Logger
}

// Agent is one node of a crew's dependency graph: a task wrapped around a
// ReAct loop. Edges are recorded symmetrically; the accumulated context is
// append-only and filled by upstream agents as they finish.
type Agent struct {
	name           string
	backstory      string
	task           string
	expectedOutput string
	modelID        string
	react          *agent.ReactAgent
	logger         logging.Logger

	mu           sync.Mutex
	dependencies []*Agent
	dependents   []*Agent
	context      strings.Builder
}

// NewAgent creates an agent node and registers it with c. Registration only
// takes effect while c is the active crew; a nil crew yields an unmanaged agent.
func NewAgent(c *Crew, name string, llm model.Model, optFns ...func(o *AgentOptions)) (*Agent, error) {
	opts := AgentOptions{
		Model:             model.DefaultModelID,
		MaxIterations:     agent.DefaultMaxIterations,
		CompletionTimeout: agent.DefaultCompletionTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: agent name is empty", core.ErrTypeKind)
	}

	logger := logging.OrNoOp(opts.Logger)
	if opts.Logger == nil && c != nil {
		logger = c.logger
	}

	react, err := agent.NewReactAgent(llm, func(o *agent.ReactAgentOptions) {
		o.Name = name
		o.SystemPrompt = opts.Backstory
		o.Tools = opts.Tools
		o.Model = opts.Model
		o.MaxIterations = opts.MaxIterations
		o.CompletionTimeout = opts.CompletionTimeout
		o.Logger = logger
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	a := &Agent{
		name:           name,
		backstory:      opts.Backstory,
		task:           opts.TaskDescription,
		expectedOutput: opts.ExpectedOutput,
		modelID:        opts.Model,
		react:          react,
		logger:         logger,
	}

	if c != nil {
		c.Register(a)
	}

	return a, nil
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// String implements fmt.Stringer.
func (a *Agent) String() string { return a.name }

// Backstory returns the agent's system prompt.
func (a *Agent) Backstory() string { return a.backstory }

// TaskDescription returns the task the agent works on.
func (a *Agent) TaskDescription() string { return a.task }

// ExpectedOutput returns the expected output format description.
func (a *Agent) ExpectedOutput() string { return a.expectedOutput }

// Model returns the provider model identifier.
func (a *Agent) Model() string { return a.modelID }

// Tools returns the agent's tool set.
func (a *Agent) Tools() []tool.Tool { return a.react.Tools() }

// Dependencies returns the agents this agent depends on.
func (a *Agent) Dependencies() []*Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Agent(nil), a.dependencies...)
}

// Dependents returns the agents depending on this agent.
func (a *Agent) Dependents() []*Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Agent(nil), a.dependents...)
}

// AddDependency records that a depends on every agent in others, and that
// each of them has a as a dependent. It fails with core.ErrTypeKind when
// others is empty or contains nil; no edge is added in that case.
func (a *Agent) AddDependency(others ...*Agent) error {
	if err := checkNodes("dependency", others); err != nil {
		return err
	}

	for _, o := range others {
		a.appendDependency(o)
		o.appendDependent(a)
	}

	return nil
}

// AddDependent records that every agent in others depends on a.
// Validation matches AddDependency.
func (a *Agent) AddDependent(others ...*Agent) error {
	if err := checkNodes("dependent", others); err != nil {
		return err
	}

	for _, o := range others {
		a.appendDependent(o)
		o.appendDependency(a)
	}

	return nil
}

func (a *Agent) appendDependency(o *Agent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dependencies = append(a.dependencies, o)
}

func (a *Agent) appendDependent(o *Agent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dependents = append(a.dependents, o)
}

func checkNodes(kind string, others []*Agent) error {
	if len(others) == 0 {
		return fmt.Errorf("%w: the %s must be an agent or a list of agents", core.ErrTypeKind, kind)
	}

	for i, o := range others {
		if o == nil {
			return fmt.Errorf("%w: the %s at position %d is nil", core.ErrTypeKind, kind, i)
		}
	}

	return nil
}

// ReceiveContext appends an upstream agent's output to a's context.
func (a *Agent) ReceiveContext(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(&a.context, "%s received context:\n%s\n", a.name, text)
}

// Context returns the accumulated upstream context.
func (a *Agent) Context() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.context.String()
}

// Prompt renders the task description, expected output and accumulated
// context into the agent instruction template.
func (a *Agent) Prompt() string {
	return util.MustRenderTemplate(agentPromptTemplate, map[string]string{
		"TaskDescription": a.task,
		"ExpectedOutput":  a.expectedOutput,
		"Context":         a.Context(),
	})
}

// Run executes the agent's task and hands the output to every dependent.
// A failed completion still produces output (the placeholder text) which
// is propagated like any other result.
func (a *Agent) Run(ctx context.Context) (string, error) {
	output, err := a.react.Run(ctx, a.Prompt())
	if err != nil {
		return "", err
	}

	for _, dep := range a.Dependents() {
		dep.ReceiveContext(output)
	}

	return output, nil
}

// Chain links agents into a pipeline: each agent becomes a dependency of the
// next one.
func Chain(agents ...*Agent) error {
	if err := checkNodes("chain element", agents); err != nil {
		return err
	}

	for i := 0; i+1 < len(agents); i++ {
		if err := agents[i].AddDependent(agents[i+1]); err != nil {
			return err
		}
	}

	return nil
}

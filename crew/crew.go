package crew

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
)

// ErrUnregisteredDependency reports an agent that depends on an agent which
// was never registered with the crew.
var ErrUnregisteredDependency = errors.New("dependency is not registered with the crew")

// active is the process-wide registration slot. At most one crew holds it.
var active struct {
	mu   sync.Mutex
	crew *Crew
}

// Options configures a Crew.
type Options struct {
	Logger logging.Logger
}

// Crew is the scoped registry and topological executor for a set of agents.
// Agents register in declaration order while the crew is active; Run
// executes them one at a time in dependency order.
type Crew struct {
	id     string
	logger logging.Logger

	mu     sync.Mutex
	agents []*Agent
}

// Result is the output of one agent in a crew run.
type Result struct {
	Agent    string
	Output   string
	Duration time.Duration
}

// New creates an inactive crew.
func New(optFns ...func(o *Options)) *Crew {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Crew{id: core.NewID(), logger: logging.OrNoOp(opts.Logger)}
}

// ID returns the crew identifier used to correlate log entries.
func (c *Crew) ID() string { return c.id }

// Activate makes c the registration target for new agents. It fails with
// core.ErrNestedActivation while any crew, including c, is already active.
func (c *Crew) Activate() error {
	active.mu.Lock()
	defer active.mu.Unlock()

	if active.crew != nil {
		return fmt.Errorf("%w: crew %s", core.ErrNestedActivation, active.crew.id)
	}

	active.crew = c
	c.logger.Debug("crew.activate", "crew", c.id)

	return nil
}

// Deactivate releases the registration slot if c holds it. It is a no-op
// when c is inactive or another crew holds the slot, so a stray Deactivate
// cannot end someone else's scope.
func (c *Crew) Deactivate() {
	active.mu.Lock()
	defer active.mu.Unlock()

	if active.crew == c {
		active.crew = nil
		c.logger.Debug("crew.deactivate", "crew", c.id)
	}
}

// IsActive reports whether c currently holds the registration slot.
func (c *Crew) IsActive() bool {
	active.mu.Lock()
	defer active.mu.Unlock()
	return active.crew == c
}

// Active returns the currently active crew, or nil.
func Active() *Crew {
	active.mu.Lock()
	defer active.mu.Unlock()
	return active.crew
}

// Scope activates c, calls fn and deactivates c again, even when fn fails
// or panics.
func (c *Crew) Scope(fn func(c *Crew) error) error {
	if err := c.Activate(); err != nil {
		return err
	}
	defer c.Deactivate()

	return fn(c)
}

// Register appends a to the crew when c is the active crew and reports
// whether it did. Outside an active scope it is a no-op.
func (c *Crew) Register(a *Agent) bool {
	if a == nil || !c.IsActive() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents = append(c.agents, a)

	return true
}

// Agents returns the registered agents in declaration order.
func (c *Crew) Agents() []*Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Agent(nil), c.agents...)
}

// TopologicalOrder returns the registered agents ordered so that every agent
// follows all of its dependencies. Agents that become ready at the same time
// keep registration order. It fails with core.ErrCyclicDependency when the
// graph has a cycle and ErrUnregisteredDependency when an edge leaves the crew.
func (c *Crew) TopologicalOrder() ([]*Agent, error) {
	agents := c.Agents()

	indegree := make(map[*Agent]int, len(agents))
	for _, a := range agents {
		indegree[a] = len(a.Dependencies())
	}

	for _, a := range agents {
		for _, dep := range a.Dependencies() {
			if _, ok := indegree[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnregisteredDependency, a.name, dep.name)
			}
		}
	}

	queue := make([]*Agent, 0, len(agents))
	for _, a := range agents {
		if indegree[a] == 0 {
			queue = append(queue, a)
		}
	}

	sorted := make([]*Agent, 0, len(agents))
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		sorted = append(sorted, a)

		for _, dep := range a.Dependents() {
			if _, ok := indegree[dep]; !ok {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(sorted) != len(agents) {
		return nil, fmt.Errorf("%w: %d of %d agents could not be ordered", core.ErrCyclicDependency, len(agents)-len(sorted), len(agents))
	}

	return sorted, nil
}

// Run executes every registered agent sequentially in topological order.
// Each agent's output reaches its dependents before they run. A structural
// error aborts the run before any agent executes; cancellation of ctx stops
// it between or during agents and returns the results gathered so far.
func (c *Crew) Run(ctx context.Context) ([]Result, error) {
	order, err := c.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	runID := core.NewID()
	c.logger.Info("crew.run.start", "crew", c.id, "run_id", runID, "agents", len(order))

	results := make([]Result, 0, len(order))
	for i, a := range order {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		c.logger.Info("crew.agent.run", "crew", c.id, "run_id", runID, "agent", a.name, "position", i)

		start := time.Now()
		output, err := a.Run(ctx)
		dur := time.Since(start)

		c.logAgentRun(runID, a.name, dur, output, err)

		if err != nil {
			return results, fmt.Errorf("agent %s: %w", a.name, err)
		}

		results = append(results, Result{Agent: a.name, Output: output, Duration: dur})
	}

	c.logger.Info("crew.run.complete", "crew", c.id, "run_id", runID, "agents", len(results))

	return results, nil
}

func (c *Crew) logAgentRun(runID, name string, dur time.Duration, output string, err error) {
	if cl, ok := c.logger.(*logging.CrewLogger); ok {
		cl.WithRun(runID).LogAgentRun(name, dur, len(output), err)
		return
	}

	if err != nil {
		c.logger.Error("crew.agent.failed", "run_id", runID, "agent", name, "error", err.Error())
		return
	}

	c.logger.Info("crew.agent.completed", "run_id", runID, "agent", name, "duration_ms", dur.Milliseconds(), "result", output)
}

// WriteDOT renders the dependency graph in Graphviz DOT format: one node per
// registered agent and one edge from each dependency to its dependent.
func (c *Crew) WriteDOT(w io.Writer) error {
	agents := c.Agents()

	if _, err := io.WriteString(w, "digraph crew {\n"); err != nil {
		return err
	}

	for _, a := range agents {
		if _, err := fmt.Fprintf(w, "  %s;\n", strconv.Quote(a.name)); err != nil {
			return err
		}
	}

	for _, a := range agents {
		for _, dep := range a.Dependencies() {
			if _, err := fmt.Fprintf(w, "  %s -> %s;\n", strconv.Quote(dep.name), strconv.Quote(a.name)); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "}\n")

	return err
}

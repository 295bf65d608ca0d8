// Package crew coordinates agents that run in dependency order and pass
// their textual output to one another.
//
// A Crew is a scoped registry: agents created with NewAgent while the crew is
// active (Activate / Scope) are registered in declaration order. Run computes
// a topological order (Kahn's algorithm, ties broken by registration order)
// and executes agents strictly one at a time; each output is appended to the
// context of every dependent before the dependent runs.
//
//	c := crew.New()
//	err := c.Scope(func(c *crew.Crew) error {
//		poet, _ := crew.NewAgent(c, "Poet", llm, ...)
//		translator, _ := crew.NewAgent(c, "Translator", llm, ...)
//		if err := crew.Chain(poet, translator); err != nil {
//			return err
//		}
//		_, err := c.Run(ctx)
//		return err
//	})
//
// Only one crew may be active per process; nested activation fails with
// core.ErrNestedActivation.
package crew

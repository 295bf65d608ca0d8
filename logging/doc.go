// Package logging provides the logging interface and adapters for agentcrew.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the crew scheduler, the ReAct loop and the model adapters use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - CrewLogger with agent/run context and tool/model/agent helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text")
//	c := crew.New(func(o *crew.Options) { o.Logger = logger })
package logging

package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

// DefaultModelID is the model identifier agents use when none is configured.
const DefaultModelID = "llama-3.3-70b-versatile"

// Request captures the normalized model input produced by agents.
type Request struct {
	Model    string         `json:"model"`    // Provider model identifier; adapters fall back to their default when empty
	Messages []core.Message `json:"messages"` // Ordered conversation, system message first
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "groq", "mock", ...
}

// Model is the completion collaborator driven by agents. Complete blocks
// until the provider answers or ctx is done.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Func adapts an ordinary function to the Model interface.
type Func func(ctx context.Context, req Request) (string, error)

// Complete implements Model.
func (f Func) Complete(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// Info implements Model.
func (f Func) Info() Info { return Info{Name: "func", Provider: "func"} }

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// It replays scripted completions in order and records every request.
// Once the script is exhausted it answers "Mock response to: <last message>".
type MockModel struct {
	info     Info
	mu       sync.Mutex
	script   []mockStep
	requests []Request
}

type mockStep struct {
	text string
	err  error
}

// NewMockModel constructs a MockModel that replays responses in order.
func NewMockModel(responses ...string) *MockModel {
	m := &MockModel{info: Info{Name: "mock", Provider: "mock"}}
	m.AddResponses(responses...)
	return m
}

// AddResponses appends scripted completions.
func (m *MockModel) AddResponses(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range responses {
		m.script = append(m.script, mockStep{text: r})
	}
}

// AddError appends a scripted failure.
func (m *MockModel) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := Request{Model: req.Model, Messages: append([]core.Message(nil), req.Messages...)}
	m.requests = append(m.requests, snapshot)

	if len(req.Messages) == 0 {
		return "", errors.New("no messages provided")
	}

	if len(m.script) == 0 {
		return fmt.Sprintf("Mock response to: %s", req.Messages[len(req.Messages)-1].Content), nil
	}

	step := m.script[0]
	m.script = m.script[1:]

	return step.text, step.err
}

// Requests returns every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Calls returns the number of Complete invocations.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

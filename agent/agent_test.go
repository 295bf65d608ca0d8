package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/model"
	"github.com/hupe1980/agentcrew/tool"
)

// MockTool records calls dispatched by the agent.
type MockTool struct {
	mock.Mock
	name   string
	params []tool.Param
}

func NewMockTool(name string, params ...tool.Param) *MockTool {
	return &MockTool{name: name, params: params}
}

func (m *MockTool) Name() string { return m.name }
func (m *MockTool) Description() string { return "mock tool " + m.name }
func (m *MockTool) Parameters() []tool.Param { return m.params }

func (m *MockTool) Call(ctx context.Context, args tool.Args) (any, error) {
	ret := m.Called(ctx, args)
	return ret.Get(0), ret.Error(1)
}

func addTool() tool.Tool {
	return tool.MustFunctionTool(
		"add",
		"Adds two integers and returns the result.",
		[]tool.Param{{Name: "a", Type: tool.Int}, {Name: "b", Type: tool.Int}},
		func(_ context.Context, args tool.Args) (any, error) {
			return args.Int("a") + args.Int("b"), nil
		},
	)
}

func TestReactAgent_ToolRoundTrip(t *testing.T) {
	add := NewMockTool("add", tool.Param{Name: "a", Type: tool.Int}, tool.Param{Name: "b", Type: tool.Int})
	add.On("Call", mock.Anything, tool.Args{"a": 2, "b": 3}).Return(5, nil).Once()

	llm := model.NewMockModel(
		`<thought>I need to add the numbers</thought>
<tool_call>{"name":"add","arguments":{"a":2,"b":3},"id":0}</tool_call>`,
		"<response>5</response>",
	)

	react, err := NewReactAgent(llm, func(o *ReactAgentOptions) {
		o.Name = "calc"
		o.Tools = []tool.Tool{add}
	})
	require.NoError(t, err)

	out, err := react.Run(context.Background(), "What is 2 + 3?")
	require.NoError(t, err)
	assert.Equal(t, "5", out)
	add.AssertExpectations(t)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, model.DefaultModelID, reqs[0].Model)

	msgs := reqs[1].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "<tools>")
	assert.Equal(t, core.NewMessage(core.RoleUser, "What is 2 + 3?", "question"), msgs[1])
	assert.Equal(t, core.NewMessage(core.RoleAssistant, "I need to add the numbers", "thought"), msgs[2])
	assert.Equal(t, core.NewMessage(core.RoleUser, "{0: 5}", "observation"), msgs[3])
}

func TestReactAgent_SystemPrompt(t *testing.T) {
	react, err := NewReactAgent(model.NewMockModel(), func(o *ReactAgentOptions) {
		o.SystemPrompt = "You are a calculator."
		o.Tools = []tool.Tool{addTool()}
	})
	require.NoError(t, err)

	prompt := react.SystemPrompt()
	assert.True(t, strings.HasPrefix(prompt, "You are a calculator.\n"))
	assert.Contains(t, prompt, tool.Signature(addTool()))

	plain, err := NewReactAgent(model.NewMockModel(), func(o *ReactAgentOptions) {
		o.SystemPrompt = "You are a poet."
	})
	require.NoError(t, err)
	assert.Equal(t, "You are a poet.", plain.SystemPrompt())
}

func TestReactAgent_RoundBudgetExhausted(t *testing.T) {
	llm := model.NewMockModel("let me think", "still thinking", "The answer is 5.")

	react, err := NewReactAgent(llm, func(o *ReactAgentOptions) {
		o.SystemPrompt = "You are a calculator."
		o.Tools = []tool.Tool{addTool()}
		o.MaxIterations = 2
	})
	require.NoError(t, err)

	out, err := react.Run(context.Background(), "What is 2 + 3?")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 5.", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 3)

	last := reqs[2].Messages
	assert.Equal(t, core.SystemMessage("You are a calculator."), last[0])
	for _, msg := range last {
		assert.NotContains(t, msg.Content, "<tools>")
	}
	assert.Equal(t, core.AssistantMessage("still thinking"), last[len(last)-1])
}

func TestReactAgent_NoTools(t *testing.T) {
	llm := model.NewMockModel("<response>verbatim</response>")

	react, err := NewReactAgent(llm, func(o *ReactAgentOptions) {
		o.SystemPrompt = "You are a poet."
	})
	require.NoError(t, err)

	out, err := react.Run(context.Background(), "Write a poem")
	require.NoError(t, err)
	assert.Equal(t, "<response>verbatim</response>", out)
	assert.Equal(t, 1, llm.Calls())
}

func TestReactAgent_CompletionFailure(t *testing.T) {
	llm := model.NewMockModel()
	llm.AddError(errors.New("rate limited"))

	react, err := NewReactAgent(llm)
	require.NoError(t, err)

	out, err := react.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Error in generating response", out)
}

func TestReactAgent_CompletionTimeout(t *testing.T) {
	slow := model.Func(func(ctx context.Context, _ model.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	react, err := NewReactAgent(slow, func(o *ReactAgentOptions) {
		o.CompletionTimeout = 10 * time.Millisecond
	})
	require.NoError(t, err)

	out, err := react.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Error in generating response", out)
}

func TestReactAgent_ToolErrorsBecomeObservations(t *testing.T) {
	llm := model.NewMockModel(
		`<tool_call>not json</tool_call>
<tool_call>{"name":"divide","arguments":{"a":1},"id":1}</tool_call>
<tool_call>{"name":"add","arguments":{"a":"x","b":1},"id":2}</tool_call>
<tool_call>{"name":"add","arguments":{"a":1,"c":1},"id":3}</tool_call>`,
		"<response>done</response>",
	)

	react, err := NewReactAgent(llm, func(o *ReactAgentOptions) {
		o.Tools = []tool.Tool{addTool()}
	})
	require.NoError(t, err)

	out, err := react.Run(context.Background(), "compute")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)

	obs := reqs[1].Messages[len(reqs[1].Messages)-1]
	assert.Equal(t, core.RoleUser, obs.Role)
	assert.Contains(t, obs.Content, `0: {"code":"MALFORMED_CALL"`)
	assert.Contains(t, obs.Content, `1: {"code":"UNKNOWN_TOOL"`)
	assert.Contains(t, obs.Content, `2: {"code":"VALIDATION_ERROR"`)
	assert.Contains(t, obs.Content, `3: {"code":"VALIDATION_ERROR"`)
}

func TestReactAgent_MissingArgumentIsNotExecuted(t *testing.T) {
	add := NewMockTool("add", tool.Param{Name: "a", Type: tool.Int}, tool.Param{Name: "b", Type: tool.Int})

	llm := model.NewMockModel(
		`<tool_call>{"name":"add","arguments":{"a":2},"id":0}</tool_call>`,
		"<response>retrying</response>",
	)

	react, err := NewReactAgent(llm, func(o *ReactAgentOptions) {
		o.Tools = []tool.Tool{add}
	})
	require.NoError(t, err)

	_, err = react.Run(context.Background(), "What is 2 + 3?")
	require.NoError(t, err)
	add.AssertNotCalled(t, "Call", mock.Anything, mock.Anything)

	msgs := llm.Requests()[1].Messages
	obs := msgs[len(msgs)-1].Content
	assert.Contains(t, obs, `0: {"code":"VALIDATION_ERROR"`)
	assert.Contains(t, obs, "missing")
}

func TestReactAgent_DuplicateCallIDLastWins(t *testing.T) {
	llm := model.NewMockModel(
		`<tool_call>{"name":"add","arguments":{"a":1,"b":2},"id":0}</tool_call>
<tool_call>{"name":"add","arguments":{"a":3,"b":4},"id":0}</tool_call>`,
		"<response>7</response>",
	)

	react, err := NewReactAgent(llm, func(o *ReactAgentOptions) {
		o.Tools = []tool.Tool{addTool()}
	})
	require.NoError(t, err)

	_, err = react.Run(context.Background(), "compute")
	require.NoError(t, err)

	msgs := llm.Requests()[1].Messages
	assert.Equal(t, "<observation>{0: 7}</observation>", msgs[len(msgs)-1].Content)
}

func TestReactAgent_ContextCancelled(t *testing.T) {
	react, err := NewReactAgent(model.NewMockModel("unused"), func(o *ReactAgentOptions) {
		o.Tools = []tool.Tool{addTool()}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = react.Run(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReactAgent_CancelledDuringCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	llm := model.Func(func(ctx context.Context, _ model.Request) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	react, err := NewReactAgent(llm)
	require.NoError(t, err)

	_, err = react.Run(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewReactAgent_Errors(t *testing.T) {
	_, err := NewReactAgent(nil)
	assert.Error(t, err)

	_, err = NewReactAgent(model.NewMockModel(), func(o *ReactAgentOptions) {
		o.Tools = []tool.Tool{addTool(), addTool()}
	})
	assert.ErrorIs(t, err, core.ErrSignature)

	react, err := NewReactAgent(model.NewMockModel(), func(o *ReactAgentOptions) {
		o.MaxIterations = 0
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, react.MaxIterations())
}

func TestToolAgent_SingleRound(t *testing.T) {
	llm := model.NewMockModel(
		`<tool_call>{"name":"add","arguments":{"a":5,"b":10},"id":0}</tool_call>`,
		"The answer is 15.",
	)

	ta, err := NewToolAgent(llm, func(o *ToolAgentOptions) {
		o.Name = "lucky"
		o.Tools = []tool.Tool{addTool()}
	})
	require.NoError(t, err)

	out, err := ta.Run(context.Background(), "Add 5 and 10")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 15.", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)

	msgs := reqs[1].Messages
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0].Content, "<tools>")
	assert.Equal(t, core.UserMessage("Add 5 and 10"), msgs[1])
	assert.Equal(t, core.UserMessage("Observations {0: 15}"), msgs[2])
}

func TestToolAgent_NoToolCall(t *testing.T) {
	llm := model.NewMockModel("nothing to call", "plain answer")

	ta, err := NewToolAgent(llm, func(o *ToolAgentOptions) {
		o.Tools = []tool.Tool{addTool()}
	})
	require.NoError(t, err)

	out, err := ta.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "plain answer", out)
	assert.Len(t, llm.Requests()[1].Messages, 2)
}

package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_ReplaysScript(t *testing.T) {
	m := NewMockModel("first", "second")
	m.AddError(errors.New("quota"))

	req := Request{Model: "m", Messages: []core.Message{core.UserMessage("hi")}}

	out, err := m.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = m.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	_, err = m.Complete(context.Background(), req)
	assert.EqualError(t, err, "quota")

	out, err = m.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", out)

	assert.Equal(t, 4, m.Calls())
	assert.Equal(t, "m", m.Requests()[0].Model)
}

func TestMockModel_RequestsAreSnapshots(t *testing.T) {
	m := NewMockModel("ok")
	msgs := []core.Message{core.UserMessage("a")}

	_, err := m.Complete(context.Background(), Request{Messages: msgs})
	require.NoError(t, err)

	msgs[0].Content = "mutated"
	assert.Equal(t, "a", m.Requests()[0].Messages[0].Content)
}

func TestMockModel_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockModel("x").Complete(ctx, Request{Messages: []core.Message{core.UserMessage("a")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	var f Model = Func(func(_ context.Context, req Request) (string, error) {
		return req.Model, nil
	})

	out, err := f.Complete(context.Background(), Request{Model: "echo"})
	require.NoError(t, err)
	assert.Equal(t, "echo", out)
	assert.Equal(t, "func", f.Info().Provider)
}

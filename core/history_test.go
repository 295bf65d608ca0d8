package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "2 + 3", "question")
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "<question>2 + 3</question>", msg.Content)

	plain := AssistantMessage("hello")
	assert.Equal(t, RoleAssistant, plain.Role)
	assert.Equal(t, "hello", plain.Content)
}

func TestHistory_Unbounded(t *testing.T) {
	h := NewHistory([]Message{SystemMessage("sys")})

	for i := 0; i < 50; i++ {
		require.NoError(t, h.Append(UserMessage(fmt.Sprint(i))))
	}

	assert.Equal(t, 51, h.Len())
	assert.Equal(t, -1, h.MaxLength())
}

func TestHistory_EvictOldest(t *testing.T) {
	h := NewHistory(nil, func(o *HistoryOptions) { o.MaxLength = 3 })

	for i := 0; i < 4; i++ {
		require.NoError(t, h.Append(UserMessage(fmt.Sprint(i))))
	}

	msgs := h.Snapshot()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"1", "2", "3"}, contents(msgs))
}

func TestHistory_PreserveFirst(t *testing.T) {
	h := NewHistory(
		[]Message{SystemMessage("sys"), UserMessage("q")},
		func(o *HistoryOptions) {
			o.MaxLength = 3
			o.Eviction = PreserveFirst
		},
	)

	require.NoError(t, h.Append(UserMessage("obs1")))
	require.NoError(t, h.Append(UserMessage("obs2")))

	assert.Equal(t, []string{"sys", "obs1", "obs2"}, contents(h.Snapshot()))
}

func TestPreserveFirst_SingleMessage(t *testing.T) {
	out := PreserveFirst([]Message{SystemMessage("only")})
	assert.Empty(t, out)
}

func TestHistory_InvalidRole(t *testing.T) {
	h := NewHistory(nil)

	err := h.Append(Message{Role: "tool", Content: "x"})
	require.ErrorIs(t, err, ErrTypeKind)
	assert.Equal(t, 0, h.Len())
}

func TestHistory_SnapshotIsCopy(t *testing.T) {
	h := NewHistory([]Message{UserMessage("a")})

	snap := h.Snapshot()
	snap[0].Content = "changed"

	assert.Equal(t, "a", h.Snapshot()[0].Content)
}

func contents(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

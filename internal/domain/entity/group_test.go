package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationGroupTurnsEmpty(t *testing.T) {
	g := NewConversationGroup("acc-1", "gpt", "chat")
	turns, err := g.Turns()
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestConversationGroupAppendTurns(t *testing.T) {
	g := NewConversationGroup("acc-1", "gpt", "chat")

	err := g.AppendTurns(
		Turn{Role: RoleUser, Content: "hello"},
		Turn{Role: RoleAssistant, Content: "hi there"},
	)
	require.NoError(t, err)

	turns, err := g.Turns()
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
}

func TestConversationGroupHistoryCapped(t *testing.T) {
	g := NewConversationGroup("acc-1", "gpt", "chat")

	// 15 轮 = 30 条，超出上限后只保留最近 HistoryLimit 条
	for i := 0; i < 15; i++ {
		err := g.AppendTurns(
			Turn{Role: RoleUser, Content: "q"},
			Turn{Role: RoleAssistant, Content: "a"},
		)
		require.NoError(t, err)
	}

	turns, err := g.Turns()
	require.NoError(t, err)
	assert.Len(t, turns, HistoryLimit)
	// 截断丢弃最旧条目，尾部顺序保持 user/assistant 交替
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleAssistant, turns[HistoryLimit-1].Role)
}

func TestConversationGroupTurnsCorrupt(t *testing.T) {
	g := NewConversationGroup("acc-1", "gpt", "chat")
	g.History = []byte("{not json")
	_, err := g.Turns()
	assert.Error(t, err)
}

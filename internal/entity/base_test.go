package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenDirectConversationId_Canonical(t *testing.T) {
	// Order of arguments must not matter
	assert.Equal(t, GenDirectConversationId("alice", "bob"), GenDirectConversationId("bob", "alice"))
	assert.Equal(t, "dm_alice:bob", GenDirectConversationId("bob", "alice"))
}

func TestGenDirectConversationId_UserIdsWithUnderscore(t *testing.T) {
	id := GenDirectConversationId("emp_7", "emp_42")
	a, b, ok := DirectConversationPeers(id)
	assert.True(t, ok)
	assert.Equal(t, "emp_42", a)
	assert.Equal(t, "emp_7", b)
}

func TestConversationIdKind(t *testing.T) {
	assert.True(t, IsDirectConversation("dm_a:b"))
	assert.False(t, IsGroupConversation("dm_a:b"))
	assert.True(t, IsGroupConversation(GenGroupConversationId("123")))
	assert.False(t, IsDirectConversation("chat-456"))
	assert.False(t, IsGroupConversation("chat-456"))
}

func TestDirectConversationPeers_Malformed(t *testing.T) {
	_, _, ok := DirectConversationPeers("gr_123")
	assert.False(t, ok)

	_, _, ok = DirectConversationPeers("dm_nocolon")
	assert.False(t, ok)

	_, _, ok = DirectConversationPeers("dm_a:")
	assert.False(t, ok)
}

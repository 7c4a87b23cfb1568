package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewsync/crewsync/internal/domain"
)

func TestFoldConversations(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	// Newest-first, the order the store fetches in.
	messages := []domain.Message{
		{SenderID: "bob", ReceiverID: "me", Content: "latest from bob", Status: domain.StatusSent, Timestamp: at(30)},
		{SenderID: "me", ReceiverID: "carol", Content: "to carol", Status: domain.StatusSent, Timestamp: at(20)},
		{SenderID: "bob", ReceiverID: "me", Content: "older from bob", Status: domain.StatusSent, Timestamp: at(10)},
		{SenderID: "carol", ReceiverID: "me", Content: "from carol", Status: domain.StatusRead, Timestamp: at(5)},
		{SenderID: "me", ReceiverID: "bob", Content: "oldest to bob", Status: domain.StatusRead, Timestamp: at(0)},
	}

	conversations := foldConversations(messages, "me")
	require.Len(t, conversations, 2)

	// Sorted by most recent activity.
	bob := conversations[0]
	assert.Equal(t, "bob", bob.RecipientID)
	assert.Equal(t, "latest from bob", bob.LastMessage)
	assert.Equal(t, at(30), bob.LastMessageTime)
	// Only unread messages addressed to the user count; own sends never do.
	assert.Equal(t, 2, bob.UnreadCount)

	carol := conversations[1]
	assert.Equal(t, "carol", carol.RecipientID)
	assert.Equal(t, "to carol", carol.LastMessage)
	assert.Zero(t, carol.UnreadCount)
}

func TestFoldConversationsEmpty(t *testing.T) {
	assert.Empty(t, foldConversations(nil, "me"))
}

func TestMessageRecordID(t *testing.T) {
	assert.Equal(t, "message:abc", messageRecordID("abc"))
	assert.Equal(t, "message:abc", messageRecordID("message:abc"))
}

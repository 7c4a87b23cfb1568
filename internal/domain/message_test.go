package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		wantErr bool
	}{
		{
			name:    "valid direct message",
			message: Message{SenderID: "alice", ReceiverID: "bob", Content: "hi"},
		},
		{
			name:    "valid group message",
			message: Message{SenderID: "alice", GroupID: "g1", Content: "hi"},
		},
		{
			name:    "attachment without content",
			message: Message{SenderID: "alice", ReceiverID: "bob", FileURL: "https://files.example.com/a.pdf"},
		},
		{
			name:    "missing sender",
			message: Message{ReceiverID: "bob", Content: "hi"},
			wantErr: true,
		},
		{
			name:    "no addressing",
			message: Message{SenderID: "alice", Content: "hi"},
			wantErr: true,
		},
		{
			name:    "both receiver and group",
			message: Message{SenderID: "alice", ReceiverID: "bob", GroupID: "g1", Content: "hi"},
			wantErr: true,
		},
		{
			name:    "whitespace-only content without attachment",
			message: Message{SenderID: "alice", ReceiverID: "bob", Content: " \t\n "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.message.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessage_ValidateTrimsContent(t *testing.T) {
	msg := Message{SenderID: "alice", ReceiverID: "bob", Content: "  hi  "}
	assert.NoError(t, msg.Validate())
	assert.Equal(t, "hi", msg.Content)
}

func TestMessage_IsGroup(t *testing.T) {
	direct := Message{SenderID: "alice", ReceiverID: "bob"}
	group := Message{SenderID: "alice", GroupID: "g1"}
	assert.False(t, direct.IsGroup())
	assert.True(t, group.IsGroup())
}

func TestUser_DisplayName(t *testing.T) {
	full := User{Firstname: "Alice", Lastname: "Ames", Email: "alice@example.com"}
	assert.Equal(t, "Alice Ames", full.DisplayName())

	firstOnly := User{Firstname: "Alice", Email: "alice@example.com"}
	assert.Equal(t, "Alice", firstOnly.DisplayName())

	emailFallback := User{Email: "alice@example.com"}
	assert.Equal(t, "alice@example.com", emailFallback.DisplayName())
}

func TestGroup_Contains(t *testing.T) {
	g := Group{ID: "g1", Members: []string{"alice", "bob"}}
	assert.True(t, g.Contains("alice"))
	assert.False(t, g.Contains("carol"))
}

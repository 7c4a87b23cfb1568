package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_Validate(t *testing.T) {
	valid := Notification{
		Title:       "Shift change",
		Body:        "Your shift moved to 14:00",
		SenderID:    "hr1",
		TargetUsers: []string{"alice"},
	}
	require.NoError(t, valid.Validate())
	// An unset type defaults to general.
	assert.Equal(t, NotificationGeneral, valid.Type)

	tests := []struct {
		name   string
		mutate func(n *Notification)
	}{
		{"missing title", func(n *Notification) { n.Title = "  " }},
		{"title too long", func(n *Notification) { n.Title = strings.Repeat("x", 201) }},
		{"missing body", func(n *Notification) { n.Body = "" }},
		{"body too long", func(n *Notification) { n.Body = strings.Repeat("x", 1001) }},
		{"missing sender", func(n *Notification) { n.SenderID = "" }},
		{"no targets", func(n *Notification) { n.TargetUsers = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{
				Title:       "Shift change",
				Body:        "Your shift moved to 14:00",
				SenderID:    "hr1",
				TargetUsers: []string{"alice"},
			}
			tt.mutate(&n)
			assert.ErrorIs(t, n.Validate(), ErrValidation)
		})
	}
}

func TestNotification_MarkReadBy(t *testing.T) {
	n := Notification{TargetUsers: []string{"alice", "bob"}}

	changed, err := n.MarkReadBy("alice")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, n.IsReadBy("alice"))

	// Repeating the read is a no-op, not an error.
	changed, err = n.MarkReadBy("alice")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"alice"}, n.ReadBy)
}

func TestNotification_MarkReadByRejectsNonTarget(t *testing.T) {
	n := Notification{TargetUsers: []string{"alice"}}

	_, err := n.MarkReadBy("mallory")
	assert.ErrorIs(t, err, ErrNotTargeted)
	assert.Empty(t, n.ReadBy)
}

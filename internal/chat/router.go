package chat

import (
	"context"
	"fmt"

	"github.com/crewsync/crewsync/internal/domain"
)

// Delivery is the resolved target set for one message: the rooms to emit
// into and the user ids to evaluate for offline push fan-out.
type Delivery struct {
	// Rooms are the room ids to broadcast receiveMessage into. For a group
	// message this is the group room; for a direct message it is the
	// receiver's personal room.
	Rooms []string

	// Targets are the user ids that should end up with the message,
	// excluding the sender. Targets without a live connection get a push
	// notification instead of a socket emission.
	Targets []string

	// GroupName is set for group messages and used for the push title.
	GroupName string

	// EchoToOrigin marks the direct-message asymmetry: direct messages are
	// not echoed through a shared room, so the originating connection gets
	// a separate messageSent confirmation. Group messages reach the
	// sender's connections through the group room instead.
	EchoToOrigin bool
}

// Router resolves a message's addressing to a delivery target set. It holds
// no state of its own; group membership is read from the directory at send
// time, so a member added after send does not retroactively receive history.
type Router struct {
	groups domain.GroupDirectory
}

// NewRouter creates a Router over the given group directory.
func NewRouter(groups domain.GroupDirectory) *Router {
	return &Router{groups: groups}
}

// Resolve returns the delivery plan for a validated message. For group
// messages the sender must be a member of the group.
func (r *Router) Resolve(ctx context.Context, msg *domain.Message) (*Delivery, error) {
	if !msg.IsGroup() {
		return &Delivery{
			Rooms:        []string{msg.ReceiverID},
			Targets:      []string{msg.ReceiverID},
			EchoToOrigin: true,
		}, nil
	}

	group, err := r.groups.GetByID(ctx, msg.GroupID)
	if err != nil {
		return nil, fmt.Errorf("resolving group %s: %w", msg.GroupID, err)
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}
	if !group.Contains(msg.SenderID) {
		return nil, domain.ErrNotGroupMember
	}

	targets := make([]string, 0, len(group.Members))
	for _, member := range group.Members {
		if member != msg.SenderID {
			targets = append(targets, member)
		}
	}

	return &Delivery{
		Rooms:     []string{msg.GroupID},
		Targets:   targets,
		GroupName: group.Name,
	}, nil
}

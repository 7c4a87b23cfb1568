package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	// ErrValidation is returned when a client-supplied payload fails
	// validation. Nothing is persisted and nothing is broadcast.
	ErrValidation = errors.New("invalid request payload")

	// ErrNotFound is returned when a referenced resource does not exist.
	ErrNotFound = errors.New("requested resource not found")

	// ErrGroupNotFound is returned when a message addresses an unknown group.
	ErrGroupNotFound = errors.New("chat group not found")

	// ErrNotGroupMember is returned when a sender addresses a group they do
	// not belong to.
	ErrNotGroupMember = errors.New("sender is not a member of the group")

	// ErrNotTargeted is returned when a user tries to mark a notification
	// read that was never addressed to them.
	ErrNotTargeted = errors.New("user is not a target of the notification")
)

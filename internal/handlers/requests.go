package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SendMessageRequest is the DTO for the REST message send endpoint. The
// sender is taken from the authenticated request, never from the body.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"omitempty"`
	GroupID    string `json:"groupId" validate:"omitempty"`
	Content    string `json:"content"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
}

// MarkReadRequest marks a whole conversation read for the caller.
type MarkReadRequest struct {
	ChatID  string `json:"chatId" validate:"required"`
	IsGroup bool   `json:"isGroup"`
}

// CreateNotificationRequest is the DTO for publishing a notification.
type CreateNotificationRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Message     string            `json:"message" validate:"required,max=1000"`
	Type        string            `json:"type"`
	Metadata    map[string]string `json:"metadata"`
	TargetUsers []string          `json:"targetUsers" validate:"required,min=1"`
}

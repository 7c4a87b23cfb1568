package push

import "context"

// maxBodyLen bounds the notification body pushed to devices.
const maxBodyLen = 100

// MulticastResult reports per-token delivery outcome. One failing token
// never prevents delivery to the others.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	FailedTokens []string
}

// Sender is the contract for the external push-notification provider.
type Sender interface {
	// SendMulticast pushes the same notification to every token. The
	// result, when non-nil, carries per-token outcomes even if err is nil.
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*MulticastResult, error)
}

// TruncateBody bounds a notification body, appending an ellipsis when text
// was cut.
func TruncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= maxBodyLen {
		return body
	}
	return string(runes[:maxBodyLen]) + "..."
}

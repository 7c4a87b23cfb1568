package handlers

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarkReadResponse reports how many messages a bulk read transitioned.
type MarkReadResponse struct {
	Updated int `json:"updated"`
}

// UnreadCountResponse carries a single unread counter.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

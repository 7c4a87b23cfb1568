package push

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender delivers push notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender initializes the Firebase app from raw service-account JSON.
func NewFCMSender(ctx context.Context, credentialsJSON []byte) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing messaging client: %w", err)
	}
	slog.Info("FCM sender initialized")
	return &FCMSender{client: client}, nil
}

// SendMulticast implements Sender. Failures are isolated per token.
func (s *FCMSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*MulticastResult, error) {
	if len(tokens) == 0 {
		return &MulticastResult{}, nil
	}

	msg := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:   data,
		Tokens: tokens,
	}

	resp, err := s.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("sending multicast: %w", err)
	}

	result := &MulticastResult{
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
	}
	for i, r := range resp.Responses {
		if !r.Success {
			result.FailedTokens = append(result.FailedTokens, tokens[i])
		}
	}
	if result.FailureCount > 0 {
		slog.Warn("Some push tokens failed", "failed", result.FailedTokens)
	}
	return result, nil
}

// DisabledSender is used when no push credentials are configured. The
// server runs without push delivery, as the platform does elsewhere when an
// optional integration is absent.
type DisabledSender struct{}

// SendMulticast implements Sender as a no-op.
func (DisabledSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*MulticastResult, error) {
	slog.Debug("Push delivery disabled, dropping notification", "tokens", len(tokens), "title", title)
	return &MulticastResult{}, nil
}

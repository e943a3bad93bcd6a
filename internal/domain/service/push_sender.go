package service

import (
	"context"
)

// PushSender defines the interface for mobile push notification services
type PushSender interface {
	// SendMulticast sends a push notification to several device tokens.
	// Returns success count, failure count and the tokens the provider rejected as invalid.
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error)
}

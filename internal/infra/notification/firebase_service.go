package notification

import (
	"context"
	"log/slog"

	"megafast/internal/domain/service"

	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
)

// maxMulticastTokens is the FCM limit per multicast request.
const maxMulticastTokens = 500

// messagingClient is the part of the FCM client used here.
type messagingClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type firebasePushSender struct {
	client messagingClient
	logger *slog.Logger
}

// NewFirebasePushSender creates a PushSender backed by Firebase Cloud Messaging.
func NewFirebasePushSender(client messagingClient, logger *slog.Logger) service.PushSender {
	return &firebasePushSender{
		client: client,
		logger: logger,
	}
}

// SendMulticast sends push notifications to multiple device tokens (max 500 tokens)
func (s *firebasePushSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error) {
	if len(tokens) == 0 {
		return 0, 0, nil, nil
	}

	if len(tokens) > maxMulticastTokens {
		return 0, 0, nil, errors.Errorf("token count exceeds limit: %d (max %d)", len(tokens), maxMulticastTokens)
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "failed to send multicast notification")
	}

	successCount = response.SuccessCount
	failureCount = response.FailureCount

	invalidTokens = make([]string, 0)
	for idx, sendResponse := range response.Responses {
		if sendResponse.Error == nil {
			continue
		}
		if messaging.IsInvalidArgument(sendResponse.Error) || messaging.IsUnregistered(sendResponse.Error) {
			invalidTokens = append(invalidTokens, tokens[idx])
		}
	}
	if failureCount > 0 {
		s.logger.Debug("Multicast had failures",
			slog.Int("success", successCount),
			slog.Int("failure", failureCount),
			slog.Int("invalid", len(invalidTokens)),
		)
	}

	return successCount, failureCount, invalidTokens, nil
}

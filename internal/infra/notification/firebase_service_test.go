package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessagingClient struct {
	received *messaging.MulticastMessage
	response *messaging.BatchResponse
	err      error
}

func (f *fakeMessagingClient) SendEachForMulticast(_ context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.received = message

	return f.response, f.err
}

func newTestSender(client messagingClient) *firebasePushSender {
	return NewFirebasePushSender(client, slog.New(slog.NewTextHandler(io.Discard, nil))).(*firebasePushSender)
}

func TestSendMulticast_NoTokens(t *testing.T) {
	client := &fakeMessagingClient{}
	sent, failed, invalid, err := newTestSender(client).SendMulticast(context.Background(), nil, "t", "b", nil)

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, invalid)
	assert.Nil(t, client.received)
}

func TestSendMulticast_TooManyTokens(t *testing.T) {
	tokens := make([]string, maxMulticastTokens+1)
	_, _, _, err := newTestSender(&fakeMessagingClient{}).SendMulticast(context.Background(), tokens, "t", "b", nil)

	assert.ErrorContains(t, err, "exceeds limit")
}

func TestSendMulticast_ReportsCounts(t *testing.T) {
	client := &fakeMessagingClient{
		response: &messaging.BatchResponse{
			SuccessCount: 1,
			FailureCount: 1,
			Responses: []*messaging.SendResponse{
				{Success: true, MessageID: "m1"},
				{Error: errors.New("quota exceeded")},
			},
		},
	}

	sent, failed, invalid, err := newTestSender(client).SendMulticast(context.Background(), []string{"a", "b"}, "Nouveau lot", "Lot B1", map[string]string{"kind": "batch_assigned"})

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	assert.Empty(t, invalid)
	require.NotNil(t, client.received)
	assert.Equal(t, []string{"a", "b"}, client.received.Tokens)
	assert.Equal(t, "Nouveau lot", client.received.Notification.Title)
	assert.Equal(t, "batch_assigned", client.received.Data["kind"])
}

func TestSendMulticast_ClientError(t *testing.T) {
	client := &fakeMessagingClient{err: errors.New("unavailable")}

	_, _, _, err := newTestSender(client).SendMulticast(context.Background(), []string{"a"}, "t", "b", nil)

	assert.ErrorContains(t, err, "failed to send multicast notification")
}

package impl

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/domain/repository"
	"megafast/internal/domain/service"
	"megafast/internal/usecase"

	"github.com/pkg/errors"
)

const (
	// Firebase multicast size limit
	firebaseBatchSize = 500
)

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	pushSender       service.PushSender
	logger           *slog.Logger
	now              func() time.Time
}

// NewNotificationService creates a new notification service instance.
// pushSender may be nil, in which case notifications are only stored.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	pushSender service.PushSender,
	logger *slog.Logger,
) usecase.NotificationUsecase {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pushSender:       pushSender,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *notificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, s.logger)
}

// Notify stores the notification, then pushes it to the user's devices.
func (s *notificationService) Notify(ctx context.Context, userID, title, body string, kind entity.NotificationKind, refID string) (*entity.Notification, error) {
	notification := &entity.Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Kind:      kind,
		RefID:     refID,
		CreatedAt: s.now(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, storeError(err, "failed to create notification")
	}

	if s.pushSender == nil {
		return notification, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.log(ctx).Warn("Skipping push, recipient not found", slog.String("user_id", userID), slog.Any("error", err))

		return notification, nil
	}
	if len(user.FCMTokens) == 0 {
		return notification, nil
	}

	data := map[string]string{
		"notification_id": notification.ID,
		"kind":            string(kind),
		"ref_id":          refID,
	}

	var (
		totalSent     int
		totalFailed   int
		invalidTokens []string
	)
	for chunk := range slices.Chunk(user.FCMTokens, firebaseBatchSize) {
		sent, failed, invalid, err := s.pushSender.SendMulticast(ctx, chunk, title, body, data)
		if err != nil {
			// Log error but continue with other batches
			s.log(ctx).Warn("Push batch failed", slog.Any("error", err), slog.Int("tokens", len(chunk)))
			totalFailed += len(chunk)

			continue
		}
		totalSent += sent
		totalFailed += failed
		invalidTokens = append(invalidTokens, invalid...)
	}

	if len(invalidTokens) > 0 {
		user.FCMTokens = slices.DeleteFunc(user.FCMTokens, func(token string) bool {
			return slices.Contains(invalidTokens, token)
		})
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.log(ctx).Warn("Failed to prune invalid push tokens", slog.Any("error", err), slog.String("user_id", userID))
		}
	}
	s.log(ctx).Debug("Push sent",
		slog.String("notification_id", notification.ID),
		slog.Int("sent", totalSent),
		slog.Int("failed", totalFailed),
		slog.Int("invalid", len(invalidTokens)),
	)

	return notification, nil
}

// shipmentStatusLabels are the status names shown to clients.
var shipmentStatusLabels = map[entity.ShipmentStatus]string{
	entity.ShipmentStatusCreated:   "créée",
	entity.ShipmentStatusAssigned:  "assignée à un livreur",
	entity.ShipmentStatusInTransit: "en cours de livraison",
	entity.ShipmentStatusDelivered: "livrée",
	entity.ShipmentStatusReturned:  "retournée",
	entity.ShipmentStatusCanceled:  "annulée",
}

// NotifyShipmentEvent tells the client's accounts that a shipment changed status.
func (s *notificationService) NotifyShipmentEvent(ctx context.Context, event *service.ShipmentEvent) (int, error) {
	if event == nil || event.ClientID == "" {
		return 0, nil
	}

	users, err := s.userRepo.ListByClientID(ctx, event.ClientID)
	if err != nil {
		return 0, storeError(err, "failed to list client accounts")
	}

	label, ok := shipmentStatusLabels[entity.ShipmentStatus(event.To)]
	if !ok {
		label = event.To
	}
	title := "Suivi d'expédition"
	body := fmt.Sprintf("Votre expédition %s est %s", event.Barcode, label)

	notified := 0
	for _, user := range users {
		if _, err := s.Notify(ctx, user.ID, title, body, entity.NotificationKindShipmentUpdate, event.ShipmentID); err != nil {
			return notified, errors.Wrapf(err, "failed to notify user %s", user.ID)
		}
		notified++
	}

	return notified, nil
}

// ListNotifications lists the caller's notifications.
func (s *notificationService) ListNotifications(ctx context.Context, caller entity.CallerIdentity, unreadOnly bool) ([]*entity.Notification, error) {
	if caller.UserID == "" {
		return []*entity.Notification{}, nil
	}

	notifications, err := s.notificationRepo.ListByUser(ctx, caller.UserID, unreadOnly)
	if err != nil {
		return nil, storeError(err, "failed to list notifications")
	}

	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *notificationService) MarkRead(ctx context.Context, caller entity.CallerIdentity, notificationID string) error {
	if caller.UserID == "" {
		return domainerrors.ErrIdentityRequired
	}

	notification, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return storeError(err, "notification "+notificationID)
	}
	if notification.UserID != caller.UserID {
		return domainerrors.ErrNotificationNotFound.WithDetails("notification " + notificationID)
	}
	if notification.Read {
		return nil
	}

	notification.Read = true
	if err := s.notificationRepo.Update(ctx, notification); err != nil {
		return errors.Wrap(storeError(err, "failed to update notification"), "failed to mark notification read")
	}

	return nil
}

// RegisterDevice records a push token on the caller's profile.
func (s *notificationService) RegisterDevice(ctx context.Context, caller entity.CallerIdentity, fcmToken string) error {
	if caller.UserID == "" {
		return domainerrors.ErrIdentityRequired
	}
	if fcmToken == "" {
		return domainerrors.ErrValidationFailed.WithDetails("fcmToken is required")
	}

	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return storeError(err, "user "+caller.UserID)
	}
	if !user.AddFCMToken(fcmToken) {
		return nil
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return storeError(err, "failed to register device")
	}
	s.log(ctx).Info("Device registered", slog.String("user_id", caller.UserID), slog.Int("tokens", len(user.FCMTokens)))

	return nil
}

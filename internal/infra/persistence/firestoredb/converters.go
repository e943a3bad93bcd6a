package firestoredb

import (
	"megafast/internal/domain/entity"
	"megafast/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/genproto/googleapis/type/latlng"
)

func fromShipmentDomain(s *entity.Shipment) *model.ShipmentModel {
	history := make([]model.HistoryModel, 0, len(s.History))
	for _, h := range s.History {
		history = append(history, model.HistoryModel{At: h.At, Status: h.Status.String(), By: h.By, Note: h.Note})
	}

	return &model.ShipmentModel{
		Barcode:            s.Barcode,
		Status:             s.Status.String(),
		ClientID:           s.ClientID,
		ClientName:         s.ClientName,
		AssignedTo:         s.AssignedTo,
		BatchID:            s.BatchID,
		PaymentMode:        string(s.PaymentMode),
		Amount:             s.Amount,
		PickupAddress:      s.PickupAddress,
		PickupCity:         s.PickupCity,
		PickupDelegation:   s.PickupDelegation,
		PickupLocation:     toLatLng(s.PickupLocation),
		DeliveryAddress:    s.DeliveryAddress,
		DeliveryCity:       s.DeliveryCity,
		DeliveryDelegation: s.DeliveryDelegation,
		DeliveryLocation:   toLatLng(s.DeliveryLocation),
		RecipientName:      s.RecipientName,
		RecipientPhone:     s.RecipientPhone,
		Notes:              s.Notes,
		History:            history,
		CreatedAt:          s.CreatedAt,
		LastUpdated:        s.LastUpdated,
		LastUpdatedBy:      s.LastUpdatedBy,
	}
}

func toShipmentDomain(snap *firestore.DocumentSnapshot) (*entity.Shipment, error) {
	var m model.ShipmentModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode shipment %s", snap.Ref.ID)
	}

	history := make([]entity.HistoryEntry, 0, len(m.History))
	for _, h := range m.History {
		history = append(history, entity.HistoryEntry{At: h.At, Status: parseShipmentStatus(h.Status), By: h.By, Note: h.Note})
	}

	return &entity.Shipment{
		ID:                 snap.Ref.ID,
		Barcode:            m.Barcode,
		Status:             parseShipmentStatus(m.Status),
		ClientID:           m.ClientID,
		ClientName:         m.ClientName,
		AssignedTo:         m.AssignedTo,
		BatchID:            m.BatchID,
		PaymentMode:        entity.PaymentMode(m.PaymentMode),
		Amount:             m.Amount,
		PickupAddress:      m.PickupAddress,
		PickupCity:         m.PickupCity,
		PickupDelegation:   m.PickupDelegation,
		PickupLocation:     fromLatLng(m.PickupLocation),
		DeliveryAddress:    m.DeliveryAddress,
		DeliveryCity:       m.DeliveryCity,
		DeliveryDelegation: m.DeliveryDelegation,
		DeliveryLocation:   fromLatLng(m.DeliveryLocation),
		RecipientName:      m.RecipientName,
		RecipientPhone:     m.RecipientPhone,
		Notes:              m.Notes,
		History:            history,
		CreatedAt:          m.CreatedAt,
		LastUpdated:        m.LastUpdated,
		LastUpdatedBy:      m.LastUpdatedBy,
	}, nil
}

// parseShipmentStatus keeps unknown values as they are so they surface in listings.
func parseShipmentStatus(raw string) entity.ShipmentStatus {
	status, ok := entity.ParseShipmentStatus(raw)
	if !ok {
		return entity.ShipmentStatus(raw)
	}

	return status
}

func toLatLng(p *entity.GeoPoint) *latlng.LatLng {
	if p == nil {
		return nil
	}

	return &latlng.LatLng{Latitude: p.Lat, Longitude: p.Lng}
}

func fromLatLng(p *latlng.LatLng) *entity.GeoPoint {
	if p == nil {
		return nil
	}

	return &entity.GeoPoint{Lat: p.GetLatitude(), Lng: p.GetLongitude()}
}

func fromBatchDomain(b *entity.Batch) *model.BatchModel {
	return &model.BatchModel{
		Code:        b.Code,
		AssignedTo:  b.AssignedTo,
		Status:      b.Status.String(),
		ShipmentIDs: append([]string{}, b.ShipmentIDs...),
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		CreatedBy:   b.CreatedBy,
		StartedAt:   b.StartedAt,
		CompletedAt: b.CompletedAt,
		CanceledAt:  b.CanceledAt,
		LastUpdated: b.LastUpdated,
	}
}

func toBatchDomain(snap *firestore.DocumentSnapshot) (*entity.Batch, error) {
	var m model.BatchModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode batch %s", snap.Ref.ID)
	}
	status, ok := entity.ParseBatchStatus(m.Status)
	if !ok {
		status = entity.BatchStatus(m.Status)
	}

	return &entity.Batch{
		ID:          snap.Ref.ID,
		Code:        m.Code,
		AssignedTo:  m.AssignedTo,
		Status:      status,
		ShipmentIDs: m.ShipmentIDs,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		CanceledAt:  m.CanceledAt,
		LastUpdated: m.LastUpdated,
	}, nil
}

func fromUserDomain(u *entity.UserProfile) *model.UserModel {
	return &model.UserModel{
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Role:         u.Role.String(),
		ClientID:     u.ClientID,
		DriverID:     u.DriverID,
		PasswordHash: u.PasswordHash,
		FCMTokens:    append([]string{}, u.FCMTokens...),
		CreatedAt:    u.CreatedAt,
	}
}

func toUserDomain(snap *firestore.DocumentSnapshot) (*entity.UserProfile, error) {
	var m model.UserModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode user %s", snap.Ref.ID)
	}

	return &entity.UserProfile{
		ID:           snap.Ref.ID,
		Email:        m.Email,
		DisplayName:  m.DisplayName,
		Role:         entity.Role(m.Role),
		ClientID:     m.ClientID,
		DriverID:     m.DriverID,
		PasswordHash: m.PasswordHash,
		FCMTokens:    m.FCMTokens,
		CreatedAt:    m.CreatedAt,
	}, nil
}

func fromNotificationDomain(n *entity.Notification) *model.NotificationModel {
	return &model.NotificationModel{
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		Kind:      string(n.Kind),
		RefID:     n.RefID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func toNotificationDomain(snap *firestore.DocumentSnapshot) (*entity.Notification, error) {
	var m model.NotificationModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode notification %s", snap.Ref.ID)
	}

	return &entity.Notification{
		ID:        snap.Ref.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Body:      m.Body,
		Kind:      entity.NotificationKind(m.Kind),
		RefID:     m.RefID,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}, nil
}

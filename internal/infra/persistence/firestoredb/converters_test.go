package firestoredb

import (
	"testing"
	"time"

	"megafast/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShipmentStatus(t *testing.T) {
	assert.Equal(t, entity.ShipmentStatusCreated, parseShipmentStatus("pending"))
	assert.Equal(t, entity.ShipmentStatusDelivered, parseShipmentStatus("Delivered"))
	assert.Equal(t, entity.ShipmentStatus("lost"), parseShipmentStatus("lost"))
}

func TestLatLngRoundTrip(t *testing.T) {
	assert.Nil(t, toLatLng(nil))
	assert.Nil(t, fromLatLng(nil))

	ll := toLatLng(&entity.GeoPoint{Lat: 35.8256, Lng: 10.6411})
	require.NotNil(t, ll)
	assert.InDelta(t, 35.8256, ll.GetLatitude(), 1e-9)
	assert.InDelta(t, 10.6411, ll.GetLongitude(), 1e-9)
	assert.Equal(t, &entity.GeoPoint{Lat: 35.8256, Lng: 10.6411}, fromLatLng(ll))
}

func TestFromShipmentDomain(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	s := &entity.Shipment{
		ID:               "ignored",
		Barcode:          "MF250314ABCDEF",
		Status:           entity.ShipmentStatusAssigned,
		ClientID:         "client-1",
		BatchID:          "batch-1",
		PaymentMode:      entity.PaymentModeCOD,
		Amount:           12.5,
		PickupLocation:   &entity.GeoPoint{Lat: 36.8, Lng: 10.18},
		History:          []entity.HistoryEntry{{At: at, Status: entity.ShipmentStatusCreated, By: "client-user"}},
		LastUpdated:      at,
		LastUpdatedBy:    "admin-user",
		DeliveryLocation: nil,
	}

	m := fromShipmentDomain(s)
	assert.Equal(t, "assigned", m.Status)
	assert.Equal(t, "cod", m.PaymentMode)
	assert.Equal(t, "batch-1", m.BatchID)
	assert.NotNil(t, m.PickupLocation)
	assert.Nil(t, m.DeliveryLocation)
	require.Len(t, m.History, 1)
	assert.Equal(t, "created", m.History[0].Status)
	assert.Equal(t, at, m.History[0].At)
}

func TestFromBatchDomainCopiesMembers(t *testing.T) {
	b := &entity.Batch{Code: "B-1", Status: entity.BatchStatusInProgress, ShipmentIDs: []string{"a", "b"}, Version: 3}

	m := fromBatchDomain(b)
	b.ShipmentIDs[0] = "z"

	assert.Equal(t, "in_progress", m.Status)
	assert.Equal(t, []string{"a", "b"}, m.ShipmentIDs)
	assert.Equal(t, int64(3), m.Version)
}

func TestFromUserDomainKeepsEmptyTokenList(t *testing.T) {
	m := fromUserDomain(&entity.UserProfile{Email: "a@b.tn", Role: entity.RoleDriver, DriverID: "driver-1"})

	assert.Equal(t, "driver", m.Role)
	assert.NotNil(t, m.FCMTokens)
	assert.Empty(t, m.FCMTokens)
}

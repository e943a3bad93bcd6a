package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShipmentFilter_Matches(t *testing.T) {
	created := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	s := &Shipment{
		Barcode:            "MF250314A1B2C3",
		Status:             ShipmentStatusInTransit,
		ClientID:           "client-1",
		ClientName:         "Librairie Nour",
		AssignedTo:         "driver-1",
		BatchID:            "batch-1",
		Amount:             45,
		DeliveryCity:       "Sousse",
		DeliveryDelegation: "Sahloul",
		PickupCity:         "Tunis",
		CreatedAt:          created,
	}

	before, after := created.Add(-time.Hour), created.Add(time.Hour)
	low, high := 40.0, 50.0
	tooHigh := 46.0

	tests := []struct {
		name   string
		filter ShipmentFilter
		want   bool
	}{
		{name: "empty filter", filter: ShipmentFilter{}, want: true},
		{name: "status", filter: ShipmentFilter{Status: ShipmentStatusInTransit}, want: true},
		{name: "other status", filter: ShipmentFilter{Status: ShipmentStatusDelivered}, want: false},
		{name: "batch", filter: ShipmentFilter{BatchID: "batch-2"}, want: false},
		{name: "driver", filter: ShipmentFilter{AssignedTo: "driver-1"}, want: true},
		{name: "client", filter: ShipmentFilter{ClientID: "client-2"}, want: false},
		{name: "delivery place", filter: ShipmentFilter{DeliveryCity: "Sousse", DeliveryDelegation: "Sahloul"}, want: true},
		{name: "other delegation", filter: ShipmentFilter{DeliveryDelegation: "Khezama"}, want: false},
		{name: "pickup city", filter: ShipmentFilter{PickupCity: "Sfax"}, want: false},
		{name: "barcode substring any case", filter: ShipmentFilter{Barcode: "a1b2"}, want: true},
		{name: "client name substring", filter: ShipmentFilter{ClientName: "NOUR"}, want: true},
		{name: "client name mismatch", filter: ShipmentFilter{ClientName: "Zitouna"}, want: false},
		{name: "inside date range", filter: ShipmentFilter{From: &before, To: &after}, want: true},
		{name: "from is inclusive", filter: ShipmentFilter{From: &created}, want: true},
		{name: "created before range", filter: ShipmentFilter{From: &after}, want: false},
		{name: "created after range", filter: ShipmentFilter{To: &before}, want: false},
		{name: "amount range", filter: ShipmentFilter{MinAmount: &low, MaxAmount: &high}, want: true},
		{name: "below minimum", filter: ShipmentFilter{MinAmount: &tooHigh}, want: false},
		{name: "above maximum", filter: ShipmentFilter{MaxAmount: &low}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(s))
		})
	}

	assert.False(t, ShipmentFilter{}.Matches(nil))
}

func TestShipmentFilter_ApplyKeepsOrder(t *testing.T) {
	shipments := []*Shipment{
		{ID: "3", DeliveryCity: "Sfax"},
		{ID: "2", DeliveryCity: "Tunis"},
		{ID: "1", DeliveryCity: "Sfax"},
	}

	got := ShipmentFilter{DeliveryCity: "Sfax"}.Apply(shipments)
	assert.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)

	assert.NotNil(t, ShipmentFilter{DeliveryCity: "Bizerte"}.Apply(shipments))
}

func TestBatchFilter_Matches(t *testing.T) {
	b := &Batch{AssignedTo: "driver-1", Status: BatchStatusPlanned}

	assert.True(t, BatchFilter{}.Matches(b))
	assert.True(t, BatchFilter{AssignedTo: "driver-1", Status: BatchStatusPlanned}.Matches(b))
	assert.False(t, BatchFilter{AssignedTo: "driver-2"}.Matches(b))
	assert.False(t, BatchFilter{Status: BatchStatusCompleted}.Matches(b))
	assert.False(t, BatchFilter{}.Matches(nil))
}

func TestCallerIdentity(t *testing.T) {
	driver := CallerIdentity{UserID: "u-1", Role: RoleDriver, DriverID: "driver-1"}
	assert.True(t, driver.HasDriver())
	assert.False(t, driver.HasClient())
	assert.Equal(t, "driver-1", driver.Actor())

	admin := CallerIdentity{UserID: "u-2", Role: RoleAdmin, DriverID: "driver-9"}
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "u-2", admin.Actor())

	assert.Equal(t, "system", CallerIdentity{}.Actor())

	profile := &UserProfile{ID: "u-3", Role: RoleClient, ClientID: "client-1", DisplayName: "Shop"}
	assert.Equal(t, CallerIdentity{UserID: "u-3", Role: RoleClient, ClientID: "client-1", DisplayName: "Shop"}, profile.Caller())

	assert.True(t, profile.AddFCMToken("tok"))
	assert.False(t, profile.AddFCMToken("tok"))
	assert.False(t, profile.AddFCMToken(""))
	assert.Equal(t, []string{"tok"}, profile.FCMTokens)
}

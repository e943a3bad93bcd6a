package impl

import (
	"bytes"
	"testing"

	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/infra/qrcode"
	"megafast/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShipmentInput() usecase.CreateShipmentInput {
	return usecase.CreateShipmentInput{
		PaymentMode:     entity.PaymentModeCOD,
		Amount:          42.5,
		PickupAddress:   "Rue de Marseille",
		PickupCity:      "Tunis",
		DeliveryAddress: "Route de la Corniche",
		DeliveryCity:    "Bizerte",
		RecipientName:   "Yassine",
		RecipientPhone:  "+21698000000",
	}
}

func TestShipmentService_CreateShipment(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)

	created, err := srv.CreateShipment(f.ctx, f.caller(t, "client-user"), newShipmentInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^MF250314[0-9A-F]{6}$`, created.Barcode)
	assert.Equal(t, "client-1", created.ClientID)
	assert.Equal(t, "Shop", created.ClientName)
	assert.Equal(t, entity.ShipmentStatusCreated, created.Status)
	assert.Equal(t, fixtureNow, created.CreatedAt)
	require.Len(t, created.History, 1)
	assert.Equal(t, constants.NoteShipmentCreated, created.History[0].Note)
	assert.Equal(t, "client-user", created.History[0].By)

	stored := f.shipment(t, created.ID)
	assert.Equal(t, created.Barcode, stored.Barcode)
	assert.InDelta(t, 42.5, stored.Amount, 0.001)
}

func TestShipmentService_CreateShipmentRules(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)
	client := f.caller(t, "client-user")
	admin := f.caller(t, "admin-user")

	t.Run("invoice zeroes the amount", func(t *testing.T) {
		input := newShipmentInput()
		input.PaymentMode = entity.PaymentModeInvoice
		created, err := srv.CreateShipment(f.ctx, client, input)
		require.NoError(t, err)
		assert.Zero(t, created.Amount)
	})

	t.Run("unknown payment mode", func(t *testing.T) {
		input := newShipmentInput()
		input.PaymentMode = "barter"
		_, err := srv.CreateShipment(f.ctx, client, input)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("admin must name the client", func(t *testing.T) {
		_, err := srv.CreateShipment(f.ctx, admin, newShipmentInput())
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

		input := newShipmentInput()
		input.ClientID = "client-2"
		input.ClientName = "Other Shop"
		created, err := srv.CreateShipment(f.ctx, admin, input)
		require.NoError(t, err)
		assert.Equal(t, "client-2", created.ClientID)
		assert.Equal(t, "Other Shop", created.ClientName)
	})

	t.Run("driver has no client identity", func(t *testing.T) {
		_, err := srv.CreateShipment(f.ctx, f.caller(t, "driver-user"), newShipmentInput())
		assert.ErrorIs(t, err, domainerrors.ErrIdentityRequired)
	})

	t.Run("barcodes are unique per client", func(t *testing.T) {
		input := newShipmentInput()
		input.Barcode = "SHOP-0001"
		_, err := srv.CreateShipment(f.ctx, client, input)
		require.NoError(t, err)

		_, err = srv.CreateShipment(f.ctx, client, input)
		assert.ErrorIs(t, err, domainerrors.ErrBarcodeTaken)

		_, err = srv.CreateShipment(f.ctx, f.caller(t, "client-user-2"), input)
		assert.NoError(t, err)
	})
}

func TestShipmentService_TrackAndGet(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)
	s := f.seedShipment(t, assignTo(t, "driver-1"))

	tests := []struct {
		name    string
		userID  string
		wantErr error
	}{
		{name: "owner client", userID: "client-user"},
		{name: "admin", userID: "admin-user"},
		{name: "assigned driver", userID: "driver-user"},
		{name: "other client", userID: "client-user-2", wantErr: domainerrors.ErrShipmentNotFound},
		{name: "other driver", userID: "driver-user-2", wantErr: domainerrors.ErrShipmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := f.caller(t, tt.userID)

			tracked, err := srv.TrackShipment(f.ctx, caller, " "+s.Barcode+" ")
			got, getErr := srv.GetShipment(f.ctx, caller, s.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, getErr, tt.wantErr)

				return
			}
			require.NoError(t, err)
			require.NoError(t, getErr)
			assert.Equal(t, s.ID, tracked.ID)
			assert.Equal(t, s.ID, got.ID)
		})
	}
}

func TestShipmentService_TrackSharedBarcode(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)

	mine := f.seedShipment(t, func(s *entity.Shipment) {
		s.Barcode = "SHARED-1"
		assignTo(t, "driver-1")(s)
	})
	newer := f.seedShipment(t, func(s *entity.Shipment) {
		s.Barcode = "SHARED-1"
		s.ClientID = "client-2"
	})

	tracked, err := srv.TrackShipment(f.ctx, f.caller(t, "driver-user"), "SHARED-1")
	require.NoError(t, err)
	assert.Equal(t, mine.ID, tracked.ID)

	tracked, err = srv.TrackShipment(f.ctx, f.caller(t, "client-user-2"), "SHARED-1")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, tracked.ID)

	tracked, err = srv.TrackShipment(f.ctx, f.caller(t, "client-user"), "SHARED-1")
	require.NoError(t, err)
	assert.Equal(t, mine.ID, tracked.ID)

	_, err = srv.TrackShipment(f.ctx, f.caller(t, "driver-user-2"), "SHARED-1")
	assert.ErrorIs(t, err, domainerrors.ErrShipmentNotFound)

	_, err = srv.TrackShipment(f.ctx, f.caller(t, "admin-user"), "SHARED-1")
	assert.ErrorIs(t, err, domainerrors.ErrBarcodeAmbiguous)
}

func TestShipmentService_ListShipmentsIsScoped(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)

	mine := f.seedShipment(t, nil)
	f.seedShipment(t, func(s *entity.Shipment) { s.ClientID = "client-2" })

	own, err := srv.ListShipments(f.ctx, f.caller(t, "client-user"), entity.ShipmentFilter{ClientID: "client-2"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := srv.ListShipments(f.ctx, f.caller(t, "admin-user"), entity.ShipmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := srv.ListShipments(f.ctx, f.caller(t, "admin-user"), entity.ShipmentFilter{ClientID: "client-2"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	none, err := srv.ListShipments(f.ctx, f.caller(t, "driver-user"), entity.ShipmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestShipmentService_CancelShipment(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)
	client := f.caller(t, "client-user")

	t.Run("created shipment", func(t *testing.T) {
		s := f.seedShipment(t, nil)
		canceled, err := srv.CancelShipment(f.ctx, client, s.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ShipmentStatusCanceled, canceled.Status)

		events := f.takeEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "canceled", events[0].To)
		assert.Equal(t, "client-user", events[0].By)

		_, err = srv.CancelShipment(f.ctx, client, s.ID)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidStatusTransition)
	})

	t.Run("leaves a planned batch", func(t *testing.T) {
		s, other := f.seedShipment(t, nil), f.seedShipment(t, nil)
		batch := f.seedBatch(t, "B-500", "driver-1", s, other)

		_, err := srv.CancelShipment(f.ctx, client, s.ID)
		require.NoError(t, err)
		f.takeEvents()

		stored := f.shipment(t, s.ID)
		assert.Equal(t, entity.ShipmentStatusCanceled, stored.Status)
		assert.Empty(t, stored.BatchID)
		assert.Equal(t, []string{other.ID}, f.batch(t, batch.ID).ShipmentIDs)
	})

	t.Run("batch already on the road", func(t *testing.T) {
		s := f.seedShipment(t, nil)
		batch := f.seedBatch(t, "B-501", "driver-1", s)
		_, err := f.driverService(nil).StartBatchDelivery(f.ctx, f.caller(t, "driver-user"), batch.ID)
		require.NoError(t, err)
		f.takeEvents()

		_, err = srv.CancelShipment(f.ctx, client, s.ID)
		assert.ErrorIs(t, err, domainerrors.ErrBatchStateConflict)
		assert.Equal(t, entity.ShipmentStatusInTransit, f.shipment(t, s.ID).Status)
	})

	t.Run("other client", func(t *testing.T) {
		s := f.seedShipment(t, nil)
		_, err := srv.CancelShipment(f.ctx, f.caller(t, "client-user-2"), s.ID)
		assert.ErrorIs(t, err, domainerrors.ErrShipmentNotFound)
	})

	t.Run("driver", func(t *testing.T) {
		s := f.seedShipment(t, nil)
		_, err := srv.CancelShipment(f.ctx, f.caller(t, "driver-user"), s.ID)
		assert.ErrorIs(t, err, domainerrors.ErrIdentityRequired)
	})

	assert.Empty(t, f.takeEvents())
}

func TestShipmentService_Stats(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(nil)

	f.seedShipment(t, func(s *entity.Shipment) {
		assignTo(t, "driver-1")(s)
		require.NoError(t, s.Transition(entity.ShipmentStatusDelivered, "driver-1", "", s.CreatedAt))
	})
	f.seedShipment(t, nil)
	f.seedShipment(t, func(s *entity.Shipment) { s.ClientID = "client-2"; s.Amount = 30 })

	stats, err := srv.GetClientStats(f.ctx, f.caller(t, "client-user"))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Delivered)
	assert.InDelta(t, 50.0, stats.DeliveryRate, 0.001)
	assert.InDelta(t, 10.0, stats.Revenue, 0.001)
	assert.InDelta(t, 10.0, stats.PendingCOD, 0.001)
	assert.Equal(t, 1, stats.ByStatus[entity.ShipmentStatusCreated])

	empty, err := srv.GetClientStats(f.ctx, f.caller(t, "driver-user"))
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.DeliveryRate)

	_, err = srv.GetOverviewStats(f.ctx, f.caller(t, "client-user"))
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	overview, err := srv.GetOverviewStats(f.ctx, f.caller(t, "admin-user"))
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Total)
	assert.InDelta(t, 40.0, overview.PendingCOD, 0.001)
}

func TestShipmentService_ShipmentLabel(t *testing.T) {
	f := newFixture(t)
	srv := f.shipmentService(qrcode.NewLabelGenerator(128, "M"))
	s := f.seedShipment(t, nil)

	png, err := srv.ShipmentLabel(f.ctx, f.caller(t, "client-user"), s.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = srv.ShipmentLabel(f.ctx, f.caller(t, "client-user-2"), s.ID)
	assert.ErrorIs(t, err, domainerrors.ErrShipmentNotFound)
}

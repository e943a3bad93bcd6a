package impl

import (
	"testing"

	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchService_CreateBatch(t *testing.T) {
	f := newFixture(t)
	srv := f.batchService()
	admin := f.caller(t, "admin-user")

	s1 := f.seedShipment(t, nil)
	s2 := f.seedShipment(t, assignTo(t, "driver-1"))

	summary, err := srv.CreateBatch(f.ctx, admin, usecase.CreateBatchInput{
		Code:        " B-100 ",
		DriverID:    "driver-1",
		ShipmentIDs: []string{s1.ID, s2.ID, s1.ID, ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "B-100", summary.Code)
	assert.Equal(t, entity.BatchStatusPlanned, summary.Status)
	assert.Equal(t, []string{s1.ID, s2.ID}, summary.ShipmentIDs)
	assert.Equal(t, 2, summary.TotalShipments)
	assert.Equal(t, "admin-user", summary.CreatedBy)

	for _, id := range []string{s1.ID, s2.ID} {
		s := f.shipment(t, id)
		assert.Equal(t, entity.ShipmentStatusAssigned, s.Status)
		assert.Equal(t, summary.ID, s.BatchID)
		assert.Equal(t, "driver-1", s.AssignedTo)
	}
	last, _ := f.shipment(t, s1.ID).LastHistory()
	assert.Equal(t, "assigned to batch B-100", last.Note)

	// Only the created shipment changed status.
	events := f.takeEvents()
	require.Len(t, events, 1)
	assert.Equal(t, s1.ID, events[0].ShipmentID)
	assert.Equal(t, "created", events[0].From)

	notifications, err := f.repos.Notifications.ListByUser(f.ctx, "driver-user", true)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationKindBatchAssigned, notifications[0].Kind)
	assert.Equal(t, summary.ID, notifications[0].RefID)
	assert.Contains(t, notifications[0].Body, "B-100")
}

func TestBatchService_CreateBatchRecordsReassignment(t *testing.T) {
	f := newFixture(t)
	srv := f.batchService()

	moved := f.seedShipment(t, assignTo(t, "driver-2"))
	kept := f.seedShipment(t, assignTo(t, "driver-1"))

	summary, err := srv.CreateBatch(f.ctx, f.caller(t, "admin-user"), usecase.CreateBatchInput{
		Code:        "B-110",
		DriverID:    "driver-1",
		ShipmentIDs: []string{moved.ID, kept.ID},
	})
	require.NoError(t, err)

	stored := f.shipment(t, moved.ID)
	assert.Equal(t, "driver-1", stored.AssignedTo)
	assert.Equal(t, summary.ID, stored.BatchID)
	require.Len(t, stored.History, len(moved.History)+1)
	last, _ := stored.LastHistory()
	assert.Equal(t, entity.ShipmentStatusAssigned, last.Status)
	assert.Equal(t, "reassigned from driver driver-2 to batch B-110", last.Note)
	assert.Equal(t, "admin-user", last.By)
	assert.Equal(t, fixtureNow, last.At)

	last, _ = f.shipment(t, kept.ID).LastHistory()
	assert.Equal(t, "assigned to batch B-110", last.Note)
	assert.Equal(t, entity.ShipmentStatusAssigned, last.Status)

	// Annotations are not status changes.
	assert.Empty(t, f.takeEvents())
}

func TestBatchService_CreateBatchRejects(t *testing.T) {
	f := newFixture(t)
	srv := f.batchService()
	admin := f.caller(t, "admin-user")

	batched := f.seedShipment(t, nil)
	f.seedBatch(t, "B-1", "driver-1", batched)
	delivered := f.seedShipment(t, func(s *entity.Shipment) {
		assignTo(t, "driver-2")(s)
		require.NoError(t, s.Transition(entity.ShipmentStatusDelivered, "driver-2", "", s.CreatedAt))
	})
	free := f.seedShipment(t, nil)

	tests := []struct {
		name    string
		caller  entity.CallerIdentity
		input   usecase.CreateBatchInput
		wantErr error
	}{
		{
			name:    "client caller",
			caller:  f.caller(t, "client-user"),
			input:   usecase.CreateBatchInput{Code: "B-2", DriverID: "driver-1", ShipmentIDs: []string{free.ID}},
			wantErr: domainerrors.ErrForbidden,
		},
		{
			name:    "no shipments",
			caller:  admin,
			input:   usecase.CreateBatchInput{Code: "B-2", DriverID: "driver-1", ShipmentIDs: []string{" "}},
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name:    "unknown driver",
			caller:  admin,
			input:   usecase.CreateBatchInput{Code: "B-2", DriverID: "driver-9", ShipmentIDs: []string{free.ID}},
			wantErr: domainerrors.ErrUserNotFound,
		},
		{
			name:    "shipment already batched",
			caller:  admin,
			input:   usecase.CreateBatchInput{Code: "B-2", DriverID: "driver-2", ShipmentIDs: []string{free.ID, batched.ID}},
			wantErr: domainerrors.ErrShipmentAlreadyBatched,
		},
		{
			name:    "delivered shipment",
			caller:  admin,
			input:   usecase.CreateBatchInput{Code: "B-2", DriverID: "driver-2", ShipmentIDs: []string{delivered.ID}},
			wantErr: domainerrors.ErrInvalidStatusTransition,
		},
		{
			name:    "missing shipment",
			caller:  admin,
			input:   usecase.CreateBatchInput{Code: "B-2", DriverID: "driver-2", ShipmentIDs: []string{"missing"}},
			wantErr: domainerrors.ErrShipmentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := srv.CreateBatch(f.ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, summary)
		})
	}

	// Nothing from the rejected attempts was written.
	batches, err := f.repos.Batches.List(f.ctx, entity.BatchFilter{})
	require.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.Equal(t, entity.ShipmentStatusCreated, f.shipment(t, free.ID).Status)
	assert.Empty(t, f.shipment(t, free.ID).BatchID)
	assert.Empty(t, f.takeEvents())
}

func TestBatchService_CancelBatchReleasesPendingShipments(t *testing.T) {
	f := newFixture(t)
	srv := f.batchService()
	admin := f.caller(t, "admin-user")

	s1, s2 := f.seedShipment(t, nil), f.seedShipment(t, nil)
	batch := f.seedBatch(t, "B-200", "driver-1", s1, s2)

	canceled, err := srv.CancelBatch(f.ctx, admin, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusCanceled, canceled.Status)
	assert.NotNil(t, canceled.CanceledAt)
	assert.Zero(t, canceled.TotalShipments)

	for _, id := range []string{s1.ID, s2.ID} {
		s := f.shipment(t, id)
		assert.Equal(t, entity.ShipmentStatusCreated, s.Status)
		assert.Empty(t, s.BatchID)
		assert.Empty(t, s.AssignedTo)
		last, _ := s.LastHistory()
		assert.Equal(t, constants.NoteBatchCanceled, last.Note)
	}
	assert.Len(t, f.takeEvents(), 2)

	notifications, err := f.repos.Notifications.ListByUser(f.ctx, "driver-user", false)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	kinds := []entity.NotificationKind{notifications[0].Kind, notifications[1].Kind}
	assert.ElementsMatch(t, []entity.NotificationKind{entity.NotificationKindBatchAssigned, entity.NotificationKindBatchCanceled}, kinds)

	_, err = srv.CancelBatch(f.ctx, admin, batch.ID)
	assert.ErrorIs(t, err, domainerrors.ErrBatchStateConflict)

	_, err = srv.CancelBatch(f.ctx, f.caller(t, "driver-user"), batch.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// Released shipments can be batched again.
	again := f.seedBatch(t, "B-201", "driver-2", s1)
	assert.Equal(t, entity.BatchStatusPlanned, again.Status)
}

func TestBatchService_CancelBatchKeepsShipmentsOnTheRoad(t *testing.T) {
	f := newFixture(t)
	srv := f.batchService()
	s := f.seedShipment(t, nil)
	batch := f.seedBatch(t, "B-300", "driver-1", s)

	_, err := f.driverService(nil).StartBatchDelivery(f.ctx, f.caller(t, "driver-user"), batch.ID)
	require.NoError(t, err)
	f.takeEvents()

	canceled, err := srv.CancelBatch(f.ctx, f.caller(t, "admin-user"), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, canceled.TotalShipments)

	stored := f.shipment(t, s.ID)
	assert.Equal(t, entity.ShipmentStatusInTransit, stored.Status)
	assert.Equal(t, batch.ID, stored.BatchID)
	assert.Empty(t, f.takeEvents())
}

func TestBatchService_Visibility(t *testing.T) {
	f := newFixture(t)
	srv := f.batchService()

	mine := f.seedBatch(t, "B-400", "driver-1", f.seedShipment(t, nil), f.seedShipment(t, nil))
	theirs := f.seedBatch(t, "B-401", "driver-2", f.seedShipment(t, nil))

	got, err := srv.GetBatch(f.ctx, f.caller(t, "driver-user"), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalShipments)

	_, err = srv.GetBatch(f.ctx, f.caller(t, "driver-user"), theirs.ID)
	assert.ErrorIs(t, err, domainerrors.ErrBatchForbidden)

	_, err = srv.GetBatch(f.ctx, f.caller(t, "client-user"), mine.ID)
	assert.ErrorIs(t, err, domainerrors.ErrBatchForbidden)

	_, err = srv.GetBatch(f.ctx, f.caller(t, "admin-user"), "missing")
	assert.ErrorIs(t, err, domainerrors.ErrBatchNotFound)

	all, err := srv.ListBatches(f.ctx, f.caller(t, "admin-user"), entity.BatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byDriver, err := srv.ListBatches(f.ctx, f.caller(t, "admin-user"), entity.BatchFilter{AssignedTo: "driver-2"})
	require.NoError(t, err)
	require.Len(t, byDriver, 1)
	assert.Equal(t, theirs.ID, byDriver[0].ID)

	own, err := srv.ListBatches(f.ctx, f.caller(t, "driver-user"), entity.BatchFilter{AssignedTo: "driver-2"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	none, err := srv.ListBatches(f.ctx, f.caller(t, "client-user"), entity.BatchFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

package reservation_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservation_OpenSpaceIsReserved(t *testing.T) {
	f := newFixture(t)

	out := f.book(t, f.booking(f.open, f.employee, monday9.Add(-12*time.Hour), 60))
	created, ok := out.(ReservationCreated)
	require.True(t, ok, "expected a reservation, got %T", out)

	reservations, err := f.svc.ListReservations(context.Background(), reservation_models.Filter{SpaceID: &f.open.ID})
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, created.ReservationID, reservations[0].ID)
	assert.Equal(t, shared_models.ReservationStatusReserved, reservations[0].Status)
	assert.Equal(t, f.employee.ID, reservations[0].UserID)
}

func TestCreateReservation_InvalidInterval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]BookingInput{
		"zero length":   f.booking(f.open, f.employee, monday9, 0),
		"end first":     f.booking(f.open, f.employee, monday9, -30),
		"missing start": {SpaceID: f.open.ID, UserID: f.employee.ID, End: monday9},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateReservation(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInterval)
		})
	}
}

func TestCreateReservation_UnknownSpace(t *testing.T) {
	f := newFixture(t)
	in := f.booking(f.open, f.employee, monday9, 60)
	in.SpaceID = uuid.New()

	_, err := f.svc.CreateReservation(context.Background(), in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReservation_OpeningHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, f.booking(f.desk, f.employee, monday9, 60))
	assert.NoError(t, err)

	// 23:30 Monday to 00:30 Tuesday local.
	late := time.Date(2025, 6, 3, 6, 30, 0, 0, time.UTC)
	_, err = f.svc.CreateReservation(ctx, f.booking(f.desk, f.employee, late, 60))
	assert.ErrorIs(t, err, ErrOutsideOpeningHours)

	// Sunday has no window.
	_, err = f.svc.CreateReservation(ctx, f.booking(f.desk, f.employee, monday9.Add(-24*time.Hour), 60))
	assert.ErrorIs(t, err, ErrOutsideOpeningHours)
}

func TestCreateReservation_SlotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, f.booking(f.desk, f.employee, monday9, 60))

	_, err := f.svc.CreateReservation(ctx, f.booking(f.desk, f.manager, monday9.Add(30*time.Minute), 60))
	assert.ErrorIs(t, err, ErrSlotConflict)

	// [10:00, 11:00) touches [09:00, 10:00) without overlapping.
	_, err = f.svc.CreateReservation(ctx, f.booking(f.desk, f.manager, monday9.Add(time.Hour), 60))
	assert.NoError(t, err)
}

func TestCreateReservation_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.book(t, f.booking(f.desk, f.employee, monday9, 60))
	_, err := f.svc.CancelReservation(ctx, out.(ReservationCreated).ReservationID)
	require.NoError(t, err)

	_, err = f.svc.CreateReservation(ctx, f.booking(f.desk, f.manager, monday9, 60))
	assert.NoError(t, err)
}

func TestCreateReservation_FixedOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.book(t, f.booking(f.owned, f.employee, monday9, 60))
	req, ok := out.(RequestCreated)
	require.True(t, ok, "expected a request, got %T", out)

	requests, err := f.svc.ListRequests(ctx, occupancy_request_models.Filter{Status: shared_models.RequestStatusPending})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, req.RequestID, requests[0].ID)
	require.NotNil(t, requests[0].Space)
	require.NotNil(t, requests[0].Space.Owner)
	assert.Equal(t, f.owner.ID, requests[0].Space.Owner.ID)

	reservations, err := f.svc.ListReservations(ctx, reservation_models.Filter{SpaceID: &f.owned.ID})
	require.NoError(t, err)
	assert.Empty(t, reservations)

	// The owner books their own space directly.
	out = f.book(t, f.booking(f.owned, f.owner, monday9.Add(2*time.Hour), 60))
	_, ok = out.(ReservationCreated)
	assert.True(t, ok, "expected a reservation, got %T", out)
}

func TestCreateReservation_DuplicatePendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, f.booking(f.owned, f.employee, monday9, 60))

	_, err := f.svc.CreateReservation(ctx, f.booking(f.owned, f.manager, monday9.Add(-30*time.Minute), 60))
	assert.ErrorIs(t, err, ErrDuplicatePendingRequest)

	_, err = f.svc.CreateReservation(ctx, f.booking(f.owned, f.manager, monday9.Add(15*time.Minute), 15))
	assert.ErrorIs(t, err, ErrDuplicatePendingRequest)

	_, err = f.svc.CreateReservation(ctx, f.booking(f.owned, f.manager, monday9.Add(time.Hour), 60))
	assert.NoError(t, err)
}

func TestApproveRequest_Decline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.book(t, f.booking(f.owned, f.employee, monday9, 60))
	requestID := out.(RequestCreated).RequestID

	note := "Working from that desk all day"
	decision, err := f.svc.ApproveRequest(ctx, requestID, f.owner.ID, false, &note)
	require.NoError(t, err)
	assert.Equal(t, shared_models.RequestStatusDeclined, decision.Request.Status)
	require.NotNil(t, decision.Request.HandledByID)
	assert.Equal(t, f.owner.ID, *decision.Request.HandledByID)
	assert.Equal(t, &note, decision.Request.DecisionNote)
	assert.Nil(t, decision.Reservation)

	reservations, err := f.svc.ListReservations(ctx, reservation_models.Filter{SpaceID: &f.owned.ID})
	require.NoError(t, err)
	assert.Empty(t, reservations)

	_, err = f.svc.ApproveRequest(ctx, requestID, f.owner.ID, false, nil)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestApproveRequest_Approve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.book(t, f.booking(f.owned, f.employee, monday9, 60))
	requestID := out.(RequestCreated).RequestID

	decision, err := f.svc.ApproveRequest(ctx, requestID, f.owner.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, shared_models.RequestStatusApproved, decision.Request.Status)
	require.NotNil(t, decision.Reservation)

	reservations, err := f.svc.ListReservations(ctx, reservation_models.Filter{SpaceID: &f.owned.ID})
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	r := reservations[0]
	assert.Equal(t, decision.Reservation.ID, r.ID)
	assert.Equal(t, f.employee.ID, r.UserID)
	assert.True(t, r.Start.Equal(monday9))
	assert.True(t, r.End.Equal(monday9.Add(time.Hour)))
	assert.Equal(t, shared_models.ReservationStatusReserved, r.Status)

	_, err = f.svc.ApproveRequest(ctx, requestID, f.owner.ID, true, nil)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	_, err = f.svc.ApproveRequest(ctx, requestID, f.owner.ID, false, nil)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestApproveRequest_RecheckLeavesRequestPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.book(t, f.booking(f.owned, f.employee, monday9, 60))
	requestID := out.(RequestCreated).RequestID

	// The owner takes the slot after the request was filed.
	f.book(t, f.booking(f.owned, f.owner, monday9.Add(30*time.Minute), 60))

	_, err := f.svc.ApproveRequest(ctx, requestID, f.owner.ID, true, nil)
	assert.ErrorIs(t, err, ErrSlotConflict)

	pending, err := f.svc.ListRequests(ctx, occupancy_request_models.Filter{Status: shared_models.RequestStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, requestID, pending[0].ID)
	assert.Nil(t, pending[0].HandledByID)
}

func TestApproveRequest_RecheckOpeningHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A request filed against a space whose hours no longer cover it.
	var requestID uuid.UUID
	require.NoError(t, f.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		space, err := tx.GetSpace(ctx, f.owned.ID, false)
		if err != nil {
			return err
		}
		space.ID = uuid.New()
		space.Name = "Desk 1 (afternoons)"
		space.OpeningWindows = nil
		if err := space.AddWindow(1, "13:00", "18:00"); err != nil {
			return err
		}
		if err := tx.CreateSpace(ctx, space); err != nil {
			return err
		}
		req, err := occupancy_request_models.NewOccupancyRequest(space.ID, f.employee.ID, monday9, monday9.Add(time.Hour))
		if err != nil {
			return err
		}
		requestID = req.ID
		return tx.CreateRequest(ctx, req)
	}))

	_, err := f.svc.ApproveRequest(ctx, requestID, f.owner.ID, true, nil)
	assert.ErrorIs(t, err, ErrOutsideOpeningHours)
}

func TestApproveRequest_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ApproveRequest(context.Background(), uuid.New(), f.owner.ID, true, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReservationStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, f.booking(f.open, f.employee, monday9, 60)).(ReservationCreated).ReservationID

	_, err := f.svc.UpdateReservationStatus(ctx, id, shared_models.ReservationStatusReserved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	r, err := f.svc.UpdateReservationStatus(ctx, id, shared_models.ReservationStatusOccupied)
	require.NoError(t, err)
	assert.Equal(t, shared_models.ReservationStatusOccupied, r.Status)
	assert.True(t, r.UpdatedAt.Equal(monday9))

	_, err = f.svc.UpdateReservationStatus(ctx, id, shared_models.ReservationStatusReserved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	r, err = f.svc.CancelReservation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, shared_models.ReservationStatusCancelled, r.Status)

	_, err = f.svc.CancelReservation(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateReservationStatus(ctx, uuid.New(), shared_models.ReservationStatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanTransition(t *testing.T) {
	all := []shared_models.ReservationStatus{
		shared_models.ReservationStatusReserved,
		shared_models.ReservationStatusOccupied,
		shared_models.ReservationStatusCancelled,
	}
	allowed := map[[2]shared_models.ReservationStatus]bool{
		{shared_models.ReservationStatusReserved, shared_models.ReservationStatusOccupied}:  true,
		{shared_models.ReservationStatusReserved, shared_models.ReservationStatusCancelled}: true,
		{shared_models.ReservationStatusOccupied, shared_models.ReservationStatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]shared_models.ReservationStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNextAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := monday9

	next, err := f.svc.NextAvailability(ctx, f.open.ID)
	require.NoError(t, err)
	assert.Nil(t, next)

	past := f.book(t, f.booking(f.open, f.employee, now.Add(-2*time.Hour), 60)).(ReservationCreated)
	_, err = f.svc.CancelReservation(ctx, past.ReservationID)
	require.NoError(t, err)
	f.book(t, f.booking(f.open, f.employee, now.Add(time.Hour), 60))

	next, err = f.svc.NextAvailability(ctx, f.open.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(now.Add(time.Hour)), "got %s", next)

	_, err = f.svc.NextAvailability(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAvailability_Exclude(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.book(t, f.booking(f.open, f.employee, monday9, 60)).(ReservationCreated).ReservationID

	err := f.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := EnsureAvailability(ctx, tx, f.open.ID, monday9, monday9.Add(time.Hour), uuid.Nil); err == nil {
			t.Error("expected a conflict without exclusion")
		}
		return EnsureAvailability(ctx, tx, f.open.ID, monday9, monday9.Add(time.Hour), id)
	})
	assert.NoError(t, err)
}

func TestCreateReservation_ConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	outcomes := make([]Outcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every interval contains 09:50-10:00, so all of them pairwise overlap.
			start := monday9.Add(time.Duration(i) * time.Minute)
			outcomes[i], errs[i] = f.svc.CreateReservation(ctx, f.booking(f.desk, f.employee, start, 60))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			succeeded++
			assert.IsType(t, ReservationCreated{}, outcomes[i])
			continue
		}
		assert.ErrorIs(t, errs[i], ErrSlotConflict)
	}
	assert.Equal(t, 1, succeeded)

	active, err := f.svc.ListReservations(ctx, reservation_models.Filter{SpaceID: &f.desk.ID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

// conflictingStore fails every reservation insert the way the exclusion constraint
// does when a concurrent transaction commits first.
type conflictingStore struct {
	store.Store
}

type conflictingTx struct {
	store.Tx
}

func (s conflictingStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, conflictingTx{tx})
	})
}

func (conflictingTx) CreateReservation(context.Context, *reservation_models.Reservation) error {
	return store.ErrConflict
}

func TestCreateReservation_StorageConflictIsSlotConflict(t *testing.T) {
	f := newFixture(t)
	svc := &ReservationService{Store: conflictingStore{f.store}, Now: f.svc.Now}

	_, err := svc.CreateReservation(context.Background(), f.booking(f.open, f.employee, monday9, 60))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

type deadlockedStore struct {
	store.Store
}

func (deadlockedStore) InTx(context.Context, func(ctx context.Context, tx store.Tx) error) error {
	return fmt.Errorf("%w: deadlock detected", store.ErrRetryable)
}

func TestCreateReservation_StorageErrorsKeepTheirKind(t *testing.T) {
	f := newFixture(t)

	busy := &ReservationService{Store: deadlockedStore{f.store}, Now: f.svc.Now}
	_, err := busy.CreateReservation(context.Background(), f.booking(f.open, f.employee, monday9, 60))
	assert.ErrorIs(t, err, ErrBusy)
	assert.NotErrorIs(t, err, ErrSlotConflict)

	assert.NotErrorIs(t, fromStore(fmt.Errorf("%w: reservations_pkey", store.ErrDuplicate), "user", f.employee.ID), ErrSlotConflict)
}

func TestOutcomeJSON(t *testing.T) {
	id := uuid.MustParse("0190f3a4-5b6c-7d8e-9f00-112233445566")

	b, err := json.Marshal(ReservationCreated{ReservationID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"reservation","reservationId":"0190f3a4-5b6c-7d8e-9f00-112233445566"}`, string(b))

	b, err = json.Marshal(RequestCreated{RequestID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"request","requestId":"0190f3a4-5b6c-7d8e-9f00-112233445566"}`, string(b))
}

package reservation_controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/store"
)

// transitions lists the statuses reachable from each status. CANCELLED is terminal.
var transitions = map[shared_models.ReservationStatus][]shared_models.ReservationStatus{
	shared_models.ReservationStatusReserved: {shared_models.ReservationStatusOccupied, shared_models.ReservationStatusCancelled},
	shared_models.ReservationStatusOccupied: {shared_models.ReservationStatusCancelled},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to shared_models.ReservationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateReservationStatus moves a reservation to status. Disallowed moves fail with
// ErrInvalidTransition. A move into an active status re-checks the slot, ignoring the
// reservation itself.
func UpdateReservationStatus(ctx context.Context, tx store.Tx, id uuid.UUID, status shared_models.ReservationStatus, now time.Time) (*reservation_models.Reservation, error) {
	current, err := tx.GetReservation(ctx, id, true)
	if err != nil {
		return nil, fromStore(err, "reservation", id)
	}

	if !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	if status.IsActive() {
		if err := EnsureAvailability(ctx, tx, current.SpaceID, current.Start, current.End, current.ID); err != nil {
			return nil, err
		}
	}

	updated, err := tx.UpdateReservationStatus(ctx, id, status, now)
	if err != nil {
		return nil, fromStore(err, "reservation", id)
	}

	logger.InfoLogger.Infof("Reservation %s moved %s -> %s", id, current.Status, status)
	return updated, nil
}

// CancelReservation moves a reservation to CANCELLED.
func CancelReservation(ctx context.Context, tx store.Tx, id uuid.UUID, now time.Time) (*reservation_models.Reservation, error) {
	return UpdateReservationStatus(ctx, tx, id, shared_models.ReservationStatusCancelled, now)
}

// NextAvailability returns the start of the earliest RESERVED or OCCUPIED reservation
// of the space that begins after now, or nil when there is none.
func NextAvailability(ctx context.Context, tx store.Tx, spaceID uuid.UUID, now time.Time) (*time.Time, error) {
	if _, err := tx.GetSpace(ctx, spaceID, false); err != nil {
		return nil, fromStore(err, "space", spaceID)
	}

	reservations, err := tx.ListActiveReservations(ctx, spaceID, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations for space %s: %w", spaceID, err)
	}
	return nextStart(reservations, now), nil
}

// nextStart expects reservations ordered by start.
func nextStart(reservations []reservation_models.Reservation, now time.Time) *time.Time {
	for _, r := range reservations {
		if r.Start.After(now) {
			start := r.Start
			return &start
		}
	}
	return nil
}

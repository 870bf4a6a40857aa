package reservation_controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils/time_utils"
)

// BookingInput is a candidate booking.
type BookingInput struct {
	SpaceID uuid.UUID
	UserID  uuid.UUID
	Start   time.Time
	End     time.Time
	Notes   *string
}

// CreateReservation admits a candidate booking. Bookings of a fixed-owner space by
// anyone but its owner become a PENDING occupancy request; everything else becomes a
// RESERVED reservation. The space row is locked for the rest of tx, so concurrent
// admissions on the same space are decided one after another.
func CreateReservation(ctx context.Context, tx store.Tx, in BookingInput) (Outcome, error) {
	if err := time_utils.AssertChronological(in.Start, in.End); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}

	space, err := tx.GetSpace(ctx, in.SpaceID, true)
	if err != nil {
		return nil, fromStore(err, "space", in.SpaceID)
	}

	if err := ensureOpen(space, in.Start, in.End); err != nil {
		return nil, err
	}

	if err := EnsureAvailability(ctx, tx, space.ID, in.Start, in.End, uuid.Nil); err != nil {
		return nil, err
	}

	if space.HasFixedOwner && space.OwnerID != nil && !space.IsOwnedBy(in.UserID) {
		if err := ensureNoPendingOverlap(ctx, tx, space.ID, in.Start, in.End); err != nil {
			return nil, err
		}

		req, err := occupancy_request_models.NewOccupancyRequest(space.ID, in.UserID, in.Start, in.End)
		if err != nil {
			return nil, err
		}
		if err := tx.CreateRequest(ctx, req); err != nil {
			return nil, fromStore(err, "user", in.UserID)
		}

		logger.InfoLogger.Infof("Space %s is owned by %s; created occupancy request %s for %s", space.ID, *space.OwnerID, req.ID, in.UserID)
		return RequestCreated{RequestID: req.ID}, nil
	}

	res, err := reservation_models.NewReservation(space.ID, in.UserID, in.Start, in.End, in.Notes)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateReservation(ctx, res); err != nil {
		return nil, fromStore(err, "user", in.UserID)
	}

	logger.InfoLogger.Infof("Reservation %s created on space %s for %s", res.ID, space.ID, in.UserID)
	return ReservationCreated{ReservationID: res.ID}, nil
}

func ensureNoPendingOverlap(ctx context.Context, tx store.Tx, spaceID uuid.UUID, start, end time.Time) error {
	pending, err := tx.ListPendingRequests(ctx, spaceID)
	if err != nil {
		return fmt.Errorf("failed to load pending requests for space %s: %w", spaceID, err)
	}
	for _, p := range pending {
		if time_utils.Overlaps(start, end, p.Start, p.End) {
			return fmt.Errorf("%w: request %s", ErrDuplicatePendingRequest, p.ID)
		}
	}
	return nil
}

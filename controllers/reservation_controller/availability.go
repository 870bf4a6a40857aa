package reservation_controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils/time_utils"
)

// EnsureAvailability fails with ErrSlotConflict when [start, end) overlaps a RESERVED or
// OCCUPIED reservation of the space. exclude, unless uuid.Nil, is left out of the check.
func EnsureAvailability(ctx context.Context, tx store.Tx, spaceID uuid.UUID, start, end time.Time, exclude uuid.UUID) error {
	existing, err := tx.ListActiveReservations(ctx, spaceID, exclude)
	if err != nil {
		return fmt.Errorf("failed to load reservations for space %s: %w", spaceID, err)
	}

	for _, r := range existing {
		if time_utils.Overlaps(start, end, r.Start, r.End) {
			logger.WarnLogger.Warnf("Slot conflict on space %s: [%s, %s) overlaps reservation %s",
				spaceID, start.Format(time.RFC3339), end.Format(time.RFC3339), r.ID)
			return fmt.Errorf("%w: overlaps reservation %s", ErrSlotConflict, r.ID)
		}
	}
	return nil
}

// ensureOpen fails with ErrOutsideOpeningHours unless [start, end) fits one of the
// space's opening windows in its location's timezone.
func ensureOpen(space *space_models.Space, start, end time.Time) error {
	loc, err := time_utils.LoadLocation(space.Location.Timezone)
	if err != nil {
		logger.ErrorLogger.Errorf("Location %s of space %s has a bad timezone: %v", space.Location.ID, space.ID, err)
		return err
	}
	if !time_utils.IsWithinOpeningWindows(space.OpeningWindows, start, end, loc) {
		return fmt.Errorf("%w: space %s", ErrOutsideOpeningHours, space.ID)
	}
	return nil
}

// fromStore converts store sentinels into the booking error kinds.
func fromStore(err error, kind string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s %v", ErrNotFound, kind, id)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %v", ErrSlotConflict, err)
	case errors.Is(err, store.ErrRetryable):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}

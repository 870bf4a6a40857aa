package reservation_controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/store"
)

// ReservationService runs each booking operation in its own transaction.
type ReservationService struct {
	Store store.Store
	Now   func() time.Time
}

// NewReservationService creates a ReservationService on s using the wall clock.
func NewReservationService(s store.Store) *ReservationService {
	return &ReservationService{Store: s, Now: time.Now}
}

func (s *ReservationService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// inTx runs fn and maps store errors surfaced at commit time onto the booking kinds.
func (s *ReservationService) inTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	err := s.Store.InTx(ctx, fn)
	switch {
	case errors.Is(err, store.ErrConflict) && !errors.Is(err, ErrSlotConflict):
		return fmt.Errorf("%w: %v", ErrSlotConflict, err)
	case errors.Is(err, store.ErrRetryable) && !errors.Is(err, ErrBusy):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}

func (s *ReservationService) CreateReservation(ctx context.Context, in BookingInput) (Outcome, error) {
	var out Outcome
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = CreateReservation(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReservationService) ApproveRequest(ctx context.Context, requestID, approverID uuid.UUID, approve bool, note *string) (*Decision, error) {
	var out *Decision
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = ApproveRequest(ctx, tx, requestID, approverID, approve, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReservationService) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status shared_models.ReservationStatus) (*reservation_models.Reservation, error) {
	var out *reservation_models.Reservation
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = UpdateReservationStatus(ctx, tx, id, status, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReservationService) CancelReservation(ctx context.Context, id uuid.UUID) (*reservation_models.Reservation, error) {
	var out *reservation_models.Reservation
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = CancelReservation(ctx, tx, id, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReservationService) NextAvailability(ctx context.Context, spaceID uuid.UUID) (*time.Time, error) {
	var out *time.Time
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = NextAvailability(ctx, tx, spaceID, s.now())
		return err
	})
	return out, err
}

func (s *ReservationService) ListReservations(ctx context.Context, f reservation_models.Filter) ([]reservation_models.Reservation, error) {
	var out []reservation_models.Reservation
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListReservations(ctx, f)
		return err
	})
	return out, err
}

func (s *ReservationService) ListRequests(ctx context.Context, f occupancy_request_models.Filter) ([]occupancy_request_models.OccupancyRequest, error) {
	var out []occupancy_request_models.OccupancyRequest
	err := s.inTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListRequests(ctx, f)
		return err
	})
	return out, err
}

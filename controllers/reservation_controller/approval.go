package reservation_controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/store"
)

// Decision is a resolved occupancy request. Reservation is set only on approval.
type Decision struct {
	Request     *occupancy_request_models.OccupancyRequest `json:"request"`
	Reservation *reservation_models.Reservation            `json:"reservation,omitempty"`
}

// ApproveRequest resolves a PENDING request. Declining only records the decision.
// Approving re-checks availability and opening hours against the current state and
// then marks the request APPROVED and creates the matching reservation in the same tx.
// A failed re-check leaves the request PENDING.
func ApproveRequest(ctx context.Context, tx store.Tx, requestID, approverID uuid.UUID, approve bool, note *string) (*Decision, error) {
	req, err := tx.GetRequest(ctx, requestID, true)
	if err != nil {
		return nil, fromStore(err, "occupancy request", requestID)
	}
	if req.Status != shared_models.RequestStatusPending {
		return nil, fmt.Errorf("%w: request %s is %s", ErrAlreadyResolved, req.ID, req.Status)
	}

	space, err := tx.GetSpace(ctx, req.SpaceID, true)
	if err != nil {
		return nil, fromStore(err, "space", req.SpaceID)
	}

	if !approve {
		req.Resolve(shared_models.RequestStatusDeclined, approverID, note)
		if err := resolve(ctx, tx, req); err != nil {
			return nil, err
		}
		logger.InfoLogger.Infof("Occupancy request %s declined by %s", req.ID, approverID)
		return &Decision{Request: req}, nil
	}

	if err := EnsureAvailability(ctx, tx, space.ID, req.Start, req.End, uuid.Nil); err != nil {
		return nil, err
	}
	if err := ensureOpen(space, req.Start, req.End); err != nil {
		return nil, err
	}

	req.Resolve(shared_models.RequestStatusApproved, approverID, note)
	if err := resolve(ctx, tx, req); err != nil {
		return nil, err
	}

	res, err := reservation_models.NewReservation(req.SpaceID, req.RequesterID, req.Start, req.End, nil)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateReservation(ctx, res); err != nil {
		return nil, fromStore(err, "user", req.RequesterID)
	}

	logger.InfoLogger.Infof("Occupancy request %s approved by %s; reservation %s created", req.ID, approverID, res.ID)
	return &Decision{Request: req, Reservation: res}, nil
}

func resolve(ctx context.Context, tx store.Tx, req *occupancy_request_models.OccupancyRequest) error {
	err := tx.ResolveRequest(ctx, req)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: request %s", ErrAlreadyResolved, req.ID)
	}
	return fromStore(err, "occupancy request", req.ID)
}

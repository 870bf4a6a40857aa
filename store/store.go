// Package store defines the persistence boundary for bookings. Every operation runs
// against a Tx obtained from Store.InTx, so a whole admission or approval decision
// commits or rolls back as one unit.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/models/user_models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write loses against a concurrent one: an
	// overlapping active reservation or a serialization failure.
	ErrConflict = errors.New("conflicting write")
	// ErrDuplicate is returned when a record with the same key already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrRetryable is returned when the database aborted the transaction, for example
	// on a deadlock. The whole operation may be retried.
	ErrRetryable = errors.New("transaction aborted, retry")
)

// Store opens transactions.
type Store interface {
	// InTx runs fn inside one transaction. It commits when fn returns nil and rolls
	// back otherwise, returning fn's error.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of reads and writes available inside a transaction.
type Tx interface {
	// GetSpace loads a space with its location, owner and opening windows. With lock
	// set, concurrent locking reads of the same space wait until this Tx ends.
	GetSpace(ctx context.Context, id uuid.UUID, lock bool) (*space_models.Space, error)
	ListSpaces(ctx context.Context, locationID *uuid.UUID) ([]space_models.Space, error)
	CreateSpace(ctx context.Context, s *space_models.Space) error

	ListLocations(ctx context.Context) ([]location_models.Location, error)
	CreateLocation(ctx context.Context, l *location_models.Location) error

	ListUsers(ctx context.Context) ([]user_models.User, error)
	// GetUser looks a user up by id, or by email when id is uuid.Nil.
	GetUser(ctx context.Context, id uuid.UUID, email string) (*user_models.User, error)
	CreateUser(ctx context.Context, u *user_models.User) error

	CreateReservation(ctx context.Context, r *reservation_models.Reservation) error
	GetReservation(ctx context.Context, id uuid.UUID, lock bool) (*reservation_models.Reservation, error)
	// ListActiveReservations returns RESERVED and OCCUPIED reservations of a space
	// ordered by start. exclude is skipped unless it is uuid.Nil.
	ListActiveReservations(ctx context.Context, spaceID, exclude uuid.UUID) ([]reservation_models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, status shared_models.ReservationStatus, at time.Time) (*reservation_models.Reservation, error)
	ListReservations(ctx context.Context, f reservation_models.Filter) ([]reservation_models.Reservation, error)

	CreateRequest(ctx context.Context, r *occupancy_request_models.OccupancyRequest) error
	GetRequest(ctx context.Context, id uuid.UUID, lock bool) (*occupancy_request_models.OccupancyRequest, error)
	ListPendingRequests(ctx context.Context, spaceID uuid.UUID) ([]occupancy_request_models.OccupancyRequest, error)
	// ResolveRequest persists the decision carried by r. It fails with ErrNotFound
	// when the stored request is no longer PENDING.
	ResolveRequest(ctx context.Context, r *occupancy_request_models.OccupancyRequest) error
	ListRequests(ctx context.Context, f occupancy_request_models.Filter) ([]occupancy_request_models.OccupancyRequest, error)
}

// Package postgres_store implements store.Store on PostgreSQL through pgx.
package postgres_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/models/user_models"
	"github.com/joy095/workspace/store"
)

// SQLSTATE codes mapped onto store sentinels.
const (
	codeForeignKeyViolation  = "23503"
	codeExclusionViolation   = "23P01"
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// DBTX is satisfied by *pgxpool.Pool and by pgxmock pools.
type DBTX interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PostgresStore runs transactions on a pgx pool.
type PostgresStore struct {
	db DBTX
}

// New creates a PostgresStore.
func New(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// InTx runs fn in a READ COMMITTED transaction. Booking decisions serialise on the
// space row lock taken by GetSpace(lock=true); the reservations exclusion constraint
// rejects anything that slips past it.
func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.ErrorLogger.Errorf("Failed to roll back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit transaction: %v", err)
		return translateError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// translateError maps pgx and SQLSTATE errors onto the store sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", store.ErrNotFound, pgErr.Message)
		case codeExclusionViolation, codeSerializationFailure:
			logger.WarnLogger.Warnf("Write rejected by database (%s): %s", pgErr.Code, pgErr.Message)
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.Message)
		case codeUniqueViolation:
			logger.ErrorLogger.Errorf("Duplicate key (%s): %s", pgErr.ConstraintName, pgErr.Message)
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.Message)
		case codeDeadlockDetected:
			logger.WarnLogger.Warnf("Transaction aborted by database (%s): %s", pgErr.Code, pgErr.Message)
			return fmt.Errorf("%w: %s", store.ErrRetryable, pgErr.Message)
		}
	}
	return err
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetSpace(ctx context.Context, id uuid.UUID, lock bool) (*space_models.Space, error) {
	s, err := space_models.GetSpaceTx(ctx, t.tx, id, lock)
	return s, translateError(err)
}

func (t *pgTx) ListSpaces(ctx context.Context, locationID *uuid.UUID) ([]space_models.Space, error) {
	s, err := space_models.ListSpacesTx(ctx, t.tx, locationID)
	return s, translateError(err)
}

func (t *pgTx) CreateSpace(ctx context.Context, s *space_models.Space) error {
	return translateError(space_models.CreateSpaceTx(ctx, t.tx, s))
}

func (t *pgTx) ListLocations(ctx context.Context) ([]location_models.Location, error) {
	l, err := location_models.ListLocationsTx(ctx, t.tx)
	return l, translateError(err)
}

func (t *pgTx) CreateLocation(ctx context.Context, l *location_models.Location) error {
	return translateError(location_models.CreateLocationTx(ctx, t.tx, l))
}

func (t *pgTx) ListUsers(ctx context.Context) ([]user_models.User, error) {
	u, err := user_models.ListUsersTx(ctx, t.tx)
	return u, translateError(err)
}

func (t *pgTx) GetUser(ctx context.Context, id uuid.UUID, email string) (*user_models.User, error) {
	u, err := user_models.GetUserTx(ctx, t.tx, id, email)
	return u, translateError(err)
}

func (t *pgTx) CreateUser(ctx context.Context, u *user_models.User) error {
	return translateError(user_models.CreateUserTx(ctx, t.tx, u))
}

func (t *pgTx) CreateReservation(ctx context.Context, r *reservation_models.Reservation) error {
	return translateError(reservation_models.CreateReservationTx(ctx, t.tx, r))
}

func (t *pgTx) GetReservation(ctx context.Context, id uuid.UUID, lock bool) (*reservation_models.Reservation, error) {
	r, err := reservation_models.GetReservationTx(ctx, t.tx, id, lock)
	return r, translateError(err)
}

func (t *pgTx) ListActiveReservations(ctx context.Context, spaceID, exclude uuid.UUID) ([]reservation_models.Reservation, error) {
	r, err := reservation_models.ListActiveBySpaceTx(ctx, t.tx, spaceID, exclude)
	return r, translateError(err)
}

func (t *pgTx) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status shared_models.ReservationStatus, at time.Time) (*reservation_models.Reservation, error) {
	r, err := reservation_models.UpdateReservationStatusTx(ctx, t.tx, id, status, at)
	return r, translateError(err)
}

func (t *pgTx) ListReservations(ctx context.Context, f reservation_models.Filter) ([]reservation_models.Reservation, error) {
	r, err := reservation_models.ListReservationsTx(ctx, t.tx, f)
	return r, translateError(err)
}

func (t *pgTx) CreateRequest(ctx context.Context, r *occupancy_request_models.OccupancyRequest) error {
	return translateError(occupancy_request_models.CreateRequestTx(ctx, t.tx, r))
}

func (t *pgTx) GetRequest(ctx context.Context, id uuid.UUID, lock bool) (*occupancy_request_models.OccupancyRequest, error) {
	r, err := occupancy_request_models.GetRequestTx(ctx, t.tx, id, lock)
	return r, translateError(err)
}

func (t *pgTx) ListPendingRequests(ctx context.Context, spaceID uuid.UUID) ([]occupancy_request_models.OccupancyRequest, error) {
	r, err := occupancy_request_models.ListPendingBySpaceTx(ctx, t.tx, spaceID)
	return r, translateError(err)
}

func (t *pgTx) ResolveRequest(ctx context.Context, r *occupancy_request_models.OccupancyRequest) error {
	return translateError(occupancy_request_models.ResolveRequestTx(ctx, t.tx, r))
}

func (t *pgTx) ListRequests(ctx context.Context, f occupancy_request_models.Filter) ([]occupancy_request_models.OccupancyRequest, error) {
	r, err := occupancy_request_models.ListRequestsTx(ctx, t.tx, f)
	return r, translateError(err)
}

package reservation_models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/shared_models"
)

// Reservation is a confirmed or historical booking of a space.
type Reservation struct {
	ID        uuid.UUID                       `json:"id"`
	SpaceID   uuid.UUID                       `json:"spaceId"`
	UserID    uuid.UUID                       `json:"userId"`
	Start     time.Time                       `json:"start"`
	End       time.Time                       `json:"end"`
	Status    shared_models.ReservationStatus `json:"status"`
	Notes     *string                         `json:"notes,omitempty"`
	CreatedAt time.Time                       `json:"createdAt"`
	UpdatedAt time.Time                       `json:"updatedAt"`

	// Populated by listings only.
	User  *shared_models.PersonRef `json:"user,omitempty"`
	Space *SpaceRef                `json:"space,omitempty"`
}

// SpaceRef is the compact space shape embedded in reservation listings.
type SpaceRef struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Type         shared_models.SpaceType `json:"type"`
	LocationID   uuid.UUID               `json:"locationId"`
	LocationName string                  `json:"locationName"`
}

// Filter narrows ListReservationsTx. Zero fields are ignored.
type Filter struct {
	LocationID *uuid.UUID
	SpaceID    *uuid.UUID
	UserID     *uuid.UUID
	Status     shared_models.ReservationStatus
	// ActiveOnly keeps RESERVED and OCCUPIED rows.
	ActiveOnly bool
	// EndsAfter keeps rows whose end is at or after the instant.
	EndsAfter *time.Time
}

// NewReservation creates a RESERVED reservation for the given interval.
func NewReservation(spaceID, userID uuid.UUID, start, end time.Time, notes *string) (*Reservation, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for reservation: %w", err)
	}
	now := time.Now().UTC()
	return &Reservation{
		ID:        id,
		SpaceID:   spaceID,
		UserID:    userID,
		Start:     start,
		End:       end,
		Status:    shared_models.ReservationStatusReserved,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

const reservationColumns = `r.id, r.space_id, r.user_id, r.start_at, r.end_at, r.status, r.notes, r.created_at, r.updated_at`

func scanReservation(row pgx.Row, extra ...any) (*Reservation, error) {
	var r Reservation
	dest := append([]any{
		&r.ID, &r.SpaceID, &r.UserID, &r.Start, &r.End, &r.Status, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func activeStatuses() []string {
	out := make([]string, len(shared_models.ActiveReservationStatuses))
	for i, s := range shared_models.ActiveReservationStatuses {
		out[i] = string(s)
	}
	return out
}

// CreateReservationTx inserts a reservation.
func CreateReservationTx(ctx context.Context, tx pgx.Tx, r *Reservation) error {
	logger.InfoLogger.Infof("Creating reservation %s for space %s [%s, %s)", r.ID, r.SpaceID, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))

	query := `
		INSERT INTO reservations (id, space_id, user_id, start_at, end_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := tx.Exec(ctx, query,
		r.ID, r.SpaceID, r.UserID, r.Start, r.End, r.Status, r.Notes, r.CreatedAt, r.UpdatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert reservation for space %s: %v", r.SpaceID, err)
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// GetReservationTx fetches a reservation, optionally locking the row.
func GetReservationTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	r, err := scanReservation(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Reservation with ID %s not found", id)
			return nil, fmt.Errorf("reservation %s: %w", id, err)
		}
		logger.ErrorLogger.Errorf("Failed to fetch reservation %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching reservation: %w", err)
	}
	return r, nil
}

// ListActiveBySpaceTx returns RESERVED/OCCUPIED reservations of a space ordered by start,
// skipping exclude when it is not uuid.Nil.
func ListActiveBySpaceTx(ctx context.Context, tx pgx.Tx, spaceID, exclude uuid.UUID) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.space_id = $1 AND r.status = ANY($2) AND r.id <> $3
		ORDER BY r.start_at ASC`

	rows, err := tx.Query(ctx, query, spaceID, activeStatuses(), exclude)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query active reservations for space %s: %v", spaceID, err)
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during reservation iteration: %w", err)
	}
	return out, nil
}

// UpdateReservationStatusTx sets the status of a reservation and returns the updated row.
func UpdateReservationStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status shared_models.ReservationStatus, at time.Time) (*Reservation, error) {
	logger.InfoLogger.Infof("Updating status for reservation %s to %s", id, status)

	query := `
		UPDATE reservations r
		SET status = $2, updated_at = $3
		WHERE r.id = $1
		RETURNING ` + reservationColumns

	r, err := scanReservation(tx.QueryRow(ctx, query, id, status, at.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reservation %s: %w", id, err)
		}
		logger.ErrorLogger.Errorf("Failed to update reservation %s status: %v", id, err)
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return r, nil
}

// ListReservationsTx returns reservations matching f, with user and space summaries,
// ordered by start.
func ListReservationsTx(ctx context.Context, tx pgx.Tx, f Filter) ([]Reservation, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.LocationID != nil {
		add("s.location_id = ?", *f.LocationID)
	}
	if f.SpaceID != nil {
		add("r.space_id = ?", *f.SpaceID)
	}
	if f.UserID != nil {
		add("r.user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		add("r.status = ?", f.Status)
	}
	if f.ActiveOnly {
		add("r.status = ANY(?)", activeStatuses())
	}
	if f.EndsAfter != nil {
		add("r.end_at >= ?", *f.EndsAfter)
	}

	query := `
		SELECT ` + reservationColumns + `,
			u.name, u.email, s.name, s.type, l.id, l.name
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		JOIN spaces s ON s.id = r.space_id
		JOIN locations l ON l.id = s.location_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY r.start_at ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list reservations: %v", err)
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var user shared_models.PersonRef
		var space SpaceRef
		r, err := scanReservation(rows, &user.Name, &user.Email, &space.Name, &space.Type, &space.LocationID, &space.LocationName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}
		user.ID = r.UserID
		space.ID = r.SpaceID
		r.User = &user
		r.Space = &space
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during reservation iteration: %w", err)
	}

	logger.InfoLogger.Infof("Fetched %d reservations", len(out))
	return out, nil
}

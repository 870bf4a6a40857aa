package occupancy_request_models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/shared_models"
)

// OccupancyRequest asks the owner of a fixed-owner space for a booking.
// It is resolved exactly once: PENDING -> APPROVED | DECLINED.
type OccupancyRequest struct {
	ID           uuid.UUID                   `json:"id"`
	SpaceID      uuid.UUID                   `json:"spaceId"`
	RequesterID  uuid.UUID                   `json:"requesterId"`
	Start        time.Time                   `json:"start"`
	End          time.Time                   `json:"end"`
	Status       shared_models.RequestStatus `json:"status"`
	HandledByID  *uuid.UUID                  `json:"handledById,omitempty"`
	DecisionNote *string                     `json:"decisionNote,omitempty"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`

	// Populated by listings only.
	Requester *shared_models.PersonRef `json:"requester,omitempty"`
	HandledBy *shared_models.PersonRef `json:"handledBy,omitempty"`
	Space     *SpaceRef                `json:"space,omitempty"`
}

// SpaceRef is the compact space shape embedded in request listings.
type SpaceRef struct {
	ID           uuid.UUID                `json:"id"`
	Name         string                   `json:"name"`
	Type         shared_models.SpaceType  `json:"type"`
	Owner        *shared_models.PersonRef `json:"owner,omitempty"`
	LocationID   uuid.UUID                `json:"locationId"`
	LocationName string                   `json:"locationName"`
}

// Filter narrows ListRequestsTx. Zero fields are ignored.
type Filter struct {
	LocationID *uuid.UUID
	Status     shared_models.RequestStatus
}

// NewOccupancyRequest creates a PENDING request.
func NewOccupancyRequest(spaceID, requesterID uuid.UUID, start, end time.Time) (*OccupancyRequest, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for occupancy request: %w", err)
	}
	now := time.Now().UTC()
	return &OccupancyRequest{
		ID:          id,
		SpaceID:     spaceID,
		RequesterID: requesterID,
		Start:       start,
		End:         end,
		Status:      shared_models.RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Resolve records a decision on the request.
func (r *OccupancyRequest) Resolve(status shared_models.RequestStatus, handlerID uuid.UUID, note *string) {
	r.Status = status
	r.HandledByID = &handlerID
	r.DecisionNote = note
	r.UpdatedAt = time.Now().UTC()
}

const requestColumns = `q.id, q.space_id, q.requester_id, q.start_at, q.end_at, q.status, q.handled_by_id, q.decision_note, q.created_at, q.updated_at`

func scanRequest(row pgx.Row, extra ...any) (*OccupancyRequest, error) {
	var r OccupancyRequest
	var handledBy pgtype.UUID
	dest := append([]any{
		&r.ID, &r.SpaceID, &r.RequesterID, &r.Start, &r.End, &r.Status, &handledBy, &r.DecisionNote, &r.CreatedAt, &r.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if handledBy.Valid {
		id := uuid.UUID(handledBy.Bytes)
		r.HandledByID = &id
	}
	return &r, nil
}

// CreateRequestTx inserts a request.
func CreateRequestTx(ctx context.Context, tx pgx.Tx, r *OccupancyRequest) error {
	logger.InfoLogger.Infof("Creating occupancy request %s for space %s by %s", r.ID, r.SpaceID, r.RequesterID)

	query := `
		INSERT INTO occupancy_requests (id, space_id, requester_id, start_at, end_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := tx.Exec(ctx, query,
		r.ID, r.SpaceID, r.RequesterID, r.Start, r.End, r.Status, r.CreatedAt, r.UpdatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert occupancy request for space %s: %v", r.SpaceID, err)
		return fmt.Errorf("failed to create occupancy request: %w", err)
	}
	return nil
}

// GetRequestTx fetches a request, optionally locking the row.
func GetRequestTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, lock bool) (*OccupancyRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM occupancy_requests q WHERE q.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	r, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Occupancy request with ID %s not found", id)
			return nil, fmt.Errorf("occupancy request %s: %w", id, err)
		}
		logger.ErrorLogger.Errorf("Failed to fetch occupancy request %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching occupancy request: %w", err)
	}
	return r, nil
}

// ListPendingBySpaceTx returns the PENDING requests of a space ordered by start.
func ListPendingBySpaceTx(ctx context.Context, tx pgx.Tx, spaceID uuid.UUID) ([]OccupancyRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM occupancy_requests q
		WHERE q.space_id = $1 AND q.status = $2
		ORDER BY q.start_at ASC`

	rows, err := tx.Query(ctx, query, spaceID, shared_models.RequestStatusPending)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query pending requests for space %s: %v", spaceID, err)
		return nil, fmt.Errorf("failed to fetch pending requests: %w", err)
	}
	defer rows.Close()

	var out []OccupancyRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan occupancy request row: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during occupancy request iteration: %w", err)
	}
	return out, nil
}

// ResolveRequestTx persists a decision. Only a PENDING row is updated; a row that was
// resolved concurrently yields pgx.ErrNoRows.
func ResolveRequestTx(ctx context.Context, tx pgx.Tx, r *OccupancyRequest) error {
	logger.InfoLogger.Infof("Resolving occupancy request %s as %s", r.ID, r.Status)

	query := `
		UPDATE occupancy_requests
		SET status = $2, handled_by_id = $3, decision_note = $4, updated_at = $5
		WHERE id = $1 AND status = $6`

	tag, err := tx.Exec(ctx, query, r.ID, r.Status, r.HandledByID, r.DecisionNote, r.UpdatedAt, shared_models.RequestStatusPending)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to resolve occupancy request %s: %v", r.ID, err)
		return fmt.Errorf("failed to resolve occupancy request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending occupancy request %s: %w", r.ID, pgx.ErrNoRows)
	}
	return nil
}

// ListRequestsTx returns requests matching f with requester, handler and space summaries,
// newest first.
func ListRequestsTx(ctx context.Context, tx pgx.Tx, f Filter) ([]OccupancyRequest, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.LocationID != nil {
		add("s.location_id = ?", *f.LocationID)
	}
	if f.Status != "" {
		add("q.status = ?", f.Status)
	}

	query := `
		SELECT ` + requestColumns + `,
			ru.name, ru.email, hu.name, hu.email,
			s.name, s.type, s.owner_id, ou.name, ou.email, l.id, l.name
		FROM occupancy_requests q
		JOIN users ru ON ru.id = q.requester_id
		LEFT JOIN users hu ON hu.id = q.handled_by_id
		JOIN spaces s ON s.id = q.space_id
		LEFT JOIN users ou ON ou.id = s.owner_id
		JOIN locations l ON l.id = s.location_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY q.created_at DESC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list occupancy requests: %v", err)
		return nil, fmt.Errorf("failed to fetch occupancy requests: %w", err)
	}
	defer rows.Close()

	var out []OccupancyRequest
	for rows.Next() {
		var requester shared_models.PersonRef
		var handlerName, handlerEmail, ownerName, ownerEmail *string
		var ownerID pgtype.UUID
		var space SpaceRef
		r, err := scanRequest(rows,
			&requester.Name, &requester.Email, &handlerName, &handlerEmail,
			&space.Name, &space.Type, &ownerID, &ownerName, &ownerEmail, &space.LocationID, &space.LocationName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan occupancy request row: %w", err)
		}
		requester.ID = r.RequesterID
		r.Requester = &requester
		if r.HandledByID != nil && handlerName != nil && handlerEmail != nil {
			r.HandledBy = &shared_models.PersonRef{ID: *r.HandledByID, Name: *handlerName, Email: *handlerEmail}
		}
		space.ID = r.SpaceID
		if ownerID.Valid && ownerName != nil && ownerEmail != nil {
			space.Owner = &shared_models.PersonRef{ID: uuid.UUID(ownerID.Bytes), Name: *ownerName, Email: *ownerEmail}
		}
		r.Space = &space
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during occupancy request iteration: %w", err)
	}

	logger.InfoLogger.Infof("Fetched %d occupancy requests", len(out))
	return out, nil
}

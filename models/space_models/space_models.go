package space_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/shared_models"
)

// OpeningWindow is a weekly interval during which a space accepts bookings.
// DayOfWeek follows time.Weekday (0 = Sunday). Times are "HH:MM" wall clock
// in the location's timezone and never cross midnight.
type OpeningWindow struct {
	ID        uuid.UUID `json:"id"`
	SpaceID   uuid.UUID `json:"spaceId"`
	DayOfWeek int       `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

// Space is a bookable resource.
type Space struct {
	ID             uuid.UUID                 `json:"id"`
	LocationID     uuid.UUID                 `json:"locationId"`
	Name           string                    `json:"name"`
	Code           *string                   `json:"code,omitempty"`
	Type           shared_models.SpaceType   `json:"type"`
	Description    *string                   `json:"description,omitempty"`
	Capacity       int                       `json:"capacity"`
	Floor          *int                      `json:"floor,omitempty"`
	GridX          *int                      `json:"gridX,omitempty"`
	GridY          *int                      `json:"gridY,omitempty"`
	Color          *string                   `json:"color,omitempty"`
	HasFixedOwner  bool                      `json:"hasFixedOwner"`
	OwnerID        *uuid.UUID                `json:"ownerId,omitempty"`
	Owner          *shared_models.PersonRef  `json:"owner,omitempty"`
	Location       location_models.Location  `json:"location"`
	OpeningWindows []OpeningWindow           `json:"openingWindows,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

var ErrOwnerRequired = errors.New("space with a fixed owner must have an owner")

// NewSpace creates a Space with a fresh identifier.
func NewSpace(locationID uuid.UUID, name string, spaceType shared_models.SpaceType, capacity int) (*Space, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for space: %w", err)
	}
	return &Space{
		ID:         id,
		LocationID: locationID,
		Name:       name,
		Type:       spaceType,
		Capacity:   capacity,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// AssignOwner marks the space as owner-bound.
func (s *Space) AssignOwner(ownerID uuid.UUID) {
	s.HasFixedOwner = true
	s.OwnerID = &ownerID
}

// AddWindow appends an opening window for day (0 = Sunday).
func (s *Space) AddWindow(day int, start, end string) error {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID for opening window: %w", err)
	}
	s.OpeningWindows = append(s.OpeningWindows, OpeningWindow{
		ID:        id,
		SpaceID:   s.ID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	})
	return nil
}

// Validate checks the ownership invariant and window days.
func (s *Space) Validate() error {
	if s.HasFixedOwner && (s.OwnerID == nil || *s.OwnerID == uuid.Nil) {
		return ErrOwnerRequired
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("space capacity must be positive, got %d", s.Capacity)
	}
	for _, w := range s.OpeningWindows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return fmt.Errorf("opening window day %d out of range", w.DayOfWeek)
		}
	}
	return nil
}

// IsOwnedBy reports whether userID is the fixed owner of the space.
func (s *Space) IsOwnedBy(userID uuid.UUID) bool {
	return s.HasFixedOwner && s.OwnerID != nil && *s.OwnerID == userID
}

const spaceSelect = `
	SELECT
		s.id, s.location_id, s.name, s.code, s.type, s.description, s.capacity,
		s.floor, s.grid_x, s.grid_y, s.color, s.has_fixed_owner, s.owner_id, s.created_at,
		o.name, o.email,
		l.id, l.name, l.slug, l.timezone, l.address, l.description, l.created_at
	FROM spaces s
	JOIN locations l ON l.id = s.location_id
	LEFT JOIN users o ON o.id = s.owner_id`

func scanSpace(row pgx.Row) (*Space, error) {
	var s Space
	var ownerID pgtype.UUID
	var ownerName, ownerEmail *string
	err := row.Scan(
		&s.ID, &s.LocationID, &s.Name, &s.Code, &s.Type, &s.Description, &s.Capacity,
		&s.Floor, &s.GridX, &s.GridY, &s.Color, &s.HasFixedOwner, &ownerID, &s.CreatedAt,
		&ownerName, &ownerEmail,
		&s.Location.ID, &s.Location.Name, &s.Location.Slug, &s.Location.Timezone,
		&s.Location.Address, &s.Location.Description, &s.Location.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		id := uuid.UUID(ownerID.Bytes)
		s.OwnerID = &id
		if ownerName != nil && ownerEmail != nil {
			s.Owner = &shared_models.PersonRef{ID: id, Name: *ownerName, Email: *ownerEmail}
		}
	}
	return &s, nil
}

// GetSpaceTx loads a space with its location and opening windows. With lock set the
// space row is held FOR UPDATE until the transaction ends, which serialises every
// booking decision on that space.
func GetSpaceTx(ctx context.Context, tx pgx.Tx, spaceID uuid.UUID, lock bool) (*Space, error) {
	logger.DebugLogger.Debugf("Fetching space %s (lock=%t)", spaceID, lock)

	query := spaceSelect + ` WHERE s.id = $1`
	if lock {
		query += ` FOR UPDATE OF s`
	}

	space, err := scanSpace(tx.QueryRow(ctx, query, spaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Space with ID %s not found", spaceID)
			return nil, fmt.Errorf("space %s: %w", spaceID, err)
		}
		logger.ErrorLogger.Errorf("Failed to fetch space %s: %v", spaceID, err)
		return nil, fmt.Errorf("database error fetching space: %w", err)
	}

	windows, err := listWindowsTx(ctx, tx, []uuid.UUID{spaceID})
	if err != nil {
		return nil, err
	}
	space.OpeningWindows = windows[spaceID]
	return space, nil
}

// ListSpacesTx returns spaces, optionally limited to one location, ordered by
// location name then space name. Opening windows are always loaded.
func ListSpacesTx(ctx context.Context, tx pgx.Tx, locationID *uuid.UUID) ([]Space, error) {
	query := spaceSelect
	var args []any
	if locationID != nil {
		query += ` WHERE s.location_id = $1`
		args = append(args, *locationID)
	}
	query += ` ORDER BY l.name ASC, s.name ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query spaces: %v", err)
		return nil, fmt.Errorf("failed to fetch spaces: %w", err)
	}

	var spaces []Space
	var ids []uuid.UUID
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan space row: %w", err)
		}
		spaces = append(spaces, *s)
		ids = append(ids, s.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during space iteration: %w", err)
	}

	if len(ids) == 0 {
		return spaces, nil
	}
	windows, err := listWindowsTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for i := range spaces {
		spaces[i].OpeningWindows = windows[spaces[i].ID]
	}

	logger.InfoLogger.Infof("Fetched %d spaces", len(spaces))
	return spaces, nil
}

func listWindowsTx(ctx context.Context, tx pgx.Tx, spaceIDs []uuid.UUID) (map[uuid.UUID][]OpeningWindow, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, space_id, day_of_week, start_time, end_time
		FROM opening_windows
		WHERE space_id = ANY($1)
		ORDER BY day_of_week ASC, start_time ASC`, spaceIDs)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query opening windows: %v", err)
		return nil, fmt.Errorf("failed to fetch opening windows: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]OpeningWindow, len(spaceIDs))
	for rows.Next() {
		var w OpeningWindow
		if err := rows.Scan(&w.ID, &w.SpaceID, &w.DayOfWeek, &w.StartTime, &w.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan opening window row: %w", err)
		}
		out[w.SpaceID] = append(out[w.SpaceID], w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during opening window iteration: %w", err)
	}
	return out, nil
}

// CreateSpaceTx inserts a space and its opening windows.
func CreateSpaceTx(ctx context.Context, tx pgx.Tx, s *Space) error {
	if err := s.Validate(); err != nil {
		return err
	}
	logger.InfoLogger.Infof("Creating space %s (%s) in location %s", s.Name, s.Type, s.LocationID)

	query := `
		INSERT INTO spaces (
			id, location_id, name, code, type, description, capacity,
			floor, grid_x, grid_y, color, has_fixed_owner, owner_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if _, err := tx.Exec(ctx, query,
		s.ID, s.LocationID, s.Name, s.Code, s.Type, s.Description, s.Capacity,
		s.Floor, s.GridX, s.GridY, s.Color, s.HasFixedOwner, s.OwnerID, s.CreatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert space %s: %v", s.Name, err)
		return fmt.Errorf("failed to create space: %w", err)
	}

	for _, w := range s.OpeningWindows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO opening_windows (id, space_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)`,
			w.ID, s.ID, w.DayOfWeek, w.StartTime, w.EndTime,
		); err != nil {
			logger.ErrorLogger.Errorf("Failed to insert opening window for space %s: %v", s.ID, err)
			return fmt.Errorf("failed to create opening window: %w", err)
		}
	}
	return nil
}

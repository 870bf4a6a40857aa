package location_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/shared_models"
)

// Location is an office site. Its timezone governs how opening windows are read.
type Location struct {
	ID          uuid.UUID                 `json:"id"`
	Name        string                    `json:"name"`
	Slug        string                    `json:"slug"`
	Timezone    string                    `json:"timezone"`
	Address     *string                   `json:"address,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Admins      []shared_models.PersonRef `json:"admins,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// NewLocation creates a Location with a fresh identifier.
func NewLocation(name, slug, timezone string) (*Location, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for location: %w", err)
	}
	return &Location{
		ID:        id,
		Name:      name,
		Slug:      slug,
		Timezone:  timezone,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CreateLocationTx inserts a location and its admin memberships.
func CreateLocationTx(ctx context.Context, tx pgx.Tx, loc *Location) error {
	logger.InfoLogger.Infof("Creating location %s (%s)", loc.Slug, loc.Timezone)

	query := `
		INSERT INTO locations (id, name, slug, timezone, address, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.Exec(ctx, query,
		loc.ID, loc.Name, loc.Slug, loc.Timezone, loc.Address, loc.Description, loc.CreatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert location %s: %v", loc.Slug, err)
		return fmt.Errorf("failed to create location: %w", err)
	}

	for _, admin := range loc.Admins {
		if _, err := tx.Exec(ctx,
			`INSERT INTO location_admins (location_id, user_id) VALUES ($1, $2)`,
			loc.ID, admin.ID,
		); err != nil {
			logger.ErrorLogger.Errorf("Failed to add admin %s to location %s: %v", admin.ID, loc.Slug, err)
			return fmt.Errorf("failed to add location admin: %w", err)
		}
	}
	return nil
}

// ListLocationsTx returns every location with its admins, ordered by name.
func ListLocationsTx(ctx context.Context, tx pgx.Tx) ([]Location, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, slug, timezone, address, description, created_at
		FROM locations
		ORDER BY name ASC`)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query locations: %v", err)
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}

	var locations []Location
	byID := map[uuid.UUID]int{}
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Slug, &loc.Timezone, &loc.Address, &loc.Description, &loc.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		byID[loc.ID] = len(locations)
		locations = append(locations, loc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during location iteration: %w", err)
	}

	adminRows, err := tx.Query(ctx, `
		SELECT la.location_id, u.id, u.name, u.email
		FROM location_admins la
		JOIN users u ON u.id = la.user_id
		ORDER BY u.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch location admins: %w", err)
	}
	defer adminRows.Close()

	for adminRows.Next() {
		var locationID uuid.UUID
		var admin shared_models.PersonRef
		if err := adminRows.Scan(&locationID, &admin.ID, &admin.Name, &admin.Email); err != nil {
			return nil, fmt.Errorf("failed to scan location admin row: %w", err)
		}
		if i, ok := byID[locationID]; ok {
			locations[i].Admins = append(locations[i].Admins, admin)
		}
	}
	if err := adminRows.Err(); err != nil {
		return nil, fmt.Errorf("error during location admin iteration: %w", err)
	}

	logger.InfoLogger.Infof("Fetched %d locations", len(locations))
	return locations, nil
}

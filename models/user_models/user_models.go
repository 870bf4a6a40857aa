package user_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/shared_models"
)

// User is a person who books spaces. Managers administer locations.
type User struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Role        shared_models.Role `json:"role"`
	AvatarColor *string            `json:"avatarColor,omitempty"`
	Manages     []LocationRef      `json:"manages"`
	Ownerships  []OwnedSpace       `json:"ownerships,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// LocationRef is a location the user administers.
type LocationRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// OwnedSpace is a space assigned to the user as fixed owner.
type OwnedSpace struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	LocationID uuid.UUID `json:"locationId"`
}

// NewUser creates a User with a fresh identifier.
func NewUser(name, email string, role shared_models.Role) (*User, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for user: %w", err)
	}
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		Manages:   []LocationRef{},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Ref returns the compact form used inside other records.
func (u *User) Ref() shared_models.PersonRef {
	return shared_models.PersonRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// CreateUserTx inserts a user.
func CreateUserTx(ctx context.Context, tx pgx.Tx, u *User) error {
	logger.InfoLogger.Infof("Creating user %s", u.Email)

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, name, email, role, avatar_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.Role, u.AvatarColor, u.CreatedAt,
	); err != nil {
		logger.ErrorLogger.Errorf("Failed to insert user %s: %v", u.Email, err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserTx fetches a user by id or, when id is uuid.Nil, by email. Managed locations
// and owned spaces are loaded.
func GetUserTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, email string) (*User, error) {
	query := `SELECT id, name, email, role, avatar_color, created_at FROM users WHERE `
	var arg any
	if id != uuid.Nil {
		query += `id = $1`
		arg = id
	} else {
		query += `email = $1`
		arg = email
	}

	var u User
	err := tx.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AvatarColor, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("User %v not found", arg)
			return nil, fmt.Errorf("user %v: %w", arg, err)
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %v: %v", arg, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	manages, err := listManagedTx(ctx, tx, &u.ID)
	if err != nil {
		return nil, err
	}
	u.Manages = manages[u.ID]
	if u.Manages == nil {
		u.Manages = []LocationRef{}
	}

	rows, err := tx.Query(ctx, `SELECT id, name, location_id FROM spaces WHERE owner_id = $1 ORDER BY name ASC`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch owned spaces: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s OwnedSpace
		if err := rows.Scan(&s.ID, &s.Name, &s.LocationID); err != nil {
			return nil, fmt.Errorf("failed to scan owned space row: %w", err)
		}
		u.Ownerships = append(u.Ownerships, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during owned space iteration: %w", err)
	}
	return &u, nil
}

// ListUsersTx returns every user with managed locations, ordered by name.
func ListUsersTx(ctx context.Context, tx pgx.Tx) ([]User, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, email, role, avatar_color, created_at FROM users ORDER BY name ASC`)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query users: %v", err)
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AvatarColor, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during user iteration: %w", err)
	}

	manages, err := listManagedTx(ctx, tx, nil)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Manages = manages[users[i].ID]
		if users[i].Manages == nil {
			users[i].Manages = []LocationRef{}
		}
	}

	logger.InfoLogger.Infof("Fetched %d users", len(users))
	return users, nil
}

func listManagedTx(ctx context.Context, tx pgx.Tx, userID *uuid.UUID) (map[uuid.UUID][]LocationRef, error) {
	query := `
		SELECT la.user_id, l.id, l.name, l.slug
		FROM location_admins la
		JOIN locations l ON l.id = la.location_id`
	var args []any
	if userID != nil {
		query += ` WHERE la.user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY l.name ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch managed locations: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID][]LocationRef{}
	for rows.Next() {
		var uid uuid.UUID
		var ref LocationRef
		if err := rows.Scan(&uid, &ref.ID, &ref.Name, &ref.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan managed location row: %w", err)
		}
		out[uid] = append(out[uid], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during managed location iteration: %w", err)
	}
	return out, nil
}

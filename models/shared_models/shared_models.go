package shared_models

import (
	"fmt"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "RESERVED"
	ReservationStatusOccupied  ReservationStatus = "OCCUPIED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// ActiveReservationStatuses occupy a space for conflict purposes.
var ActiveReservationStatuses = []ReservationStatus{ReservationStatusReserved, ReservationStatusOccupied}

// IsActive reports whether s blocks the space.
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusReserved || s == ReservationStatusOccupied
}

// ParseReservationStatus validates a client-supplied status.
func ParseReservationStatus(v string) (ReservationStatus, error) {
	switch s := ReservationStatus(v); s {
	case ReservationStatusReserved, ReservationStatusOccupied, ReservationStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown reservation status %q", v)
}

// RequestStatus is the state of an occupancy request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusDeclined RequestStatus = "DECLINED"
)

// ParseRequestStatus validates a client-supplied request status.
func ParseRequestStatus(v string) (RequestStatus, error) {
	switch s := RequestStatus(v); s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusDeclined:
		return s, nil
	}
	return "", fmt.Errorf("unknown request status %q", v)
}

// SpaceType is the kind of bookable resource.
type SpaceType string

const (
	SpaceTypeDesk        SpaceType = "DESK"
	SpaceTypeMeetingRoom SpaceType = "MEETING_ROOM"
	SpaceTypeParking     SpaceType = "PARKING"
	SpaceTypePhoneBooth  SpaceType = "PHONE_BOOTH"
)

// Role of a user.
type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// PersonRef is the compact user shape embedded in listings.
type PersonRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// GenerateUUIDv7 generates a new time-ordered identifier.
func GenerateUUIDv7() (uuid.UUID, error) {
	return uuid.NewV7()
}

package reservation_controller

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Outcome is the result of an admission: either a confirmed reservation or a request
// awaiting the owner's decision.
type Outcome interface {
	Kind() string
	isOutcome()
}

// ReservationCreated means the booking was confirmed immediately.
type ReservationCreated struct {
	ReservationID uuid.UUID
}

// RequestCreated means the booking awaits the space owner's approval.
type RequestCreated struct {
	RequestID uuid.UUID
}

func (ReservationCreated) Kind() string { return "reservation" }
func (RequestCreated) Kind() string     { return "request" }

func (ReservationCreated) isOutcome() {}
func (RequestCreated) isOutcome()     {}

func (o ReservationCreated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind          string    `json:"kind"`
		ReservationID uuid.UUID `json:"reservationId"`
	}{o.Kind(), o.ReservationID})
}

func (o RequestCreated) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string    `json:"kind"`
		RequestID uuid.UUID `json:"requestId"`
	}{o.Kind(), o.RequestID})
}

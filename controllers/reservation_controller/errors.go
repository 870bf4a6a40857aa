package reservation_controller

import "errors"

var (
	ErrInvalidInterval         = errors.New("invalid interval")
	ErrNotFound                = errors.New("not found")
	ErrOutsideOpeningHours     = errors.New("requested time is outside of the space opening hours")
	ErrSlotConflict            = errors.New("space is already booked in the chosen time window")
	ErrDuplicatePendingRequest = errors.New("there is already a pending approval request for this time window")
	ErrAlreadyResolved         = errors.New("request has already been resolved")
	ErrInvalidTransition       = errors.New("invalid reservation status transition")
	ErrBusy                    = errors.New("space is busy, try again")
)

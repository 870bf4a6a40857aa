package space_controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils"
)

// Live status of a space.
const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusOccupied  = "occupied"
)

// upcomingLimit caps the reservations embedded per space.
const upcomingLimit = 5

// SpaceView is a space with its live status and next bookings.
type SpaceView struct {
	space_models.Space
	Reservations     []reservation_models.Reservation `json:"reservations"`
	Status           string                           `json:"status"`
	NextAvailability *time.Time                       `json:"nextAvailability"`
}

type SpaceController struct {
	Store store.Store
	Now   func() time.Time
}

func NewSpaceController(s store.Store) *SpaceController {
	return &SpaceController{Store: s, Now: time.Now}
}

// Summarize derives the status of a space from its active reservations that have not
// ended, ordered by start. An OCCUPIED reservation covering now makes it occupied; any
// later start makes it reserved and is reported as the next availability.
func Summarize(reservations []reservation_models.Reservation, now time.Time) (string, *time.Time) {
	var next *time.Time
	for _, r := range reservations {
		if r.Start.After(now) {
			start := r.Start
			next = &start
			break
		}
	}
	for _, r := range reservations {
		if r.Status == shared_models.ReservationStatusOccupied && !r.Start.After(now) && !r.End.Before(now) {
			return StatusOccupied, next
		}
	}
	if next != nil {
		return StatusReserved, next
	}
	return StatusAvailable, nil
}

// ListSpaceViews loads the spaces of a location (all when locationID is nil) with up to
// five active reservations ending at or after now.
func ListSpaceViews(ctx context.Context, tx store.Tx, locationID *uuid.UUID, includeOpening bool, now time.Time) ([]SpaceView, error) {
	spaces, err := tx.ListSpaces(ctx, locationID)
	if err != nil {
		return nil, err
	}
	reservations, err := tx.ListReservations(ctx, reservation_models.Filter{
		LocationID: locationID,
		ActiveOnly: true,
		EndsAfter:  &now,
	})
	if err != nil {
		return nil, err
	}

	bySpace := make(map[uuid.UUID][]reservation_models.Reservation)
	for _, r := range reservations {
		if len(bySpace[r.SpaceID]) < upcomingLimit {
			r.Space = nil
			bySpace[r.SpaceID] = append(bySpace[r.SpaceID], r)
		}
	}

	views := make([]SpaceView, 0, len(spaces))
	for _, s := range spaces {
		if !includeOpening {
			s.OpeningWindows = nil
		}
		upcoming := bySpace[s.ID]
		if upcoming == nil {
			upcoming = []reservation_models.Reservation{}
		}
		status, next := Summarize(upcoming, now)
		views = append(views, SpaceView{
			Space:            s,
			Reservations:     upcoming,
			Status:           status,
			NextAvailability: next,
		})
	}
	return views, nil
}

// ListSpaces handles GET /spaces?locationId&includeOpening=true.
func (sc *SpaceController) ListSpaces(c *gin.Context) {
	locationID, err := utils.QueryUUID(c, "locationId")
	if err != nil {
		reservation_controller.RespondBadRequest(c, "Invalid query", err)
		return
	}
	includeOpening := c.Query("includeOpening") == "true"

	now := sc.Now()
	var views []SpaceView
	err = sc.Store.InTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		views, err = ListSpaceViews(ctx, tx, locationID, includeOpening, now)
		return err
	})
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

package location_controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/workspace/controllers/reservation_controller"
	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/store"
)

// recentWindow is how far back a finished reservation still counts toward stats.
const recentWindow = 12 * time.Hour

// Stats counts the spaces of a location by live status.
type Stats struct {
	TotalSpaces int `json:"totalSpaces"`
	Available   int `json:"available"`
	Reserved    int `json:"reserved"`
	Occupied    int `json:"occupied"`
}

// LocationView is a location with its admins and occupancy stats.
type LocationView struct {
	location_models.Location
	Stats      Stats                           `json:"stats"`
	SpaceTypes map[shared_models.SpaceType]int `json:"spaceTypes"`
}

type LocationController struct {
	Store store.Store
	Now   func() time.Time
}

func NewLocationController(s store.Store) *LocationController {
	return &LocationController{Store: s, Now: time.Now}
}

// classify returns the stats bucket of one space given its reservations.
func classify(reservations []reservation_models.Reservation, now time.Time) string {
	for _, r := range reservations {
		if r.Status == shared_models.ReservationStatusOccupied && !r.Start.After(now) && !r.End.Before(now) {
			return "occupied"
		}
	}
	for _, r := range reservations {
		if r.Status == shared_models.ReservationStatusReserved && r.Start.After(now) {
			return "reserved"
		}
	}
	return "available"
}

// ListLocationViews loads every location ordered by name with its stats.
func ListLocationViews(ctx context.Context, tx store.Tx, now time.Time) ([]LocationView, error) {
	locations, err := tx.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	spaces, err := tx.ListSpaces(ctx, nil)
	if err != nil {
		return nil, err
	}
	since := now.Add(-recentWindow)
	reservations, err := tx.ListReservations(ctx, reservation_models.Filter{ActiveOnly: true, EndsAfter: &since})
	if err != nil {
		return nil, err
	}

	bySpace := make(map[uuid.UUID][]reservation_models.Reservation)
	for _, r := range reservations {
		bySpace[r.SpaceID] = append(bySpace[r.SpaceID], r)
	}

	views := make([]LocationView, 0, len(locations))
	index := make(map[uuid.UUID]int, len(locations))
	for i, l := range locations {
		if l.Admins == nil {
			l.Admins = []shared_models.PersonRef{}
		}
		views = append(views, LocationView{Location: l, SpaceTypes: map[shared_models.SpaceType]int{}})
		index[l.ID] = i
	}

	for _, s := range spaces {
		i, ok := index[s.LocationID]
		if !ok {
			continue
		}
		v := &views[i]
		v.Stats.TotalSpaces++
		v.SpaceTypes[s.Type]++
		switch classify(bySpace[s.ID], now) {
		case "occupied":
			v.Stats.Occupied++
		case "reserved":
			v.Stats.Reserved++
		default:
			v.Stats.Available++
		}
	}
	return views, nil
}

// ListLocations handles GET /locations.
func (lc *LocationController) ListLocations(c *gin.Context) {
	now := lc.Now()
	var views []LocationView
	err := lc.Store.InTx(c.Request.Context(), func(ctx context.Context, tx store.Tx) error {
		var err error
		views, err = ListLocationViews(ctx, tx, now)
		return err
	})
	if err != nil {
		reservation_controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

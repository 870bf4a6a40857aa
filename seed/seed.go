// Package seed writes the demo dataset: two offices, their admins, a spread of spaces
// and a few bookings starting tomorrow.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/occupancy_request_models"
	"github.com/joy095/workspace/models/reservation_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/models/user_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/utils/time_utils"
)

type userSeed struct {
	key, name, email, color string
	role                    shared_models.Role
}

var users = []userSeed{
	{"amelia", "Amelia Singh", "amelia.manager@workspace.com", "#ec4899", shared_models.RoleManager},
	{"noah", "Noah Patel", "noah.manager@workspace.com", "#f97316", shared_models.RoleManager},
	{"olivia", "Olivia Chen", "olivia.chen@workspace.com", "#6366f1", shared_models.RoleEmployee},
	{"liam", "Liam Torres", "liam.torres@workspace.com", "#14b8a6", shared_models.RoleEmployee},
	{"emma", "Emma Robinson", "emma.robinson@workspace.com", "#a855f7", shared_models.RoleEmployee},
	{"ethan", "Ethan Wu", "ethan.wu@workspace.com", "#facc15", shared_models.RoleEmployee},
}

type locationSeed struct {
	key, name, slug, tz, address, description string
	admins                                    []string
}

var locations = []locationSeed{
	{"downtown", "Downtown HQ", "downtown-hq", "America/Los_Angeles", "100 Market Street, San Francisco, CA",
		"Flagship office with open collaboration spaces and executive parking.", []string{"amelia", "olivia"}},
	{"innovation", "Innovation Hub", "innovation-hub", "America/New_York", "88 Harbor Avenue, Boston, MA",
		"R&D campus with labs, garages, and focus rooms.", []string{"noah"}},
}

type spaceSeed struct {
	key, location, name, code, description, color string
	typ                                           shared_models.SpaceType
	capacity, floor, x, y                         int
	owner                                         string
	days                                          []int
	open, close                                   string
}

var weekdays = []int{0, 1, 2, 3, 4}

var spaces = []spaceSeed{
	{"skyline", "downtown", "Skyline Desk 101", "HQ-D-101", "Window desk with standing desk converter and dual monitors.", "#0ea5e9",
		shared_models.SpaceTypeDesk, 1, 12, 1, 1, "", weekdays, "08:00", "18:00"},
	{"design", "downtown", "Design Lab Desk 202", "HQ-D-202", "Dedicated product designer desk with prototyping tools.", "#22c55e",
		shared_models.SpaceTypeDesk, 1, 8, 2, 1, "olivia", weekdays, "09:00", "17:00"},
	{"parking", "downtown", "Executive Parking P1", "HQ-P-1", "Reserved EV-ready parking spot with charging.", "#f97316",
		shared_models.SpaceTypeParking, 1, -1, 0, 3, "amelia", nil, "", ""},
	{"ocean", "downtown", "Ocean Meeting Room", "HQ-M-12", "12-person conference room with Teams Room setup.", "#38bdf8",
		shared_models.SpaceTypeMeetingRoom, 12, 15, 3, 1, "", weekdays, "08:00", "20:00"},
	{"deskA", "innovation", "Innovation Desk A", "IH-D-A", "Hot desk near robotics lab with acoustic partitions.", "#a855f7",
		shared_models.SpaceTypeDesk, 1, 4, 1, 2, "", []int{1, 2, 3, 4, 5}, "07:00", "19:00"},
	{"garage", "innovation", "Prototype Garage", "IH-G-1", "Garage bay for prototype vehicles and testing equipment.", "#facc15",
		shared_models.SpaceTypeParking, 2, 1, 4, 2, "", []int{0, 1, 2, 3, 4, 5}, "06:00", "22:00"},
	{"booth", "innovation", "Focus Phone Booth", "IH-PB-7", "Soundproof pod with video lighting and ergonomic stool.", "#f43f5e",
		shared_models.SpaceTypePhoneBooth, 1, 5, 2, 3, "", []int{0, 1, 2, 3, 4, 5}, "07:00", "21:00"},
}

// Result holds the identifiers written by Load, keyed by seed name.
type Result struct {
	Users     map[string]uuid.UUID
	Locations map[string]uuid.UUID
	Spaces    map[string]uuid.UUID
}

// Load writes the demo dataset in one transaction. Bookings are placed relative to
// midnight tomorrow in each space's timezone, counted from now. A store that already
// holds the first demo user is left untouched and Load returns (nil, nil).
func Load(ctx context.Context, s store.Store, now time.Time) (*Result, error) {
	res := &Result{
		Users:     map[string]uuid.UUID{},
		Locations: map[string]uuid.UUID{},
		Spaces:    map[string]uuid.UUID{},
	}

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.GetUser(ctx, uuid.Nil, users[0].email); err == nil {
			return errSeeded
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		people := map[string]*user_models.User{}
		for _, us := range users {
			u, err := user_models.NewUser(us.name, us.email, us.role)
			if err != nil {
				return err
			}
			color := us.color
			u.AvatarColor = &color
			if err := tx.CreateUser(ctx, u); err != nil {
				return fmt.Errorf("seed user %s: %w", us.email, err)
			}
			people[us.key] = u
			res.Users[us.key] = u.ID
		}

		zones := map[string]*time.Location{}
		for _, ls := range locations {
			l, err := location_models.NewLocation(ls.name, ls.slug, ls.tz)
			if err != nil {
				return err
			}
			address, description := ls.address, ls.description
			l.Address, l.Description = &address, &description
			for _, key := range ls.admins {
				l.Admins = append(l.Admins, people[key].Ref())
			}
			if err := tx.CreateLocation(ctx, l); err != nil {
				return fmt.Errorf("seed location %s: %w", ls.slug, err)
			}
			if zones[ls.key], err = time_utils.LoadLocation(ls.tz); err != nil {
				return err
			}
			res.Locations[ls.key] = l.ID
		}

		spaceZone := map[string]*time.Location{}
		for _, ss := range spaces {
			sp, err := space_models.NewSpace(res.Locations[ss.location], ss.name, ss.typ, ss.capacity)
			if err != nil {
				return err
			}
			code, description, color := ss.code, ss.description, ss.color
			floor, x, y := ss.floor, ss.x, ss.y
			sp.Code, sp.Description, sp.Color = &code, &description, &color
			sp.Floor, sp.GridX, sp.GridY = &floor, &x, &y
			if ss.owner != "" {
				sp.AssignOwner(people[ss.owner].ID)
			}
			for _, day := range ss.days {
				if err := sp.AddWindow(day, ss.open, ss.close); err != nil {
					return err
				}
			}
			if err := sp.Validate(); err != nil {
				return fmt.Errorf("seed space %s: %w", ss.code, err)
			}
			if err := tx.CreateSpace(ctx, sp); err != nil {
				return fmt.Errorf("seed space %s: %w", ss.code, err)
			}
			res.Spaces[ss.key] = sp.ID
			spaceZone[ss.key] = zones[ss.location]
		}

		slot := func(space string, dayOffset, hour, minutes int) (time.Time, time.Time) {
			local := now.In(spaceZone[space])
			start := time.Date(local.Year(), local.Month(), local.Day()+1+dayOffset, hour, 0, 0, 0, local.Location())
			return start, start.Add(time.Duration(minutes) * time.Minute)
		}

		bookings := []struct {
			space, user   string
			day, hour, mn int
			status        shared_models.ReservationStatus
			notes         string
		}{
			{"skyline", "liam", 0, 10, 120, shared_models.ReservationStatusReserved, ""},
			{"ocean", "emma", 1, 11, 60, shared_models.ReservationStatusReserved, "Quarterly roadmap sync"},
			{"booth", "ethan", 0, 14, 45, shared_models.ReservationStatusOccupied, ""},
		}
		for _, b := range bookings {
			start, end := slot(b.space, b.day, b.hour, b.mn)
			var notes *string
			if b.notes != "" {
				n := b.notes
				notes = &n
			}
			r, err := reservation_models.NewReservation(res.Spaces[b.space], people[b.user].ID, start, end, notes)
			if err != nil {
				return err
			}
			r.Status = b.status
			if err := tx.CreateReservation(ctx, r); err != nil {
				return fmt.Errorf("seed reservation on %s: %w", b.space, err)
			}
		}

		start, end := slot("design", 2, 9, 90)
		req, err := occupancy_request_models.NewOccupancyRequest(res.Spaces["design"], people["liam"].ID, start, end)
		if err != nil {
			return err
		}
		return tx.CreateRequest(ctx, req)
	})
	if errors.Is(err, errSeeded) {
		logger.InfoLogger.Info("Demo data already present, skipping seed")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed failed: %w", err)
	}

	logger.InfoLogger.Infof("Seeded %d users, %d locations, %d spaces", len(res.Users), len(res.Locations), len(res.Spaces))
	return res, nil
}

var errSeeded = errors.New("demo data already present")

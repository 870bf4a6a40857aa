package reservation_controller

import (
	"context"
	"testing"
	"time"

	"github.com/joy095/workspace/models/location_models"
	"github.com/joy095/workspace/models/shared_models"
	"github.com/joy095/workspace/models/space_models"
	"github.com/joy095/workspace/models/user_models"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/store/memory_store"
	"github.com/stretchr/testify/require"
)

// monday9 is 09:00 on Monday 2 June 2025 in America/Los_Angeles.
var monday9 = time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory_store.MemoryStore
	svc      *ReservationService
	owner    *user_models.User
	employee *user_models.User
	manager  *user_models.User
	loc      *location_models.Location
	open     *space_models.Space // no windows
	desk     *space_models.Space // Monday 08:00-18:00
	owned    *space_models.Space // fixed owner, Monday 08:00-18:00
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory_store.New()}
	f.svc = NewReservationService(f.store)
	f.svc.Now = func() time.Time { return monday9 }

	var err error
	f.owner, err = user_models.NewUser("Olive Owner", "olive@example.com", shared_models.RoleEmployee)
	require.NoError(t, err)
	f.employee, err = user_models.NewUser("Eli Employee", "eli@example.com", shared_models.RoleEmployee)
	require.NoError(t, err)
	f.manager, err = user_models.NewUser("Mara Manager", "mara@example.com", shared_models.RoleManager)
	require.NoError(t, err)

	f.loc, err = location_models.NewLocation("Harbor Office", "harbor", "America/Los_Angeles")
	require.NoError(t, err)
	f.loc.Admins = []shared_models.PersonRef{f.manager.Ref()}

	f.open, err = space_models.NewSpace(f.loc.ID, "Lounge", shared_models.SpaceTypeMeetingRoom, 6)
	require.NoError(t, err)

	f.desk, err = space_models.NewSpace(f.loc.ID, "Desk 12", shared_models.SpaceTypeDesk, 1)
	require.NoError(t, err)
	require.NoError(t, f.desk.AddWindow(1, "08:00", "18:00"))

	f.owned, err = space_models.NewSpace(f.loc.ID, "Desk 1", shared_models.SpaceTypeDesk, 1)
	require.NoError(t, err)
	f.owned.AssignOwner(f.owner.ID)
	require.NoError(t, f.owned.AddWindow(1, "08:00", "18:00"))

	require.NoError(t, f.store.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		for _, u := range []*user_models.User{f.owner, f.employee, f.manager} {
			if err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
		}
		if err := tx.CreateLocation(ctx, f.loc); err != nil {
			return err
		}
		for _, s := range []*space_models.Space{f.open, f.desk, f.owned} {
			if err := tx.CreateSpace(ctx, s); err != nil {
				return err
			}
		}
		return nil
	}))
	return f
}

func (f *fixture) booking(space *space_models.Space, user *user_models.User, start time.Time, minutes int) BookingInput {
	return BookingInput{
		SpaceID: space.ID,
		UserID:  user.ID,
		Start:   start,
		End:     start.Add(time.Duration(minutes) * time.Minute),
	}
}

func (f *fixture) book(t *testing.T, in BookingInput) Outcome {
	t.Helper()
	out, err := f.svc.CreateReservation(context.Background(), in)
	require.NoError(t, err)
	return out
}

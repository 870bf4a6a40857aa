// Package memory_store is an in-process store.Store. Transactions are serialised by a
// single mutex and work on a copy of the state that replaces the live state on commit.
package memory_store

import (
	"context"
	"fmt"
	"sort"
	"sync"
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

type state struct {
	users        map[uuid.UUID]user_models.User
	locations    map[uuid.UUID]location_models.Location
	spaces       map[uuid.UUID]space_models.Space
	reservations map[uuid.UUID]reservation_models.Reservation
	requests     map[uuid.UUID]occupancy_request_models.OccupancyRequest
}

func newState() *state {
	return &state{
		users:        map[uuid.UUID]user_models.User{},
		locations:    map[uuid.UUID]location_models.Location{},
		spaces:       map[uuid.UUID]space_models.Space{},
		reservations: map[uuid.UUID]reservation_models.Reservation{},
		requests:     map[uuid.UUID]occupancy_request_models.OccupancyRequest{},
	}
}

// clone copies the maps. Records are values and their slices are never mutated in
// place, so a shallow copy per record is enough.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.spaces {
		c.spaces[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	return c
}

// MemoryStore keeps everything in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state *state
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{state: newState()}
}

// InTx runs fn with exclusive access to a snapshot of the state. The snapshot becomes
// the live state only when fn returns nil.
func (m *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(ctx, &memTx{st: snapshot}); err != nil {
		logger.DebugLogger.Debugf("Memory transaction rolled back: %v", err)
		return err
	}
	m.state = snapshot
	return nil
}

type memTx struct {
	st *state
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%w: %s %v", store.ErrNotFound, kind, id)
}

func (t *memTx) personRef(id uuid.UUID) *shared_models.PersonRef {
	u, ok := t.st.users[id]
	if !ok {
		return nil
	}
	ref := u.Ref()
	return &ref
}

func (t *memTx) hydrateSpace(s space_models.Space) space_models.Space {
	if loc, ok := t.st.locations[s.LocationID]; ok {
		loc.Admins = nil
		s.Location = loc
	}
	if s.OwnerID != nil {
		s.Owner = t.personRef(*s.OwnerID)
	}
	s.OpeningWindows = append([]space_models.OpeningWindow(nil), s.OpeningWindows...)
	sort.SliceStable(s.OpeningWindows, func(i, j int) bool {
		a, b := s.OpeningWindows[i], s.OpeningWindows[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.StartTime < b.StartTime
	})
	return s
}

func (t *memTx) GetSpace(_ context.Context, id uuid.UUID, _ bool) (*space_models.Space, error) {
	s, ok := t.st.spaces[id]
	if !ok {
		return nil, notFound("space", id)
	}
	out := t.hydrateSpace(s)
	return &out, nil
}

func (t *memTx) ListSpaces(_ context.Context, locationID *uuid.UUID) ([]space_models.Space, error) {
	var out []space_models.Space
	for _, s := range t.st.spaces {
		if locationID != nil && s.LocationID != *locationID {
			continue
		}
		out = append(out, t.hydrateSpace(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location.Name != out[j].Location.Name {
			return out[i].Location.Name < out[j].Location.Name
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (t *memTx) CreateSpace(_ context.Context, s *space_models.Space) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := t.st.locations[s.LocationID]; !ok {
		return notFound("location", s.LocationID)
	}
	if _, ok := t.st.spaces[s.ID]; ok {
		return fmt.Errorf("%w: space %s exists", store.ErrDuplicate, s.ID)
	}
	stored := *s
	stored.Owner = nil
	stored.Location = location_models.Location{}
	stored.OpeningWindows = append([]space_models.OpeningWindow(nil), s.OpeningWindows...)
	for i := range stored.OpeningWindows {
		stored.OpeningWindows[i].SpaceID = s.ID
	}
	t.st.spaces[s.ID] = stored
	return nil
}

func (t *memTx) ListLocations(_ context.Context) ([]location_models.Location, error) {
	out := make([]location_models.Location, 0, len(t.st.locations))
	for _, l := range t.st.locations {
		l.Admins = append([]shared_models.PersonRef(nil), l.Admins...)
		for i := range l.Admins {
			if ref := t.personRef(l.Admins[i].ID); ref != nil {
				l.Admins[i] = *ref
			}
		}
		sort.Slice(l.Admins, func(i, j int) bool { return l.Admins[i].Name < l.Admins[j].Name })
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *memTx) CreateLocation(_ context.Context, l *location_models.Location) error {
	for _, existing := range t.st.locations {
		if existing.Slug == l.Slug || existing.ID == l.ID {
			return fmt.Errorf("%w: location %s exists", store.ErrDuplicate, l.Slug)
		}
	}
	for _, admin := range l.Admins {
		if _, ok := t.st.users[admin.ID]; !ok {
			return notFound("user", admin.ID)
		}
	}
	stored := *l
	stored.Admins = append([]shared_models.PersonRef(nil), l.Admins...)
	t.st.locations[l.ID] = stored
	return nil
}

func (t *memTx) managedBy(userID uuid.UUID) []user_models.LocationRef {
	out := []user_models.LocationRef{}
	for _, l := range t.st.locations {
		for _, admin := range l.Admins {
			if admin.ID == userID {
				out = append(out, user_models.LocationRef{ID: l.ID, Name: l.Name, Slug: l.Slug})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (t *memTx) ListUsers(_ context.Context) ([]user_models.User, error) {
	out := make([]user_models.User, 0, len(t.st.users))
	for _, u := range t.st.users {
		u.Manages = t.managedBy(u.ID)
		u.Ownerships = nil
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *memTx) GetUser(_ context.Context, id uuid.UUID, email string) (*user_models.User, error) {
	var found *user_models.User
	for _, u := range t.st.users {
		if (id != uuid.Nil && u.ID == id) || (id == uuid.Nil && u.Email == email) {
			found = &u
			break
		}
	}
	if found == nil {
		if id != uuid.Nil {
			return nil, notFound("user", id)
		}
		return nil, notFound("user", email)
	}

	found.Manages = t.managedBy(found.ID)
	found.Ownerships = nil
	for _, s := range t.st.spaces {
		if s.OwnerID != nil && *s.OwnerID == found.ID {
			found.Ownerships = append(found.Ownerships, user_models.OwnedSpace{ID: s.ID, Name: s.Name, LocationID: s.LocationID})
		}
	}
	sort.Slice(found.Ownerships, func(i, j int) bool { return found.Ownerships[i].Name < found.Ownerships[j].Name })
	return found, nil
}

func (t *memTx) CreateUser(_ context.Context, u *user_models.User) error {
	for _, existing := range t.st.users {
		if existing.Email == u.Email || existing.ID == u.ID {
			return fmt.Errorf("%w: user %s exists", store.ErrDuplicate, u.Email)
		}
	}
	stored := *u
	stored.Manages = nil
	stored.Ownerships = nil
	t.st.users[u.ID] = stored
	return nil
}

// checkExclusion rejects an active reservation overlapping another active one on the
// same space, like the reservations_no_overlap constraint does in Postgres.
func (t *memTx) checkExclusion(r reservation_models.Reservation) error {
	if !r.Status.IsActive() {
		return nil
	}
	for _, other := range t.st.reservations {
		if other.ID == r.ID || other.SpaceID != r.SpaceID || !other.Status.IsActive() {
			continue
		}
		if time_utils.Overlaps(r.Start, r.End, other.Start, other.End) {
			return fmt.Errorf("%w: reservation %s overlaps %s", store.ErrConflict, r.ID, other.ID)
		}
	}
	return nil
}

func (t *memTx) CreateReservation(_ context.Context, r *reservation_models.Reservation) error {
	if _, ok := t.st.spaces[r.SpaceID]; !ok {
		return notFound("space", r.SpaceID)
	}
	if _, ok := t.st.users[r.UserID]; !ok {
		return notFound("user", r.UserID)
	}
	if _, ok := t.st.reservations[r.ID]; ok {
		return fmt.Errorf("%w: reservation %s exists", store.ErrDuplicate, r.ID)
	}
	stored := *r
	stored.User = nil
	stored.Space = nil
	if err := t.checkExclusion(stored); err != nil {
		return err
	}
	t.st.reservations[r.ID] = stored
	return nil
}

func (t *memTx) GetReservation(_ context.Context, id uuid.UUID, _ bool) (*reservation_models.Reservation, error) {
	r, ok := t.st.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	return &r, nil
}

func (t *memTx) ListActiveReservations(_ context.Context, spaceID, exclude uuid.UUID) ([]reservation_models.Reservation, error) {
	var out []reservation_models.Reservation
	for _, r := range t.st.reservations {
		if r.SpaceID != spaceID || !r.Status.IsActive() || (exclude != uuid.Nil && r.ID == exclude) {
			continue
		}
		out = append(out, r)
	}
	sortByStart(out)
	return out, nil
}

func (t *memTx) UpdateReservationStatus(_ context.Context, id uuid.UUID, status shared_models.ReservationStatus, at time.Time) (*reservation_models.Reservation, error) {
	r, ok := t.st.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	r.Status = status
	r.UpdatedAt = at.UTC()
	if err := t.checkExclusion(r); err != nil {
		return nil, err
	}
	t.st.reservations[id] = r
	return &r, nil
}

func (t *memTx) ListReservations(_ context.Context, f reservation_models.Filter) ([]reservation_models.Reservation, error) {
	var out []reservation_models.Reservation
	for _, r := range t.st.reservations {
		space, ok := t.st.spaces[r.SpaceID]
		if !ok {
			continue
		}
		switch {
		case f.LocationID != nil && space.LocationID != *f.LocationID,
			f.SpaceID != nil && r.SpaceID != *f.SpaceID,
			f.UserID != nil && r.UserID != *f.UserID,
			f.Status != "" && r.Status != f.Status,
			f.ActiveOnly && !r.Status.IsActive(),
			f.EndsAfter != nil && r.End.Before(*f.EndsAfter):
			continue
		}
		r.User = t.personRef(r.UserID)
		r.Space = &reservation_models.SpaceRef{
			ID:           space.ID,
			Name:         space.Name,
			Type:         space.Type,
			LocationID:   space.LocationID,
			LocationName: t.st.locations[space.LocationID].Name,
		}
		out = append(out, r)
	}
	sortByStart(out)
	return out, nil
}

func sortByStart(rs []reservation_models.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Start.Equal(rs[j].Start) {
			return rs[i].Start.Before(rs[j].Start)
		}
		return rs[i].ID.String() < rs[j].ID.String()
	})
}

func (t *memTx) CreateRequest(_ context.Context, r *occupancy_request_models.OccupancyRequest) error {
	if _, ok := t.st.spaces[r.SpaceID]; !ok {
		return notFound("space", r.SpaceID)
	}
	if _, ok := t.st.users[r.RequesterID]; !ok {
		return notFound("user", r.RequesterID)
	}
	if _, ok := t.st.requests[r.ID]; ok {
		return fmt.Errorf("%w: occupancy request %s exists", store.ErrDuplicate, r.ID)
	}
	stored := *r
	stored.Requester = nil
	stored.HandledBy = nil
	stored.Space = nil
	t.st.requests[r.ID] = stored
	return nil
}

func (t *memTx) GetRequest(_ context.Context, id uuid.UUID, _ bool) (*occupancy_request_models.OccupancyRequest, error) {
	r, ok := t.st.requests[id]
	if !ok {
		return nil, notFound("occupancy request", id)
	}
	return &r, nil
}

func (t *memTx) ListPendingRequests(_ context.Context, spaceID uuid.UUID) ([]occupancy_request_models.OccupancyRequest, error) {
	var out []occupancy_request_models.OccupancyRequest
	for _, r := range t.st.requests {
		if r.SpaceID == spaceID && r.Status == shared_models.RequestStatusPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (t *memTx) ResolveRequest(_ context.Context, r *occupancy_request_models.OccupancyRequest) error {
	stored, ok := t.st.requests[r.ID]
	if !ok || stored.Status != shared_models.RequestStatusPending {
		return notFound("pending occupancy request", r.ID)
	}
	stored.Status = r.Status
	stored.HandledByID = r.HandledByID
	stored.DecisionNote = r.DecisionNote
	stored.UpdatedAt = r.UpdatedAt
	t.st.requests[r.ID] = stored
	return nil
}

func (t *memTx) ListRequests(_ context.Context, f occupancy_request_models.Filter) ([]occupancy_request_models.OccupancyRequest, error) {
	var out []occupancy_request_models.OccupancyRequest
	for _, r := range t.st.requests {
		space, ok := t.st.spaces[r.SpaceID]
		if !ok {
			continue
		}
		if f.LocationID != nil && space.LocationID != *f.LocationID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		r.Requester = t.personRef(r.RequesterID)
		if r.HandledByID != nil {
			r.HandledBy = t.personRef(*r.HandledByID)
		}
		ref := &occupancy_request_models.SpaceRef{
			ID:           space.ID,
			Name:         space.Name,
			Type:         space.Type,
			LocationID:   space.LocationID,
			LocationName: t.st.locations[space.LocationID].Name,
		}
		if space.OwnerID != nil {
			ref.Owner = t.personRef(*space.OwnerID)
		}
		r.Space = ref
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out, nil
}

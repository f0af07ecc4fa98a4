package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/ride-admin-backend/internal/models"
	"github.com/chachabrian/ride-admin-backend/internal/services"
	"github.com/chachabrian/ride-admin-backend/pkg/utils"
)

// MemoryStore is an in-process services.RideStore with the same filter, order
// and paging semantics as GormStore. It is the test double for the service
// and handler packages; no binary uses it.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[uint]models.User
	rides  map[uint]models.Ride
	events map[uint]models.RideEvent
	nextID map[string]uint
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uint]models.User),
		rides:  make(map[uint]models.Ride),
		events: make(map[uint]models.RideEvent),
		nextID: make(map[string]uint),
		now:    time.Now,
	}
}

var _ services.RideStore = (*MemoryStore)(nil)

// WithClock sets the clock used for created_at on new events.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) id(kind string, want uint) uint {
	if want != 0 {
		if want > m.nextID[kind] {
			m.nextID[kind] = want
		}
		return want
	}
	m.nextID[kind]++
	return m.nextID[kind]
}

// InsertUser stores u, assigning an id when u.ID is zero.
func (m *MemoryStore) InsertUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.id("user", u.ID)
	m.users[u.ID] = u
	return u
}

// InsertRide stores r as is, without validation.
func (m *MemoryStore) InsertRide(r models.Ride) models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id("ride", r.ID)
	r.Rider, r.Driver, r.Events = models.User{}, models.User{}, nil
	m.rides[r.ID] = r
	return r
}

// InsertEvent stores e keeping its CreatedAt, so tests can place events on
// either side of a day boundary.
func (m *MemoryStore) InsertEvent(e models.RideEvent) models.RideEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id("event", e.ID)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now()
	}
	m.events[e.ID] = e
	return e
}

func (m *MemoryStore) withUsers(r models.Ride) models.Ride {
	r.Rider = m.users[r.RiderID]
	r.Driver = m.users[r.DriverID]
	return r
}

func (m *MemoryStore) match(q services.RideQuery) []services.RideRow {
	var rows []services.RideRow
	for _, r := range m.rides {
		r = m.withUsers(r)
		if q.Filter.Status != "" && string(r.Status) != q.Filter.Status {
			continue
		}
		if q.Filter.RiderEmail != "" && r.Rider.Email != q.Filter.RiderEmail {
			continue
		}
		if q.Filter.DriverEmail != "" && r.Driver.Email != q.Filter.DriverEmail {
			continue
		}

		row := services.RideRow{Ride: r}
		if q.Point != nil {
			d := services.PickupDistance(*q.Point, r.PickupLatitude, r.PickupLongitude)
			if q.Box != nil {
				if !utils.IsPointInBoundingBox(utils.Point{Lat: r.PickupLatitude, Lng: r.PickupLongitude}, *q.Box) || d > q.RadiusKm {
					continue
				}
			}
			row.DistanceToPickup = &d
		}
		rows = append(rows, row)
	}
	return rows
}

func (m *MemoryStore) CountRides(_ context.Context, q services.RideQuery) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.match(q))), nil
}

func (m *MemoryStore) ListRides(_ context.Context, q services.RideQuery) ([]services.RideRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.match(q)
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var less, equal bool
		if q.Ordering.Field == services.OrderDistance && a.DistanceToPickup != nil && b.DistanceToPickup != nil {
			equal = *a.DistanceToPickup == *b.DistanceToPickup
			less = *a.DistanceToPickup < *b.DistanceToPickup
		} else {
			equal = a.Ride.PickupTime.Equal(b.Ride.PickupTime)
			less = a.Ride.PickupTime.Before(b.Ride.PickupTime)
		}
		if equal {
			return a.Ride.ID < b.Ride.ID
		}
		if q.Ordering.Desc {
			return !less
		}
		return less
	})

	if q.Offset >= len(rows) {
		return []services.RideRow{}, nil
	}
	rows = rows[q.Offset:]
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (m *MemoryStore) EventsForRides(_ context.Context, rideIDs []uint, from, to time.Time) ([]models.RideEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := make(map[uint]bool, len(rideIDs))
	for _, id := range rideIDs {
		want[id] = true
	}
	var out []models.RideEvent
	for _, e := range m.events {
		if want[e.RideID] && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	sortEvents(out, "created_at", false)
	return out, nil
}

func (m *MemoryStore) GetRide(_ context.Context, id uint) (*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rides[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	r = m.withUsers(r)
	r.Events = []models.RideEvent{}
	for _, e := range m.events {
		if e.RideID == id {
			r.Events = append(r.Events, e)
		}
	}
	sortEvents(r.Events, "created_at", false)
	return &r, nil
}

func (m *MemoryStore) RideExists(_ context.Context, id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rides[id]
	return ok, nil
}

func (m *MemoryStore) CreateRide(_ context.Context, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride.ID = m.id("ride", 0)
	stored := *ride
	stored.Rider, stored.Driver, stored.Events = models.User{}, models.User{}, nil
	m.rides[ride.ID] = stored
	return nil
}

func (m *MemoryStore) SaveRide(_ context.Context, ride *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return services.ErrNotFound
	}
	stored := *ride
	stored.Rider, stored.Driver, stored.Events = models.User{}, models.User{}, nil
	m.rides[ride.ID] = stored
	return nil
}

func (m *MemoryStore) DeleteRide(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return services.ErrNotFound
	}
	delete(m.rides, id)
	for eid, e := range m.events {
		if e.RideID == id {
			delete(m.events, eid)
		}
	}
	return nil
}

func (m *MemoryStore) CreateEvent(_ context.Context, event *models.RideEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[event.RideID]; !ok {
		return services.ErrNotFound
	}
	event.ID = m.id("event", 0)
	event.CreatedAt = m.now()
	m.events[event.ID] = *event
	return nil
}

func (m *MemoryStore) ListEvents(_ context.Context, q services.EventQuery) ([]models.RideEvent, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(q.Search)
	var out []models.RideEvent
	for _, e := range m.events {
		if q.RideID != nil && e.RideID != *q.RideID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		out = append(out, e)
	}
	sortEvents(out, q.OrderBy, q.Desc)

	count := int64(len(out))
	if q.Offset >= len(out) {
		return []models.RideEvent{}, count, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, count, nil
}

func (m *MemoryStore) FindUsers(_ context.Context, ids []uint) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func sortEvents(events []models.RideEvent, field string, desc bool) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if field == "id" || a.CreatedAt.Equal(b.CreatedAt) {
			if desc {
				return a.ID > b.ID
			}
			return a.ID < b.ID
		}
		if desc {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

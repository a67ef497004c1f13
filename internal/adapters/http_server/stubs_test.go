package httpserver_test

import (
	"context"
	"time"

	"stayhub/internal/domain"
)

// In-memory port implementations backing the handler tests. The conflict
// rule lives in CreateReservation, same as the SQL repository.

type memUsers struct {
	users  map[int64]domain.User
	nextID int64
}

func newMemUsers() *memUsers { return &memUsers{users: map[int64]domain.User{}, nextID: 1} }

func (m *memUsers) CreateUser(_ context.Context, u *domain.User) error {
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) UpdateUserRole(_ context.Context, id int64, role domain.Role) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

type memHotels struct {
	hotels map[int64]domain.Hotel
	nextID int64
}

func newMemHotels() *memHotels { return &memHotels{hotels: map[int64]domain.Hotel{}, nextID: 1} }

func (m *memHotels) CreateHotel(_ context.Context, h *domain.Hotel) error {
	h.ID = m.nextID
	m.nextID++
	m.hotels[h.ID] = *h
	return nil
}

func (m *memHotels) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	h, ok := m.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (m *memHotels) ListHotels(_ context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	var out []domain.Hotel
	for _, h := range m.hotels {
		if q.OnlyValidated && !h.Validated {
			continue
		}
		if q.OwnerID != nil && h.OwnerID != *q.OwnerID {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (m *memHotels) UpdateHotel(_ context.Context, h domain.Hotel) error {
	if _, ok := m.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	m.hotels[h.ID] = h
	return nil
}

func (m *memHotels) SetHotelValidated(_ context.Context, id int64, v bool) error {
	h, ok := m.hotels[id]
	if !ok {
		return domain.ErrNotFound
	}
	h.Validated = v
	m.hotels[id] = h
	return nil
}

func (m *memHotels) DeleteHotel(_ context.Context, id int64) error {
	if _, ok := m.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.hotels, id)
	return nil
}

func (m *memHotels) HotelIDs(_ context.Context) ([]int64, error) {
	out := make([]int64, 0, len(m.hotels))
	for id := range m.hotels {
		out = append(out, id)
	}
	return out, nil
}

type memRooms struct {
	rooms  map[int64]domain.Room
	owners map[int64]int64 // hotel id -> owner id
	nextID int64
}

func newMemRooms() *memRooms {
	return &memRooms{rooms: map[int64]domain.Room{}, owners: map[int64]int64{}, nextID: 1}
}

func (m *memRooms) CreateRoom(_ context.Context, r *domain.Room) error {
	r.ID = m.nextID
	m.nextID++
	m.rooms[r.ID] = *r
	return nil
}

func (m *memRooms) GetRoom(_ context.Context, id int64) (domain.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memRooms) ListRooms(_ context.Context, hotelID int64) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range m.rooms {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRooms) ListAllRooms(_ context.Context, _ int) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRooms) ListRoomsByOwner(_ context.Context, ownerID int64) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range m.rooms {
		if m.owners[r.HotelID] == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRooms) UpdateRoom(_ context.Context, r domain.Room) error {
	if _, ok := m.rooms[r.ID]; !ok {
		return domain.ErrNotFound
	}
	m.rooms[r.ID] = r
	return nil
}

func (m *memRooms) DeleteRoom(_ context.Context, id int64) error {
	if _, ok := m.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

type memReservations struct {
	res    map[int64]domain.Reservation
	nextID int64
}

func newMemReservations() *memReservations {
	return &memReservations{res: map[int64]domain.Reservation{}, nextID: 1}
}

func (m *memReservations) CreateReservation(_ context.Context, r *domain.Reservation) error {
	for _, ex := range m.res {
		if ex.RoomID != r.RoomID || ex.Status != domain.StatusConfirmed {
			continue
		}
		if domain.Overlaps(r.CheckIn, r.CheckOut, ex.CheckIn, ex.CheckOut) {
			return domain.ErrConflict
		}
	}
	r.ID = m.nextID
	m.nextID++
	m.res[r.ID] = *r
	return nil
}

func (m *memReservations) GetReservation(_ context.Context, id int64) (domain.Reservation, error) {
	r, ok := m.res[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memReservations) ListReservations(_ context.Context, q domain.ReservationsQuery) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range m.res {
		if q.UserID != nil && r.UserID != *q.UserID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memReservations) SetReservationStatus(_ context.Context, id int64, s domain.Status) error {
	r, ok := m.res[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = s
	m.res[id] = r
	return nil
}

func (m *memReservations) DeleteReservation(_ context.Context, id int64) error {
	if _, ok := m.res[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.res, id)
	return nil
}

func (m *memReservations) ExpirePending(_ context.Context, hotelID int64, cutoff time.Time) (int64, error) {
	var n int64
	for id, r := range m.res {
		if r.HotelID == hotelID && r.Status == domain.StatusPending && r.CreatedAt.Before(cutoff) {
			r.Status = domain.StatusCancelled
			m.res[id] = r
			n++
		}
	}
	return n, nil
}

type nopCache struct{}

func (nopCache) Get(_ context.Context, _ string, _ any) (bool, error) { return false, nil }
func (nopCache) Set(_ context.Context, _ string, _ any, _ int) error  { return nil }
func (nopCache) Del(_ context.Context, _ string) error                { return nil }

type memTokens struct{ revoked map[string]bool }

func newMemTokens() *memTokens { return &memTokens{revoked: map[string]bool{}} }

func (m *memTokens) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.revoked[jti] = true
	return nil
}

func (m *memTokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], nil
}

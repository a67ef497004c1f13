package app_test

import (
	"context"
	"io"
	"time"

	"stayhub/internal/domain"
)

// ---- fakes ----

type fakeUserRepo struct {
	users  map[int64]domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateUserRole(_ context.Context, id int64, role domain.Role) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	f.users[id] = u
	return nil
}

type fakeHotelRepo struct {
	hotels map[int64]domain.Hotel
	nextID int64
}

func newFakeHotelRepo() *fakeHotelRepo {
	return &fakeHotelRepo{hotels: map[int64]domain.Hotel{}, nextID: 1}
}

func (f *fakeHotelRepo) CreateHotel(_ context.Context, h *domain.Hotel) error {
	h.ID = f.nextID
	f.nextID++
	f.hotels[h.ID] = *h
	return nil
}

func (f *fakeHotelRepo) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeHotelRepo) ListHotels(_ context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	var out []domain.Hotel
	for _, h := range f.hotels {
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

func (f *fakeHotelRepo) UpdateHotel(_ context.Context, h domain.Hotel) error {
	if _, ok := f.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	f.hotels[h.ID] = h
	return nil
}

func (f *fakeHotelRepo) SetHotelValidated(_ context.Context, id int64, v bool) error {
	h, ok := f.hotels[id]
	if !ok {
		return domain.ErrNotFound
	}
	h.Validated = v
	f.hotels[id] = h
	return nil
}

func (f *fakeHotelRepo) DeleteHotel(_ context.Context, id int64) error {
	if _, ok := f.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.hotels, id)
	return nil
}

func (f *fakeHotelRepo) HotelIDs(_ context.Context) ([]int64, error) {
	out := make([]int64, 0, len(f.hotels))
	for id := range f.hotels {
		out = append(out, id)
	}
	return out, nil
}

type fakeRoomRepo struct {
	rooms  map[int64]domain.Room
	owners map[int64]int64 // hotel id -> owner id, for ListRoomsByOwner
	nextID int64
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: map[int64]domain.Room{}, owners: map[int64]int64{}, nextID: 1}
}

func (f *fakeRoomRepo) CreateRoom(_ context.Context, r *domain.Room) error {
	r.ID = f.nextID
	f.nextID++
	f.rooms[r.ID] = *r
	return nil
}

func (f *fakeRoomRepo) GetRoom(_ context.Context, id int64) (domain.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoomRepo) ListRooms(_ context.Context, hotelID int64) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range f.rooms {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) ListAllRooms(_ context.Context, _ int) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoomRepo) ListRoomsByOwner(_ context.Context, ownerID int64) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range f.rooms {
		if f.owners[r.HotelID] == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) UpdateRoom(_ context.Context, r domain.Room) error {
	if _, ok := f.rooms[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.rooms[r.ID] = r
	return nil
}

func (f *fakeRoomRepo) DeleteRoom(_ context.Context, id int64) error {
	if _, ok := f.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rooms, id)
	return nil
}

// fakeResRepo mirrors the repository contract: overlap against confirmed
// reservations decided inside CreateReservation.
type fakeResRepo struct {
	res    map[int64]domain.Reservation
	nextID int64
}

func newFakeResRepo() *fakeResRepo {
	return &fakeResRepo{res: map[int64]domain.Reservation{}, nextID: 1}
}

func (f *fakeResRepo) CreateReservation(_ context.Context, r *domain.Reservation) error {
	for _, ex := range f.res {
		if ex.RoomID != r.RoomID || ex.Status != domain.StatusConfirmed {
			continue
		}
		if domain.Overlaps(r.CheckIn, r.CheckOut, ex.CheckIn, ex.CheckOut) {
			return domain.ErrConflict
		}
	}
	r.ID = f.nextID
	f.nextID++
	f.res[r.ID] = *r
	return nil
}

func (f *fakeResRepo) GetReservation(_ context.Context, id int64) (domain.Reservation, error) {
	r, ok := f.res[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeResRepo) ListReservations(_ context.Context, q domain.ReservationsQuery) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.res {
		if q.UserID != nil && r.UserID != *q.UserID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResRepo) SetReservationStatus(_ context.Context, id int64, s domain.Status) error {
	r, ok := f.res[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = s
	f.res[id] = r
	return nil
}

func (f *fakeResRepo) DeleteReservation(_ context.Context, id int64) error {
	if _, ok := f.res[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.res, id)
	return nil
}

func (f *fakeResRepo) ExpirePending(_ context.Context, hotelID int64, cutoff time.Time) (int64, error) {
	var n int64
	for id, r := range f.res {
		if r.HotelID == hotelID && r.Status == domain.StatusPending && r.CreatedAt.Before(cutoff) {
			r.Status = domain.StatusCancelled
			f.res[id] = r
			n++
		}
	}
	return n, nil
}

// fakeCache always misses; service cache behavior is covered by the redis
// adapter tests.
type fakeCache struct{}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) { return false, nil }
func (c *fakeCache) Set(_ context.Context, key string, v any, ttlSec int) error { return nil }
func (c *fakeCache) Del(_ context.Context, key string) error                    { return nil }

type fakeTokenStore struct {
	revoked map[string]bool
}

func newFakeTokenStore() *fakeTokenStore { return &fakeTokenStore{revoked: map[string]bool{}} }

func (f *fakeTokenStore) Revoke(_ context.Context, jti string, _ time.Duration) error {
	f.revoked[jti] = true
	return nil
}

func (f *fakeTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

type fakeImages struct {
	saved   []string
	removed []string
}

func (f *fakeImages) Save(_ context.Context, dir, name string, _ io.Reader) (string, error) {
	rel := dir + "/img-" + name
	f.saved = append(f.saved, rel)
	return rel, nil
}

func (f *fakeImages) Remove(_ context.Context, rel string) error {
	f.removed = append(f.removed, rel)
	return nil
}

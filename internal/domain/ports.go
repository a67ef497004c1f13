package domain

import (
	"context"
	"io"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id int64, role Role) error
}

type HotelsQuery struct {
	OnlyValidated bool
	OwnerID       *int64
	Limit         int
}

type HotelRepository interface {
	CreateHotel(ctx context.Context, h *Hotel) error
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context, q HotelsQuery) ([]Hotel, error)
	UpdateHotel(ctx context.Context, h Hotel) error
	SetHotelValidated(ctx context.Context, id int64, validated bool) error
	DeleteHotel(ctx context.Context, id int64) error
	HotelIDs(ctx context.Context) ([]int64, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, hotelID int64) ([]Room, error)
	ListAllRooms(ctx context.Context, limit int) ([]Room, error)
	ListRoomsByOwner(ctx context.Context, ownerID int64) ([]Room, error)
	UpdateRoom(ctx context.Context, r Room) error
	DeleteRoom(ctx context.Context, id int64) error
}

type ReservationsQuery struct {
	UserID  *int64 // bookings made by this user
	OwnerID *int64 // bookings on hotels owned by this user
	Limit   int
}

type ReservationRepository interface {
	// CreateReservation checks for overlapping confirmed reservations on the
	// room and inserts within one transaction. Returns ErrConflict on overlap
	// and ErrNotFound when the room does not exist.
	CreateReservation(ctx context.Context, r *Reservation) error
	GetReservation(ctx context.Context, id int64) (Reservation, error)
	ListReservations(ctx context.Context, q ReservationsQuery) ([]Reservation, error)
	SetReservationStatus(ctx context.Context, id int64, s Status) error
	DeleteReservation(ctx context.Context, id int64) error
	// ExpirePending cancels pending reservations on a hotel created before
	// cutoff and reports how many were swept.
	ExpirePending(ctx context.Context, hotelID int64, cutoff time.Time) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenStore tracks revoked token IDs until their natural expiry.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ImageStore persists uploaded images and returns relative storage paths
// (e.g. "hotels/3f2a….jpg") that clients resolve against the static base.
type ImageStore interface {
	Save(ctx context.Context, dir, originalName string, src io.Reader) (string, error)
	Remove(ctx context.Context, rel string) error
}

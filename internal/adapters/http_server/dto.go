package httpserver

import (
	"time"

	"stayhub/internal/domain"
)

const dateLayout = "2006-01-02"

// Wire shapes. The domain structs stay tag-free; these control what leaves
// the process (no password hashes, day-granular reservation dates).

type userDTO struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Telephone *string     `json:"telephone,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUser(u domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Telephone: u.Telephone, Role: u.Role, CreatedAt: u.CreatedAt}
}

func toUsers(us []domain.User) []userDTO {
	out := make([]userDTO, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

type authDTO struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type hotelDTO struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"owner_id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Telephone   string   `json:"telephone"`
	Description *string  `json:"description,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Images      []string `json:"images"`
	Validated   bool     `json:"validated"`
}

func toHotel(h domain.Hotel) hotelDTO {
	if h.Images == nil {
		h.Images = []string{}
	}
	return hotelDTO{
		ID: h.ID, OwnerID: h.OwnerID, Name: h.Name, City: h.City,
		Address: h.Address, Telephone: h.Telephone, Description: h.Description,
		Lat: h.Lat, Lon: h.Lon, Images: h.Images, Validated: h.Validated,
	}
}

func toHotels(hs []domain.Hotel) []hotelDTO {
	out := make([]hotelDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, toHotel(h))
	}
	return out
}

type roomDTO struct {
	ID          int64    `json:"id"`
	HotelID     int64    `json:"hotel_id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Price       float64  `json:"price"`
	Capacity    int      `json:"capacity"`
	Description *string  `json:"description,omitempty"`
	Images      []string `json:"images"`
}

func toRoom(r domain.Room) roomDTO {
	if r.Images == nil {
		r.Images = []string{}
	}
	return roomDTO{
		ID: r.ID, HotelID: r.HotelID, Name: r.Name, Type: r.Type,
		Price: r.Price, Capacity: r.Capacity, Description: r.Description, Images: r.Images,
	}
}

func toRooms(rs []domain.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRoom(r))
	}
	return out
}

type reservationDTO struct {
	ID       int64         `json:"id"`
	UserID   int64         `json:"user_id"`
	RoomID   int64         `json:"room_id"`
	HotelID  int64         `json:"hotel_id"`
	CheckIn  string        `json:"check_in"`
	CheckOut string        `json:"check_out"`
	Status   domain.Status `json:"status"`
}

func toReservation(r domain.Reservation) reservationDTO {
	return reservationDTO{
		ID: r.ID, UserID: r.UserID, RoomID: r.RoomID, HotelID: r.HotelID,
		CheckIn:  r.CheckIn.Format(dateLayout),
		CheckOut: r.CheckOut.Format(dateLayout),
		Status:   r.Status,
	}
}

func toReservations(rs []domain.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservation(r))
	}
	return out
}

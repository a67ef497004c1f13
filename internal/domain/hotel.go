package domain

import "time"

type Hotel struct {
	ID          int64
	OwnerID     int64
	Name        string
	City        string
	Address     string
	Telephone   string
	Description *string
	Lat, Lon    *float64
	Images      []string // relative storage paths
	Validated   bool
	CreatedAt   time.Time
}

type Room struct {
	ID          int64
	HotelID     int64
	Name        string
	Type        string
	Price       float64
	Capacity    int
	Description *string
	Images      []string
	CreatedAt   time.Time
}

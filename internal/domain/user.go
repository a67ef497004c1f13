package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleHotel Role = "hotel"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleHotel, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Telephone    *string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

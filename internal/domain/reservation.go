package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Reservation holds a room for one booker over a half-open date range
// [CheckIn, CheckOut). HotelID is denormalized from the room.
type Reservation struct {
	ID        int64
	UserID    int64
	RoomID    int64
	HotelID   int64
	CheckIn   time.Time
	CheckOut  time.Time
	Status    Status
	CreatedAt time.Time
}

// BookerMayCancel reports whether the booking user may self-cancel from the
// current status. A confirmed reservation is locked against the booker;
// operators are not bound by this (see OperatorMaySet).
func BookerMayCancel(cur Status) bool {
	return cur != StatusConfirmed
}

// OperatorMaySet reports whether a hotel operator or admin may move a
// reservation to next. No state is terminal to an operator.
func OperatorMaySet(next Status) bool {
	return next.Valid()
}

// ValidateRange checks the booking range invariants: check_out strictly after
// check_in, and check_in no earlier than today (dates compare at day
// granularity).
func ValidateRange(checkIn, checkOut, now time.Time) error {
	if !checkOut.After(checkIn) {
		return ErrValidation
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if checkIn.Before(today) {
		return ErrValidation
	}
	return nil
}

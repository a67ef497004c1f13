package domain

// Identity is the acting principal extracted from a bearer token.
type Identity struct {
	UserID int64
	Role   Role
}

// Action names one guarded operation.
type Action string

const (
	ActViewUnvalidatedHotel Action = "hotel.view_unvalidated"
	ActCreateHotel          Action = "hotel.create"
	ActUpdateHotel          Action = "hotel.update"
	ActDeleteHotel          Action = "hotel.delete"
	ActValidateHotel        Action = "hotel.validate"
	ActListAllHotels        Action = "hotel.list_all"
	ActManageRoom           Action = "room.manage"
	ActCreateReservation    Action = "reservation.create"
	ActSetReservationStatus Action = "reservation.set_status"
	ActCancelOwnReservation Action = "reservation.self_cancel"
	ActDeleteReservation    Action = "reservation.delete"
	ActListAllReservations  Action = "reservation.list_all"
	ActAssignRole           Action = "user.assign_role"
	ActListUsers            Action = "user.list"
)

// Relation describes how the caller relates to the target resource.
type Relation int

const (
	RelNone   Relation = iota // no ownership link to the target
	RelOwner                  // caller owns the hotel behind the target
	RelBooker                 // caller created the reservation
)

const (
	anyRole Role     = "*"
	anyRel  Relation = -1
)

type permit struct {
	role Role
	rel  Relation
}

// permissions is the single allow table for every guarded operation.
// An action is allowed iff some row matches the caller's role and the
// caller's relation to the target. This replaces the per-endpoint checks
// scattered across the original handlers, including the loose variants
// that accepted any hotel-role caller regardless of ownership.
var permissions = map[Action][]permit{
	ActViewUnvalidatedHotel: {{anyRole, RelOwner}, {RoleAdmin, anyRel}},
	ActCreateHotel:          {{RoleHotel, anyRel}, {RoleAdmin, anyRel}},
	ActUpdateHotel:          {{anyRole, RelOwner}, {RoleAdmin, anyRel}},
	ActDeleteHotel:          {{anyRole, RelOwner}, {RoleAdmin, anyRel}},
	ActValidateHotel:        {{RoleAdmin, anyRel}},
	ActListAllHotels:        {{RoleAdmin, anyRel}},
	ActManageRoom:           {{anyRole, RelOwner}, {RoleAdmin, anyRel}},
	ActCreateReservation:    {{anyRole, anyRel}},
	ActSetReservationStatus: {{anyRole, RelOwner}, {RoleAdmin, anyRel}},
	ActCancelOwnReservation: {{anyRole, RelBooker}},
	ActDeleteReservation:    {{anyRole, RelOwner}, {RoleAdmin, anyRel}},
	ActListAllReservations:  {{RoleAdmin, anyRel}},
	ActAssignRole:           {{RoleAdmin, anyRel}},
	ActListUsers:            {{RoleAdmin, anyRel}},
}

// Allowed is the authorization gate: a pure read-only decision.
func Allowed(id Identity, act Action, rel Relation) bool {
	for _, p := range permissions[act] {
		if p.role != anyRole && p.role != id.Role {
			continue
		}
		if p.rel == anyRel || p.rel == rel {
			return true
		}
	}
	return false
}

// HotelRelation resolves the caller's relation to a hotel.
func HotelRelation(id Identity, h Hotel) Relation {
	if h.OwnerID == id.UserID {
		return RelOwner
	}
	return RelNone
}

// ReservationRelation resolves the caller's relation to a reservation given
// the owner of the reservation's hotel. Booker wins over owner so that a
// booker-only action cannot be satisfied by hotel ownership.
func ReservationRelation(id Identity, r Reservation, hotelOwnerID int64) Relation {
	if r.UserID == id.UserID {
		return RelBooker
	}
	if hotelOwnerID == id.UserID {
		return RelOwner
	}
	return RelNone
}

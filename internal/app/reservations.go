package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stayhub/internal/adapters/observability"
	"stayhub/internal/domain"
)

type ReservationService struct {
	res     domain.ReservationRepository
	rooms   domain.RoomRepository
	hotels  domain.HotelRepository
	holdTTL time.Duration
	now     func() time.Time
}

func NewReservationService(res domain.ReservationRepository, rooms domain.RoomRepository, hotels domain.HotelRepository, holdTTL time.Duration) *ReservationService {
	return &ReservationService{res: res, rooms: rooms, hotels: hotels, holdTTL: holdTTL, now: time.Now}
}

// Create books a room for [checkIn, checkOut). Only confirmed reservations
// block; the overlap re-check and the insert run in one repository
// transaction so concurrent requests cannot both pass.
func (s *ReservationService) Create(ctx context.Context, actor domain.Identity, roomID int64, checkIn, checkOut time.Time) (domain.Reservation, error) {
	if !domain.Allowed(actor, domain.ActCreateReservation, domain.RelNone) {
		return domain.Reservation{}, domain.ErrForbidden
	}
	if err := domain.ValidateRange(checkIn, checkOut, s.now()); err != nil {
		observability.ObserveBooking("rejected")
		return domain.Reservation{}, fmt.Errorf("%w: check_out must be after check_in and check_in must not be in the past", err)
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Reservation{}, err
	}
	r := domain.Reservation{
		UserID:   actor.UserID,
		RoomID:   room.ID,
		HotelID:  room.HotelID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Status:   domain.StatusPending,
	}
	if err := s.res.CreateReservation(ctx, &r); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			observability.ObserveBooking("conflict")
		} else {
			observability.ObserveBooking("error")
		}
		return domain.Reservation{}, err
	}
	observability.ObserveBooking("created")
	log.Info().
		Int64("reservation_id", r.ID).
		Int64("room_id", room.ID).
		Int64("user_id", actor.UserID).
		Msg("reservation created")
	return r, nil
}

func (s *ReservationService) Mine(ctx context.Context, actor domain.Identity) ([]domain.Reservation, error) {
	uid := actor.UserID
	return s.res.ListReservations(ctx, domain.ReservationsQuery{UserID: &uid})
}

// ForOperator lists reservations on every hotel the caller owns.
func (s *ReservationService) ForOperator(ctx context.Context, actor domain.Identity) ([]domain.Reservation, error) {
	owner := actor.UserID
	return s.res.ListReservations(ctx, domain.ReservationsQuery{OwnerID: &owner})
}

func (s *ReservationService) All(ctx context.Context, actor domain.Identity) ([]domain.Reservation, error) {
	if !domain.Allowed(actor, domain.ActListAllReservations, domain.RelNone) {
		return nil, domain.ErrForbidden
	}
	return s.res.ListReservations(ctx, domain.ReservationsQuery{})
}

// SetStatus is the operator/admin transition: any status may be set,
// including re-confirming a cancelled booking.
func (s *ReservationService) SetStatus(ctx context.Context, actor domain.Identity, id int64, status domain.Status) (domain.Reservation, error) {
	if !domain.OperatorMaySet(status) {
		return domain.Reservation{}, fmt.Errorf("%w: status must be pending, confirmed or cancelled", domain.ErrValidation)
	}
	r, rel, err := s.loadWithRelation(ctx, actor, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !domain.Allowed(actor, domain.ActSetReservationStatus, rel) {
		return domain.Reservation{}, domain.ErrForbidden
	}
	if err := s.res.SetReservationStatus(ctx, id, status); err != nil {
		return domain.Reservation{}, err
	}
	r.Status = status
	log.Info().Int64("reservation_id", id).Str("status", string(status)).Msg("reservation status updated")
	return r, nil
}

// Cancel is the booker's self-service path: pending holds only.
func (s *ReservationService) Cancel(ctx context.Context, actor domain.Identity, id int64) (domain.Reservation, error) {
	r, err := s.res.GetReservation(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	rel := domain.RelNone
	if r.UserID == actor.UserID {
		rel = domain.RelBooker
	}
	if !domain.Allowed(actor, domain.ActCancelOwnReservation, rel) {
		return domain.Reservation{}, domain.ErrForbidden
	}
	if !domain.BookerMayCancel(r.Status) {
		return domain.Reservation{}, fmt.Errorf("%w: cannot cancel a confirmed reservation", domain.ErrValidation)
	}
	if err := s.res.SetReservationStatus(ctx, id, domain.StatusCancelled); err != nil {
		return domain.Reservation{}, err
	}
	r.Status = domain.StatusCancelled
	return r, nil
}

func (s *ReservationService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	_, rel, err := s.loadWithRelation(ctx, actor, id)
	if err != nil {
		return err
	}
	if !domain.Allowed(actor, domain.ActDeleteReservation, rel) {
		return domain.ErrForbidden
	}
	return s.res.DeleteReservation(ctx, id)
}

// ExpireStalePending sweeps one hotel: pending holds created before
// now-holdTTL become cancelled. Returns the number swept.
func (s *ReservationService) ExpireStalePending(ctx context.Context, hotelID int64) (int64, error) {
	cutoff := s.now().Add(-s.holdTTL)
	n, err := s.res.ExpirePending(ctx, hotelID, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.ExpiredHolds.Add(float64(n))
		log.Info().Int64("hotel_id", hotelID).Int64("expired", n).Msg("stale holds cancelled")
	}
	return n, nil
}

// HotelIDs exposes the sweep worklist for cmd/sweeper.
func (s *ReservationService) HotelIDs(ctx context.Context) ([]int64, error) {
	return s.hotels.HotelIDs(ctx)
}

// loadWithRelation resolves the caller's relation to a reservation. Booker
// wins over hotel owner, so an operator who booked their own room goes
// through the booker paths like anyone else.
func (s *ReservationService) loadWithRelation(ctx context.Context, actor domain.Identity, id int64) (domain.Reservation, domain.Relation, error) {
	r, err := s.res.GetReservation(ctx, id)
	if err != nil {
		return domain.Reservation{}, domain.RelNone, err
	}
	h, err := s.hotels.GetHotel(ctx, r.HotelID)
	if err != nil {
		return domain.Reservation{}, domain.RelNone, err
	}
	return r, domain.ReservationRelation(actor, r, h.OwnerID), nil
}

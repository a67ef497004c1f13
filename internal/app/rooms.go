package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stayhub/internal/domain"
)

type RoomService struct {
	rooms    domain.RoomRepository
	hotels   domain.HotelRepository
	cache    domain.Cache
	images   domain.ImageStore
	cacheTTL time.Duration
}

func NewRoomService(r domain.RoomRepository, h domain.HotelRepository, c domain.Cache, img domain.ImageStore, ttl time.Duration) *RoomService {
	return &RoomService{rooms: r, hotels: h, cache: c, images: img, cacheTTL: ttl}
}

type RoomInput struct {
	Name        string
	Type        string
	Price       float64
	Capacity    int
	Description *string
}

func (in RoomInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "" || len(in.Name) > 150:
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case strings.TrimSpace(in.Type) == "" || len(in.Type) > 100:
		return fmt.Errorf("%w: type is required", domain.ErrValidation)
	case in.Price < 0:
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case in.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrValidation)
	}
	return nil
}

func (s *RoomService) Create(ctx context.Context, actor domain.Identity, hotelID int64, in RoomInput, uploads []Upload) (domain.Room, error) {
	h, err := s.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.Room{}, err
	}
	if !domain.Allowed(actor, domain.ActManageRoom, domain.HotelRelation(actor, h)) {
		return domain.Room{}, domain.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return domain.Room{}, err
	}
	imgs, err := saveUploads(ctx, s.images, "rooms", uploads)
	if err != nil {
		return domain.Room{}, err
	}
	room := domain.Room{
		HotelID:     hotelID,
		Name:        in.Name,
		Type:        in.Type,
		Price:       in.Price,
		Capacity:    in.Capacity,
		Description: in.Description,
		Images:      imgs,
	}
	if err := s.rooms.CreateRoom(ctx, &room); err != nil {
		removeAll(ctx, s.images, imgs)
		return domain.Room{}, err
	}
	s.invalidate(ctx, hotelID)
	log.Info().Int64("room_id", room.ID).Int64("hotel_id", hotelID).Msg("room created")
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (domain.Room, error) {
	return s.rooms.GetRoom(ctx, id)
}

// List returns a hotel's rooms. Room visibility follows the hotel only in
// the public hotel views; direct room listings stay open as in the original.
func (s *RoomService) List(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	key := fmt.Sprintf("rooms:hotel:%d", hotelID)
	var out []domain.Room
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.rooms.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *RoomService) ListAll(ctx context.Context, limit int) ([]domain.Room, error) {
	return s.rooms.ListAllRooms(ctx, limit)
}

// ListMine lists the rooms of every hotel the caller owns.
func (s *RoomService) ListMine(ctx context.Context, actor domain.Identity) ([]domain.Room, error) {
	return s.rooms.ListRoomsByOwner(ctx, actor.UserID)
}

type RoomUpdate struct {
	Name        *string
	Type        *string
	Price       *float64
	Capacity    *int
	Description *string
}

func (s *RoomService) Update(ctx context.Context, actor domain.Identity, id int64, upd RoomUpdate, keep []string, uploads []Upload) (domain.Room, error) {
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	h, err := s.hotels.GetHotel(ctx, room.HotelID)
	if err != nil {
		return domain.Room{}, err
	}
	if !domain.Allowed(actor, domain.ActManageRoom, domain.HotelRelation(actor, h)) {
		return domain.Room{}, domain.ErrForbidden
	}

	if upd.Name != nil {
		room.Name = *upd.Name
	}
	if upd.Type != nil {
		room.Type = *upd.Type
	}
	if upd.Price != nil {
		if *upd.Price < 0 {
			return domain.Room{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
		room.Price = *upd.Price
	}
	if upd.Capacity != nil {
		if *upd.Capacity < 1 {
			return domain.Room{}, fmt.Errorf("%w: capacity must be at least 1", domain.ErrValidation)
		}
		room.Capacity = *upd.Capacity
	}
	if upd.Description != nil {
		room.Description = upd.Description
	}

	room.Images, err = reconcileImages(ctx, s.images, "rooms", room.Images, keep, uploads)
	if err != nil {
		return domain.Room{}, err
	}

	if err := s.rooms.UpdateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	s.invalidate(ctx, room.HotelID)
	return room, nil
}

func (s *RoomService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	h, err := s.hotels.GetHotel(ctx, room.HotelID)
	if err != nil {
		return err
	}
	if !domain.Allowed(actor, domain.ActManageRoom, domain.HotelRelation(actor, h)) {
		return domain.ErrForbidden
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		return err
	}
	removeAll(ctx, s.images, room.Images)
	s.invalidate(ctx, room.HotelID)
	log.Info().Int64("room_id", id).Msg("room deleted")
	return nil
}

func (s *RoomService) invalidate(ctx context.Context, hotelID int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("rooms:hotel:%d", hotelID))
}

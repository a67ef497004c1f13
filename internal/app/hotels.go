package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stayhub/internal/domain"
)

// Upload is one multipart file handed down from the HTTP layer.
type Upload struct {
	Name string
	Data io.Reader
}

type HotelService struct {
	hotels   domain.HotelRepository
	cache    domain.Cache
	images   domain.ImageStore
	cacheTTL time.Duration
}

func NewHotelService(h domain.HotelRepository, c domain.Cache, img domain.ImageStore, ttl time.Duration) *HotelService {
	return &HotelService{hotels: h, cache: c, images: img, cacheTTL: ttl}
}

type HotelInput struct {
	Name        string
	City        string
	Address     string
	Telephone   string
	Description *string
	Lat, Lon    *float64
}

func (in HotelInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "" || len(in.Name) > 150:
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case strings.TrimSpace(in.City) == "" || len(in.City) > 100:
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	case strings.TrimSpace(in.Address) == "" || len(in.Address) > 255:
		return fmt.Errorf("%w: address is required", domain.ErrValidation)
	case strings.TrimSpace(in.Telephone) == "" || len(in.Telephone) > 20:
		return fmt.Errorf("%w: telephone is required", domain.ErrValidation)
	}
	return nil
}

func (s *HotelService) Create(ctx context.Context, actor domain.Identity, in HotelInput, uploads []Upload) (domain.Hotel, error) {
	if !domain.Allowed(actor, domain.ActCreateHotel, domain.RelNone) {
		return domain.Hotel{}, domain.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return domain.Hotel{}, err
	}
	imgs, err := saveUploads(ctx, s.images, "hotels", uploads)
	if err != nil {
		return domain.Hotel{}, err
	}
	h := domain.Hotel{
		OwnerID:     actor.UserID,
		Name:        in.Name,
		City:        in.City,
		Address:     in.Address,
		Telephone:   in.Telephone,
		Description: in.Description,
		Lat:         in.Lat,
		Lon:         in.Lon,
		Images:      imgs,
		Validated:   false, // every new hotel waits for admin validation
	}
	if err := s.hotels.CreateHotel(ctx, &h); err != nil {
		removeAll(ctx, s.images, imgs)
		return domain.Hotel{}, err
	}
	s.invalidateLists(ctx)
	log.Info().Int64("hotel_id", h.ID).Int64("owner_id", actor.UserID).Msg("hotel created")
	return h, nil
}

// Get returns a hotel; unvalidated hotels stay hidden from everyone but
// their owner and admins. actor is nil for anonymous callers.
func (s *HotelService) Get(ctx context.Context, actor *domain.Identity, id int64) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:%d", id)
	var h domain.Hotel
	ok, _ := s.cache.Get(ctx, key, &h)
	if !ok {
		var err error
		h, err = s.hotels.GetHotel(ctx, id)
		if err != nil {
			return domain.Hotel{}, err
		}
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	if !h.Validated {
		if actor == nil {
			return domain.Hotel{}, domain.ErrNotFound
		}
		if !domain.Allowed(*actor, domain.ActViewUnvalidatedHotel, domain.HotelRelation(*actor, h)) {
			return domain.Hotel{}, domain.ErrForbidden
		}
	}
	return h, nil
}

// ListPublic lists validated hotels only.
func (s *HotelService) ListPublic(ctx context.Context, limit int) ([]domain.Hotel, error) {
	key := fmt.Sprintf("hotels:public:%d", limit)
	var out []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.hotels.ListHotels(ctx, domain.HotelsQuery{OnlyValidated: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// ListMine lists the caller's own hotels, validated or not.
func (s *HotelService) ListMine(ctx context.Context, actor domain.Identity) ([]domain.Hotel, error) {
	owner := actor.UserID
	return s.hotels.ListHotels(ctx, domain.HotelsQuery{OwnerID: &owner})
}

// ListAll is the admin dashboard view: every hotel, any validation state.
func (s *HotelService) ListAll(ctx context.Context, actor domain.Identity) ([]domain.Hotel, error) {
	if !domain.Allowed(actor, domain.ActListAllHotels, domain.RelNone) {
		return nil, domain.ErrForbidden
	}
	return s.hotels.ListHotels(ctx, domain.HotelsQuery{})
}

type HotelUpdate struct {
	Name        *string
	City        *string
	Address     *string
	Telephone   *string
	Description *string
	Lat, Lon    *float64
}

// Update applies partial field changes and reconciles the image list: paths
// in keep survive, everything else is deleted from storage, new uploads are
// appended.
func (s *HotelService) Update(ctx context.Context, actor domain.Identity, id int64, upd HotelUpdate, keep []string, uploads []Upload) (domain.Hotel, error) {
	h, err := s.hotels.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if !domain.Allowed(actor, domain.ActUpdateHotel, domain.HotelRelation(actor, h)) {
		return domain.Hotel{}, domain.ErrForbidden
	}

	if upd.Name != nil {
		h.Name = *upd.Name
	}
	if upd.City != nil {
		h.City = *upd.City
	}
	if upd.Address != nil {
		h.Address = *upd.Address
	}
	if upd.Telephone != nil {
		h.Telephone = *upd.Telephone
	}
	if upd.Description != nil {
		h.Description = upd.Description
	}
	if upd.Lat != nil {
		h.Lat = upd.Lat
	}
	if upd.Lon != nil {
		h.Lon = upd.Lon
	}

	h.Images, err = reconcileImages(ctx, s.images, "hotels", h.Images, keep, uploads)
	if err != nil {
		return domain.Hotel{}, err
	}

	if err := s.hotels.UpdateHotel(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, id)
	return h, nil
}

func (s *HotelService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	h, err := s.hotels.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	if !domain.Allowed(actor, domain.ActDeleteHotel, domain.HotelRelation(actor, h)) {
		return domain.ErrForbidden
	}
	// rooms and reservations go with the hotel via FK cascade
	if err := s.hotels.DeleteHotel(ctx, id); err != nil {
		return err
	}
	removeAll(ctx, s.images, h.Images)
	s.invalidate(ctx, id)
	log.Info().Int64("hotel_id", id).Msg("hotel deleted")
	return nil
}

func (s *HotelService) SetValidated(ctx context.Context, actor domain.Identity, id int64, validated bool) (domain.Hotel, error) {
	if !domain.Allowed(actor, domain.ActValidateHotel, domain.RelNone) {
		return domain.Hotel{}, domain.ErrForbidden
	}
	if err := s.hotels.SetHotelValidated(ctx, id, validated); err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, id)
	log.Info().Int64("hotel_id", id).Bool("validated", validated).Msg("hotel validation set")
	return s.hotels.GetHotel(ctx, id)
}

// ---- cache helpers ----

func (s *HotelService) invalidate(ctx context.Context, id int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("hotel:%d", id))
	s.invalidateLists(ctx)
}

// Public listing defaults to limit=50; clear the common variants too.
func (s *HotelService) invalidateLists(ctx context.Context) {
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, fmt.Sprintf("hotels:public:%d", lim))
	}
}

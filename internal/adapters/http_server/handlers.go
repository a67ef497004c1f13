package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayhub/internal/app"
	"stayhub/internal/domain"
)

type Handlers struct {
	Auth         *app.AuthService
	Issuer       *app.TokenIssuer
	Revoked      domain.TokenStore
	Hotels       *app.HotelService
	Rooms        *app.RoomService
	Reservations *app.ReservationService
	StorageDir   string

	login *ipLimiter
}

func NewHandlers(auth *app.AuthService, issuer *app.TokenIssuer, revoked domain.TokenStore,
	hotels *app.HotelService, rooms *app.RoomService, res *app.ReservationService,
	storageDir string, loginRPS int) *Handlers {
	return &Handlers{
		Auth: auth, Issuer: issuer, Revoked: revoked,
		Hotels: hotels, Rooms: rooms, Reservations: res,
		StorageDir: storageDir, login: newIPLimiter(loginRPS),
	}
}

func (s *Server) MountHandlers(h *Handlers) {
	m := s.mux

	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	m.Post("/register", h.register)
	m.With(h.login.middleware).Post("/login", h.loginHandler)

	m.Get("/hotels", h.listHotels)
	m.With(h.maybeAuth).Get("/hotels/{id}", h.getHotel)
	m.Get("/hotels/{id}/rooms", h.listHotelRooms)
	m.Get("/rooms", h.listRooms)
	m.Get("/rooms/{id}", h.getRoom)
	m.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(h.StorageDir))))

	m.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/logout", h.logout)
		r.Get("/profile", h.profile)
		r.Get("/users", h.listUsers)
		r.Patch("/users/{id}/role", h.assignRole)

		r.Get("/admin/hotels", h.listAllHotels)
		r.Get("/my-hotels", h.myHotels)
		r.Post("/hotels", h.createHotel)
		r.Put("/hotels/{id}", h.updateHotel)
		r.Delete("/hotels/{id}", h.deleteHotel)
		r.Patch("/hotels/{id}/validate", h.validateHotel)

		r.Post("/hotels/{id}/rooms", h.createRoom)
		r.Put("/rooms/{id}", h.updateRoom)
		r.Delete("/rooms/{id}", h.deleteRoom)
		r.Get("/hotel/rooms", h.myRooms)

		r.Post("/reservations", h.createReservation)
		r.Get("/my-reservations", h.myReservations)
		r.Get("/hotel/reservations", h.hotelReservations)
		r.Get("/reservations", h.listReservations)
		r.Patch("/reservations/{id}/status", h.setReservationStatus)
		r.Patch("/reservations/{id}/cancel", h.cancelReservation)
		r.Delete("/reservations/{id}", h.deleteReservation)
	})
}

// ---- response plumbing ----

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeErr maps domain sentinels onto problem responses. Anything unmapped is
// a 500 with a generic body; the real error goes to the log only.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "not allowed")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeETagged serves v with a weak ETag and honors If-None-Match.
func writeETagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func limitParam(r *http.Request, def int) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > 200 {
		return 0, false
	}
	return l, true
}

// identity returns the actor behind a requireAuth route.
func identity(r *http.Request) domain.Identity {
	c, _ := claimsFrom(r.Context())
	return c.Identity()
}

// actorPtr returns the actor if the request carried a token, nil otherwise.
func actorPtr(r *http.Request) *domain.Identity {
	if c, ok := claimsFrom(r.Context()); ok {
		id := c.Identity()
		return &id
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ErrValidation
	}
	return nil
}

// ---- auth / users ----

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		Telephone *string `json:"telephone"`
		Password  string  `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	u, token, err := h.Auth.Register(r.Context(), app.RegisterInput{
		Name: in.Name, Email: in.Email, Telephone: in.Telephone, Password: in.Password,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authDTO{Token: token, User: toUser(u)})
}

func (h *Handlers) loginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	u, token, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authDTO{Token: token, User: toUser(u)})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	if err := h.Auth.Logout(r.Context(), claims); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handlers) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Auth.Profile(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.Auth.ListUsers(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUsers(us))
}

func (h *Handlers) assignRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var in struct {
		Role domain.Role `json:"role"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	u, err := h.Auth.AssignRole(r.Context(), identity(r), id, in.Role)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

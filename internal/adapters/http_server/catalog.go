package httpserver

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"stayhub/internal/app"
	"stayhub/internal/domain"
)

const maxUploadBytes = 32 << 20

// parseCatalogForm accepts multipart (with images) or urlencoded bodies.
func parseCatalogForm(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return domain.ErrValidation
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return domain.ErrValidation
	}
	return nil
}

// formUploads opens every "images" part. The returned closer must run after
// the service has consumed the readers.
func formUploads(r *http.Request) ([]app.Upload, func(), error) {
	closerFor := func(files []multipart.File) func() {
		return func() {
			for _, f := range files {
				_ = f.Close()
			}
		}
	}
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}
	var files []multipart.File
	var ups []app.Upload
	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			closerFor(files)()
			return nil, nil, err
		}
		files = append(files, f)
		ups = append(ups, app.Upload{Name: fh.Filename, Data: f})
	}
	return ups, closerFor(files), nil
}

// keepList returns the image paths the client wants to retain, or nil when
// the field is absent (meaning: leave the stored list alone).
func keepList(r *http.Request) []string {
	for _, k := range []string{"keep[]", "keep"} {
		if vs, ok := r.Form[k]; ok {
			return vs
		}
	}
	return nil
}

func formPtr(r *http.Request, key string) *string {
	if vs, ok := r.Form[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

func formFloatPtr(r *http.Request, key string) (*float64, error) {
	s := formPtr(r, key)
	if s == nil || *s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, domain.ErrValidation
	}
	return &f, nil
}

func formIntPtr(r *http.Request, key string) (*int, error) {
	s := formPtr(r, key)
	if s == nil || *s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil, domain.ErrValidation
	}
	return &n, nil
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r, 50)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return
	}
	hs, err := h.Hotels.ListPublic(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeETagged(w, r, toHotels(hs))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	hotel, err := h.Hotels.Get(r.Context(), actorPtr(r), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeETagged(w, r, toHotel(hotel))
}

func (h *Handlers) myHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Hotels.ListMine(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotels(hs))
}

func (h *Handlers) listAllHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Hotels.ListAll(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotels(hs))
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	if err := parseCatalogForm(r); err != nil {
		writeErr(w, err)
		return
	}
	lat, err := formFloatPtr(r, "lat")
	if err != nil {
		writeErr(w, err)
		return
	}
	lon, err := formFloatPtr(r, "lon")
	if err != nil {
		writeErr(w, err)
		return
	}
	in := app.HotelInput{
		Name:        r.Form.Get("name"),
		City:        r.Form.Get("city"),
		Address:     r.Form.Get("address"),
		Telephone:   r.Form.Get("telephone"),
		Description: formPtr(r, "description"),
		Lat:         lat,
		Lon:         lon,
	}
	ups, done, err := formUploads(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer done()
	hotel, err := h.Hotels.Create(r.Context(), identity(r), in, ups)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHotel(hotel))
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := parseCatalogForm(r); err != nil {
		writeErr(w, err)
		return
	}
	lat, err := formFloatPtr(r, "lat")
	if err != nil {
		writeErr(w, err)
		return
	}
	lon, err := formFloatPtr(r, "lon")
	if err != nil {
		writeErr(w, err)
		return
	}
	upd := app.HotelUpdate{
		Name:        formPtr(r, "name"),
		City:        formPtr(r, "city"),
		Address:     formPtr(r, "address"),
		Telephone:   formPtr(r, "telephone"),
		Description: formPtr(r, "description"),
		Lat:         lat,
		Lon:         lon,
	}
	ups, done, err := formUploads(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer done()
	hotel, err := h.Hotels.Update(r.Context(), identity(r), id, upd, keepList(r), ups)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotel(hotel))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.Hotels.Delete(r.Context(), identity(r), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) validateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	in := struct {
		Validated *bool `json:"validated"`
	}{}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	// Absent field means approve; admins un-validate by sending false.
	validated := true
	if in.Validated != nil {
		validated = *in.Validated
	}
	hotel, err := h.Hotels.SetValidated(r.Context(), identity(r), id, validated)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotel(hotel))
}

// ---- rooms ----

func (h *Handlers) listHotelRooms(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	rooms, err := h.Rooms.List(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeETagged(w, r, toRooms(rooms))
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r, 50)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return
	}
	rooms, err := h.Rooms.ListAll(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeETagged(w, r, toRooms(rooms))
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	room, err := h.Rooms.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeETagged(w, r, toRoom(room))
}

func (h *Handlers) myRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.ListMine(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRooms(rooms))
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := parseCatalogForm(r); err != nil {
		writeErr(w, err)
		return
	}
	price, err := formFloatPtr(r, "price")
	if err != nil {
		writeErr(w, err)
		return
	}
	capacity, err := formIntPtr(r, "capacity")
	if err != nil {
		writeErr(w, err)
		return
	}
	in := app.RoomInput{
		Name:        r.Form.Get("name"),
		Type:        r.Form.Get("type"),
		Description: formPtr(r, "description"),
	}
	if price != nil {
		in.Price = *price
	}
	if capacity != nil {
		in.Capacity = *capacity
	}
	ups, done, err := formUploads(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer done()
	room, err := h.Rooms.Create(r.Context(), identity(r), hotelID, in, ups)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoom(room))
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := parseCatalogForm(r); err != nil {
		writeErr(w, err)
		return
	}
	price, err := formFloatPtr(r, "price")
	if err != nil {
		writeErr(w, err)
		return
	}
	capacity, err := formIntPtr(r, "capacity")
	if err != nil {
		writeErr(w, err)
		return
	}
	upd := app.RoomUpdate{
		Name:        formPtr(r, "name"),
		Type:        formPtr(r, "type"),
		Price:       price,
		Capacity:    capacity,
		Description: formPtr(r, "description"),
	}
	ups, done, err := formUploads(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer done()
	room, err := h.Rooms.Update(r.Context(), identity(r), id, upd, keepList(r), ups)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoom(room))
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.Rooms.Delete(r.Context(), identity(r), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

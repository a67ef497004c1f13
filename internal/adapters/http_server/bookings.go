package httpserver

import (
	"net/http"
	"time"

	"stayhub/internal/domain"
)

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RoomID   int64  `json:"room_id"`
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	checkIn, err1 := time.Parse(dateLayout, in.CheckIn)
	checkOut, err2 := time.Parse(dateLayout, in.CheckOut)
	if err1 != nil || err2 != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "check_in and check_out must be YYYY-MM-DD dates")
		return
	}
	res, err := h.Reservations.Create(r.Context(), identity(r), in.RoomID, checkIn, checkOut)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservation(res))
}

func (h *Handlers) myReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Reservations.Mine(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservations(rs))
}

func (h *Handlers) hotelReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Reservations.ForOperator(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservations(rs))
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Reservations.All(r.Context(), identity(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservations(rs))
}

func (h *Handlers) setReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var in struct {
		Status domain.Status `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	res, err := h.Reservations.SetStatus(r.Context(), identity(r), id, in.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservation(res))
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	res, err := h.Reservations.Cancel(r.Context(), identity(r), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservation(res))
}

func (h *Handlers) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.Reservations.Delete(r.Context(), identity(r), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"booking-api/internal/availability"
	"booking-api/internal/booking"
	"booking-api/internal/model"
)

type doctorView struct {
	model.Doctor
	Availability []model.AvailabilityDay `json:"availability"`
	Bookable     bool                    `json:"bookable"`
}

func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.store.ListDoctors(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	out := make([]doctorView, len(doctors))
	for i, d := range doctors {
		days, err := h.coord.Availability(r.Context(), d.ID, 0)
		if err != nil {
			h.fail(w, err)
			return
		}
		out[i] = doctorView{Doctor: d, Availability: days, Bookable: availability.Bookable(days)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DoctorAvailability(w http.ResponseWriter, r *http.Request) {
	window := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		window = n
	}

	days, err := h.coord.Availability(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// StreamAvailability exposes the watcher as a server-sent event stream of
// availability snapshots.
func (h *Handler) StreamAvailability(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	interval := 5 * time.Second
	if v := r.URL.Query().Get("interval"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 60 {
			interval = time.Duration(n) * time.Second
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watcher := h.coord.Watch(r.Context(), chi.URLParam(r, "id"), interval)
	defer watcher.Stop()

	for snap := range watcher.Snapshots() {
		if err := writeEvent(w, snap); err != nil {
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, snap booking.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = w.Write(append(append([]byte("data: "), raw...), '\n', '\n'))
	return err
}

func (h *Handler) DoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.store.GetDoctor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.coord.Today()
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"slots": availability.SlotsOn(doctor.Slots, date),
	})
}

// ReplaceSlots accepts the legacy document form {"availableSlots":[...]} and
// overwrites the doctor's slot list. Malformed slot data is treated as empty,
// not rejected.
func (h *Handler) ReplaceSlots(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	slots := model.ParseSlotDocument(body)
	doctorID := chi.URLParam(r, "id")
	if err := h.store.ReplaceSlots(r.Context(), doctorID, slots); err != nil {
		h.fail(w, err)
		return
	}
	h.coord.InvalidateAvailability(r.Context(), doctorID)

	writeJSON(w, http.StatusOK, map[string]any{"doctorId": doctorID, "slotCount": len(model.DedupeSlots(slots))})
}

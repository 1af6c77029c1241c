package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"booking-api/internal/availability"
	"booking-api/internal/booking"
	"booking-api/internal/model"
	"booking-api/internal/selection"
	"booking-api/internal/session"
)

func (h *Handler) selector(ctx context.Context, sess session.Session) (*selection.Selector, error) {
	sel, err := h.selections.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		sel = selection.New(h.coord.Today())
	}
	return sel, nil
}

func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	sel, err := h.selector(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	sess, _ := session.FromContext(r.Context())
	sel, err := h.selector(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}

	sel.SelectDate(req.Date)
	if err := h.selections.Save(r.Context(), sess.ID, sel); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DoctorID  string `json:"doctorId"`
		SlotIndex int    `json:"slotIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DoctorID == "" {
		writeError(w, http.StatusBadRequest, "doctorId and slotIndex required")
		return
	}

	sess, _ := session.FromContext(r.Context())
	sel, err := h.selector(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}

	doctor, err := h.store.GetDoctor(r.Context(), req.DoctorID)
	if err != nil {
		h.fail(w, err)
		return
	}

	// selecting an unavailable slot is a no-op
	daySlots := availability.SlotsOn(doctor.Slots, sel.Date)
	applied := sel.SelectSlot(daySlots, req.SlotIndex)
	if applied {
		if err := h.selections.Save(r.Context(), sess.ID, sel); err != nil {
			h.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied, "selection": sel})
}

func (h *Handler) BookSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DoctorID  string `json:"doctorId"`
		SlotIndex *int   `json:"slotIndex"` // position in the doctor's full slot list
		Date      string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DoctorID == "" {
		writeError(w, http.StatusBadRequest, "doctorId required")
		return
	}

	sess, _ := session.FromContext(r.Context())
	sel, err := h.selector(r.Context(), sess)
	if err != nil {
		h.fail(w, err)
		return
	}

	date := req.Date
	if date == "" {
		date = sel.Date
	}

	var slotIndex int
	switch {
	case req.SlotIndex != nil:
		slotIndex = *req.SlotIndex
	case sel.Selected():
		// resolve the per-date selection back to a list position
		doctor, err := h.store.GetDoctor(r.Context(), req.DoctorID)
		if err != nil {
			h.fail(w, err)
			return
		}
		slotIndex = availability.ListIndex(doctor.Slots, date, sel.SlotIndex)
		if slotIndex < 0 {
			writeError(w, http.StatusConflict, "selected slot no longer exists")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "no slot selected")
		return
	}

	appt, err := h.coord.Book(r.Context(), sess, booking.BookRequest{
		DoctorID:  req.DoctorID,
		SlotIndex: slotIndex,
		Date:      date,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	sel.ClearSlot()
	if err := h.selections.Save(r.Context(), sess.ID, sel); err != nil {
		h.log.Warn("selection reset failed after booking")
	}
	writeJSON(w, http.StatusCreated, appt)
}

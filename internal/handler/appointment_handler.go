package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"booking-api/internal/model"
	"booking-api/internal/session"
)

// ListAppointments serves both sides of a booking: role=doctor lists the
// caller's appointments as the doctor (optionally filtered by status or
// today=true), role=patient lists the caller's recent bookings.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	q := r.URL.Query()

	switch q.Get("role") {
	case "doctor":
		if q.Get("today") == "true" {
			appts, err := h.store.TodaysAppointments(r.Context(), sess.UserID, time.Now().UTC())
			if err != nil {
				h.fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, appts)
			return
		}

		status := q.Get("status")
		switch status {
		case "", model.AppointmentPending, model.AppointmentApproved,
			model.AppointmentDeclined, model.AppointmentCompleted:
		default:
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}

		appts, err := h.store.ListDoctorAppointments(r.Context(), sess.UserID, status)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)

	case "", "patient":
		appts, err := h.store.ListPatientAppointments(r.Context(), sess.UserID, 0)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)

	default:
		writeError(w, http.StatusBadRequest, "role must be doctor or patient")
	}
}

func (h *Handler) ApproveAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.AppointmentPending, model.AppointmentApproved)
}

func (h *Handler) DeclineAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.AppointmentPending, model.AppointmentDeclined)
}

func (h *Handler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.AppointmentApproved, model.AppointmentCompleted)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, from, to string) {
	id := chi.URLParam(r, "id")
	sess, _ := session.FromContext(r.Context())

	appt, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	// ownership — return 404 not 403 to hide existence
	if appt.DoctorID != sess.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if !model.ValidTransition(appt.Status, to) {
		writeError(w, http.StatusConflict, "invalid status transition")
		return
	}

	if err := h.store.UpdateAppointmentStatus(r.Context(), id, from, to); err != nil {
		h.fail(w, err)
		return
	}

	h.met.IncTransition(to)
	appt.Status = to
	writeJSON(w, http.StatusOK, appt)
}

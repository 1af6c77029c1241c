package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"booking-api/internal/booking"
	"booking-api/internal/metrics"
	"booking-api/internal/middleware"
	"booking-api/internal/model"
	"booking-api/internal/selection"
	"booking-api/internal/store"
)

// Store is the slice of the persistence layer the HTTP surface needs beyond
// what the booking coordinator covers.
type Store interface {
	booking.SlotStore
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
	ReplaceSlots(ctx context.Context, doctorID string, slots []model.Slot) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID, status string) ([]model.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID string, limit int) ([]model.Appointment, error)
	TodaysAppointments(ctx context.Context, doctorID string, day time.Time) ([]model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id, from, to string) error
}

type Handler struct {
	store      Store
	coord      *booking.Coordinator
	selections selection.Store
	log        *zap.Logger
	met        *metrics.Metrics
}

func New(st Store, coord *booking.Coordinator, selections selection.Store, log *zap.Logger, met *metrics.Metrics) *Handler {
	return &Handler{store: st, coord: coord, selections: selections, log: log, met: met}
}

// Routes assembles the full HTTP surface.
func (h *Handler) Routes(rl *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(h.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderSessionID},
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/doctors", h.ListDoctors)
		r.Get("/doctors/{id}/availability", h.DoctorAvailability)
		r.Get("/doctors/{id}/availability/stream", h.StreamAvailability)
		r.Get("/doctors/{id}/slots", h.DoctorSlots)
		r.Put("/doctors/{id}/slots", h.ReplaceSlots)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/selection", h.GetSelection)
			r.Post("/selection/date", h.SelectDate)
			r.Post("/selection/slot", h.SelectSlot)
			r.With(middleware.RateLimit(rl)).Post("/bookings", h.BookSlot)
			r.Get("/appointments", h.ListAppointments)
			r.Post("/appointments/{id}/approve", h.ApproveAppointment)
			r.Post("/appointments/{id}/decline", h.DeclineAppointment)
			r.Post("/appointments/{id}/complete", h.CompleteAppointment)
		})
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps domain errors onto HTTP codes; everything unexpected becomes a
// generic 500.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot no longer available")
	case errors.Is(err, store.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid status transition")
	case errors.Is(err, booking.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid date")
	default:
		h.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booking-api/internal/availability"
	"booking-api/internal/metrics"
	"booking-api/internal/model"
	"booking-api/internal/session"
	"booking-api/internal/store"
)

// DefaultDuration is the appointment length in minutes recorded per booking.
const DefaultDuration = 30

var ErrInvalidDate = errors.New("invalid date")

// SlotStore is the slice of the store the coordinator needs.
type SlotStore interface {
	GetDoctor(ctx context.Context, id string) (*model.Doctor, error)
	BookSlot(ctx context.Context, doctorID string, slotIndex int, date string, appt *model.Appointment) error
}

// AvailabilityCache holds computed calendars between reads. *cache.Client
// satisfies it; anything that mutates a doctor's slots must invalidate.
type AvailabilityCache interface {
	GetAvailability(ctx context.Context, doctorID string) ([]model.AvailabilityDay, bool)
	SetAvailability(ctx context.Context, doctorID string, days []model.AvailabilityDay, ttl time.Duration) error
	InvalidateAvailability(ctx context.Context, doctorID string) error
}

// Coordinator performs the booking read-modify-write: resolve the slot,
// transition it to booked and record the appointment in one atomic operation.
type Coordinator struct {
	store SlotStore
	cache AvailabilityCache
	log   *zap.Logger
	met   *metrics.Metrics
	clock func() time.Time
}

func NewCoordinator(st SlotStore, log *zap.Logger, met *metrics.Metrics) *Coordinator {
	return &Coordinator{store: st, log: log, met: met, clock: time.Now}
}

// WithCache enables availability caching.
func (c *Coordinator) WithCache(cache AvailabilityCache) *Coordinator {
	c.cache = cache
	return c
}

// WithClock replaces the time source, for tests.
func (c *Coordinator) WithClock(clock func() time.Time) *Coordinator {
	c.clock = clock
	return c
}

type BookRequest struct {
	DoctorID  string
	SlotIndex int    // position in the doctor's full ordered slot list
	Date      string // canonical YYYY-MM-DD
}

// Book transitions the requested slot to booked and creates a pending
// appointment for the session's patient. Either both writes land or neither
// does.
func (c *Coordinator) Book(ctx context.Context, sess session.Session, req BookRequest) (*model.Appointment, error) {
	day, err := time.ParseInLocation(model.DateLayout, req.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	doctor, err := c.store.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if req.SlotIndex < 0 || req.SlotIndex >= len(doctor.Slots) {
		return nil, fmt.Errorf("slot index %d: %w", req.SlotIndex, store.ErrNotFound)
	}

	slot := doctor.Slots[req.SlotIndex]
	if slot.Status != model.SlotAvailable {
		return nil, store.ErrSlotUnavailable
	}

	start, err := time.Parse(model.TimeLayout, slot.Start)
	if err != nil {
		return nil, fmt.Errorf("slot start %q: %w", slot.Start, ErrInvalidDate)
	}
	when := time.Date(day.Year(), day.Month(), day.Day(),
		start.Hour(), start.Minute(), 0, 0, time.UTC)

	appt := &model.Appointment{
		ID:          uuid.New().String(),
		DoctorID:    doctor.ID,
		PatientID:   sess.UserID,
		DoctorName:  doctor.FullName,
		PatientName: sess.UserName,
		Time:        when,
		Duration:    DefaultDuration,
		Status:      model.AppointmentPending,
		SlotIndex:   req.SlotIndex,
	}

	if err := c.store.BookSlot(ctx, req.DoctorID, req.SlotIndex, req.Date, appt); err != nil {
		if errors.Is(err, store.ErrSlotUnavailable) {
			c.met.IncBookingConflicts()
			c.log.Warn("booking lost slot race",
				zap.String("doctor_id", req.DoctorID),
				zap.Int("slot_index", req.SlotIndex))
		}
		return nil, err
	}

	c.met.IncBookings()
	c.InvalidateAvailability(ctx, req.DoctorID)
	c.log.Info("slot booked",
		zap.String("doctor_id", req.DoctorID),
		zap.String("patient_id", sess.UserID),
		zap.Int("slot_index", req.SlotIndex),
		zap.String("date", req.Date))
	return appt, nil
}

// Availability returns the doctor's forward-looking calendar, serving from
// cache when one is configured.
func (c *Coordinator) Availability(ctx context.Context, doctorID string, window int) ([]model.AvailabilityDay, error) {
	if window <= 0 {
		window = availability.DefaultWindow
	}

	if c.cache != nil && window == availability.DefaultWindow {
		if days, ok := c.cache.GetAvailability(ctx, doctorID); ok {
			return days, nil
		}
	}

	doctor, err := c.store.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	days := availability.Calendar(doctor.Slots, c.clock(), window)

	if c.cache != nil && window == availability.DefaultWindow {
		if err := c.cache.SetAvailability(ctx, doctorID, days, time.Minute); err != nil {
			c.log.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return days, nil
}

// Today returns the current day in canonical form.
func (c *Coordinator) Today() string {
	return availability.Day(c.clock()).Format(model.DateLayout)
}

// InvalidateAvailability drops the doctor's cached calendar so the next read
// recomputes it. Callers mutating slot data outside Book must use this too.
func (c *Coordinator) InvalidateAvailability(ctx context.Context, doctorID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateAvailability(ctx, doctorID); err != nil {
		c.log.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

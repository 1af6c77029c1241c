package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the canonical calendar-date form used as the join key between
// availability days and slot records. Callers must produce and consume dates
// in this exact form.
const DateLayout = "2006-01-02"

// TimeLayout is the wall-clock form slot start/end times are stored in.
const TimeLayout = "15:04"

const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

const (
	AppointmentPending   = "pending"
	AppointmentApproved  = "approved"
	AppointmentDeclined  = "declined"
	AppointmentCompleted = "completed"
)

// Slot is a bookable time interval belonging to exactly one doctor. Slots
// have no identity outside the owning doctor's ordered list; within that list
// (Date, Start) is unique. Status only ever moves available -> booked.
type Slot struct {
	Date   string `json:"date"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}

// Key returns the (date, start) uniqueness key.
func (s Slot) Key() string { return s.Date + " " + s.Start }

type Doctor struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Specialization string    `json:"specialization"`
	ClinicAddress  string    `json:"clinicAddress"`
	Slots          []Slot    `json:"availableSlots"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

type Appointment struct {
	ID          string    `json:"id"`
	DoctorID    string    `json:"doctor_id"`
	PatientID   string    `json:"patient_id"`
	DoctorName  string    `json:"doctor_name"`
	PatientName string    `json:"patient_name"`
	Time        time.Time `json:"appointment_time"`
	Duration    int       `json:"appointment_duration"`
	Status      string    `json:"status"`
	SlotIndex   int       `json:"slotIndex"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// AvailabilityDay summarizes one calendar day of a doctor's slots. Derived on
// each view, never persisted.
type AvailabilityDay struct {
	Date           string `json:"date"`
	AvailableCount int    `json:"availableCount"`
	TotalCount     int    `json:"totalCount"`
}

// ValidTransition reports whether an appointment may move between statuses:
// pending -> approved|declined, approved -> completed.
func ValidTransition(from, to string) bool {
	switch from {
	case AppointmentPending:
		return to == AppointmentApproved || to == AppointmentDeclined
	case AppointmentApproved:
		return to == AppointmentCompleted
	}
	return false
}

type slotDocument struct {
	AvailableSlots json.RawMessage `json:"availableSlots"`
}

// ParseSlotDocument decodes the legacy document form {"availableSlots":[...]}.
// Missing, malformed or non-array slot data decodes to an empty list.
func ParseSlotDocument(raw []byte) []Slot {
	var doc slotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	if len(doc.AvailableSlots) == 0 {
		return nil
	}
	var slots []Slot
	if err := json.Unmarshal(doc.AvailableSlots, &slots); err != nil {
		return nil
	}
	return slots
}

// DedupeSlots drops any slot whose (date, start) key already appeared earlier
// in the list, keeping the first occurrence.
func DedupeSlots(slots []Slot) []Slot {
	seen := make(map[string]struct{}, len(slots))
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s.Key()]; ok {
			continue
		}
		seen[s.Key()] = struct{}{}
		out = append(out, s)
	}
	return out
}

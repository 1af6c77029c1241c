package selection

import "booking-api/internal/model"

// None marks a selector with no chosen slot.
const None = -1

// Selector tracks a patient's in-progress choice of date and slot. The slot
// index is relative to the chosen date's filtered slot list.
type Selector struct {
	Date      string `json:"date"`
	SlotIndex int    `json:"slotIndex"`
}

// New returns a selector anchored at the given canonical date with no slot
// chosen.
func New(date string) *Selector {
	return &Selector{Date: date, SlotIndex: None}
}

// SelectDate switches the active date. Any previously chosen slot is cleared.
func (s *Selector) SelectDate(date string) {
	s.Date = date
	s.SlotIndex = None
}

// SelectSlot records idx when the slot at idx in the day's filtered list is
// available. Selecting an out-of-range or unavailable slot is a no-op and
// returns false.
func (s *Selector) SelectSlot(daySlots []model.Slot, idx int) bool {
	if idx < 0 || idx >= len(daySlots) {
		return false
	}
	if daySlots[idx].Status != model.SlotAvailable {
		return false
	}
	s.SlotIndex = idx
	return true
}

// Selected reports whether a slot has been chosen for the active date.
func (s *Selector) Selected() bool { return s.SlotIndex != None }

// ClearSlot drops the chosen slot, keeping the date.
func (s *Selector) ClearSlot() { s.SlotIndex = None }

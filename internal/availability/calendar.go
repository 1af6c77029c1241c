package availability

import (
	"time"

	"booking-api/internal/model"
)

// DefaultWindow is the number of forward-looking days summarized per doctor.
const DefaultWindow = 14

// Day strips the time-of-day from t, anchoring it at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Calendar summarizes slots over the window of consecutive calendar days
// starting at today (day granularity). It returns exactly one AvailabilityDay
// per day, in ascending date order, zero-filled for days with no slots.
// The result is recomputed fresh on every call.
func Calendar(slots []model.Slot, today time.Time, window int) []model.AvailabilityDay {
	if window <= 0 {
		return nil
	}

	start := Day(today)
	end := start.AddDate(0, 0, window-1)

	counts := make(map[string]*model.AvailabilityDay, len(slots))
	for _, slot := range slots {
		date, err := time.ParseInLocation(model.DateLayout, slot.Date, time.UTC)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		day, ok := counts[slot.Date]
		if !ok {
			day = &model.AvailabilityDay{Date: slot.Date}
			counts[slot.Date] = day
		}
		day.TotalCount++
		if slot.Status == model.SlotAvailable {
			day.AvailableCount++
		}
	}

	out := make([]model.AvailabilityDay, 0, window)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DateLayout)
		if day, ok := counts[key]; ok {
			out = append(out, *day)
		} else {
			out = append(out, model.AvailabilityDay{Date: key})
		}
	}
	return out
}

// SlotsOn filters slots to those on the given canonical date, preserving the
// doctor's list order.
func SlotsOn(slots []model.Slot, date string) []model.Slot {
	out := make([]model.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out
}

// ListIndex resolves the idx-th slot on date back to its position in the
// doctor's full ordered slot list. Returns -1 when no such slot exists.
func ListIndex(slots []model.Slot, date string, idx int) int {
	if idx < 0 {
		return -1
	}
	n := 0
	for i, s := range slots {
		if s.Date != date {
			continue
		}
		if n == idx {
			return i
		}
		n++
	}
	return -1
}

// Bookable reports whether any day in the calendar has an available slot.
func Bookable(days []model.AvailabilityDay) bool {
	for _, d := range days {
		if d.AvailableCount > 0 {
			return true
		}
	}
	return false
}

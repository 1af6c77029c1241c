package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	return store.New(pool)
}

func testSlots() []model.Slot {
	return []model.Slot{
		{Date: "2030-01-10", Start: "09:00", End: "09:30", Status: model.SlotAvailable},
		{Date: "2030-01-10", Start: "09:30", End: "10:00", Status: model.SlotAvailable},
		{Date: "2030-01-11", Start: "10:00", End: "10:30", Status: model.SlotAvailable},
	}
}

func createDoctor(t *testing.T, st *store.Store, slots []model.Slot) string {
	t.Helper()
	id := uuid.New().String()
	err := st.CreateDoctor(context.Background(), &model.Doctor{
		ID:             id,
		FullName:       fmt.Sprintf("Dr Test %s", id[:8]),
		Specialization: "cardiology",
		ClinicAddress:  "1 Test Way",
		Slots:          slots,
	})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return id
}

func newAppointment(doctorID string, slotIndex int) *model.Appointment {
	return &model.Appointment{
		ID:          uuid.New().String(),
		DoctorID:    doctorID,
		PatientID:   uuid.New().String(),
		DoctorName:  "Dr Test",
		PatientName: "Pat Test",
		Time:        time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
		Duration:    30,
		Status:      model.AppointmentPending,
		SlotIndex:   slotIndex,
	}
}

func TestCreateAndGetDoctor(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	d, err := st.GetDoctor(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(d.Slots))
	}
	if d.Slots[0].Start != "09:00" || d.Slots[0].Status != model.SlotAvailable {
		t.Errorf("unexpected first slot: %+v", d.Slots[0])
	}
}

func TestGetDoctorNotFound(t *testing.T) {
	st := setup(t)
	_, err := st.GetDoctor(context.Background(), uuid.New().String())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceSlotsDedupes(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, nil)

	dup := []model.Slot{
		{Date: "2030-02-01", Start: "09:00", End: "09:30"},
		{Date: "2030-02-01", Start: "09:00", End: "09:30"},
		{Date: "2030-02-01", Start: "09:30", End: "10:00"},
	}
	if err := st.ReplaceSlots(context.Background(), id, dup); err != nil {
		t.Fatalf("replace: %v", err)
	}

	d, err := st.GetDoctor(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Slots) != 2 {
		t.Fatalf("expected duplicates dropped, got %d slots", len(d.Slots))
	}
	// empty status defaults to available on insert
	if d.Slots[0].Status != model.SlotAvailable {
		t.Errorf("expected available, got %s", d.Slots[0].Status)
	}
}

func TestReplaceSlotsUnknownDoctor(t *testing.T) {
	st := setup(t)
	err := st.ReplaceSlots(context.Background(), uuid.New().String(), testSlots())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBookSlot(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	appt := newAppointment(id, 0)
	if err := st.BookSlot(context.Background(), id, 0, "2030-01-10", appt); err != nil {
		t.Fatalf("book: %v", err)
	}

	d, _ := st.GetDoctor(context.Background(), id)
	if d.Slots[0].Status != model.SlotBooked {
		t.Errorf("slot not booked: %s", d.Slots[0].Status)
	}

	got, err := st.GetAppointment(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if got.Status != model.AppointmentPending {
		t.Errorf("status: got %s", got.Status)
	}
	if !got.Time.Equal(appt.Time) {
		t.Errorf("time: got %v, want %v", got.Time, appt.Time)
	}
}

func TestBookSlotTwiceFails(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	if err := st.BookSlot(context.Background(), id, 0, "2030-01-10", newAppointment(id, 0)); err != nil {
		t.Fatalf("first book: %v", err)
	}
	err := st.BookSlot(context.Background(), id, 0, "2030-01-10", newAppointment(id, 0))
	if !errors.Is(err, store.ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestBookSlotUnknownPosition(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	err := st.BookSlot(context.Background(), id, 99, "2030-01-10", newAppointment(id, 99))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	const n = 10
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- st.BookSlot(context.Background(), id, 0, "2030-01-10", newAppointment(id, 0))
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, store.ErrSlotUnavailable):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}
	t.Logf("concurrent: %d success, %d conflicts (out of %d)", successes, conflicts, n)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())
	appt := newAppointment(id, 0)
	if err := st.BookSlot(context.Background(), id, 0, "2030-01-10", appt); err != nil {
		t.Fatalf("book: %v", err)
	}

	err := st.UpdateAppointmentStatus(context.Background(), appt.ID, model.AppointmentPending, model.AppointmentApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, _ := st.GetAppointment(context.Background(), appt.ID)
	if got.Status != model.AppointmentApproved {
		t.Errorf("status: got %s", got.Status)
	}

	// stale transition loses
	err = st.UpdateAppointmentStatus(context.Background(), appt.ID, model.AppointmentPending, model.AppointmentDeclined)
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	err = st.UpdateAppointmentStatus(context.Background(), uuid.New().String(), model.AppointmentPending, model.AppointmentApproved)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTodaysAppointments(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	appt := newAppointment(id, 0)
	if err := st.BookSlot(context.Background(), id, 0, "2030-01-10", appt); err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := st.UpdateAppointmentStatus(context.Background(), appt.ID, model.AppointmentPending, model.AppointmentApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	day := time.Date(2030, 1, 10, 14, 0, 0, 0, time.UTC)
	appts, err := st.TodaysAppointments(context.Background(), id, day)
	if err != nil {
		t.Fatalf("todays: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}

	// day with nothing approved
	appts, err = st.TodaysAppointments(context.Background(), id, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("todays: %v", err)
	}
	if len(appts) != 0 {
		t.Errorf("expected empty day, got %d", len(appts))
	}
}

func TestListPatientAppointments(t *testing.T) {
	st := setup(t)
	id := createDoctor(t, st, testSlots())

	appt := newAppointment(id, 1)
	appt.Time = time.Date(2030, 1, 10, 9, 30, 0, 0, time.UTC)
	if err := st.BookSlot(context.Background(), id, 1, "2030-01-10", appt); err != nil {
		t.Fatalf("book: %v", err)
	}

	appts, err := st.ListPatientAppointments(context.Background(), appt.PatientID, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if appts[0].SlotIndex != 1 {
		t.Errorf("slot index: got %d", appts[0].SlotIndex)
	}
}

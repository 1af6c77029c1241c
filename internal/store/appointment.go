package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"booking-api/internal/model"
)

// BookSlot transitions the slot at position slotIndex to booked and records
// the appointment in the same transaction. The slot update is conditional on
// its current status, so a concurrent booking of the same slot loses cleanly
// instead of silently overwriting the winner.
func (s *Store) BookSlot(ctx context.Context, doctorID string, slotIndex int, date string, appt *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var slotID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM slots WHERE doctor_id = $1 AND position = $2`,
		doctorID, slotIndex,
	).Scan(&slotID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// compare-and-swap on status; the booked slot's date is pinned to the
	// selected date
	ct, err := tx.Exec(ctx,
		`UPDATE slots SET date = $2, status = $3
		 WHERE id = $1 AND status = $4`,
		slotID, date, model.SlotBooked, model.SlotAvailable,
	)
	if err != nil {
		// unique (doctor_id, date, start_time) caught a duplicate
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotUnavailable
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrSlotUnavailable
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO appointments
		   (id, doctor_id, patient_id, doctor_name, patient_name,
		    appointment_time, duration_minutes, status, slot_index)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		appt.ID, appt.DoctorID, appt.PatientID, appt.DoctorName, appt.PatientName,
		appt.Time, appt.Duration, appt.Status, appt.SlotIndex,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const appointmentCols = `id, doctor_id, patient_id, doctor_name, patient_name,
	appointment_time, duration_minutes, status, slot_index, created_at, updated_at`

func scanAppointment(row pgx.Row, a *model.Appointment) error {
	return row.Scan(
		&a.ID, &a.DoctorID, &a.PatientID, &a.DoctorName, &a.PatientName,
		&a.Time, &a.Duration, &a.Status, &a.SlotIndex, &a.CreatedAt, &a.UpdatedAt,
	)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id), a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListDoctorAppointments returns a doctor's appointments, optionally filtered
// by status, soonest first.
func (s *Store) ListDoctorAppointments(ctx context.Context, doctorID, status string) ([]model.Appointment, error) {
	q := `SELECT ` + appointmentCols + ` FROM appointments WHERE doctor_id = $1`
	args := []any{doctorID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY appointment_time`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return s.collectAppointments(rows)
}

// ListPatientAppointments returns a patient's most recent appointments.
func (s *Store) ListPatientAppointments(ctx context.Context, patientID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE patient_id = $1
		 ORDER BY appointment_time DESC
		 LIMIT $2`, patientID, limit,
	)
	if err != nil {
		return nil, err
	}
	return s.collectAppointments(rows)
}

// TodaysAppointments returns a doctor's approved appointments falling on the
// given calendar day.
func (s *Store) TodaysAppointments(ctx context.Context, doctorID string, day time.Time) ([]model.Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE doctor_id = $1
		   AND status = $2
		   AND appointment_time >= $3 AND appointment_time < $4
		 ORDER BY appointment_time`,
		doctorID, model.AppointmentApproved, start, end,
	)
	if err != nil {
		return nil, err
	}
	return s.collectAppointments(rows)
}

// UpdateAppointmentStatus moves an appointment from one status to another.
// The update is conditional on the current status so concurrent transitions
// cannot clobber each other.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id, from, to string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $2`, id, from, to,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

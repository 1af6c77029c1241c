package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"booking-api/internal/model"
)

func (s *Store) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO doctors (id, full_name, specialization, clinic_address)
		 VALUES ($1,$2,$3,$4)`,
		d.ID, d.FullName, d.Specialization, d.ClinicAddress,
	)
	if err != nil {
		return err
	}

	if err := insertSlots(ctx, tx, d.ID, model.DedupeSlots(d.Slots)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	d := &model.Doctor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, specialization, clinic_address, created_at, updated_at
		 FROM doctors WHERE id = $1`, id,
	).Scan(&d.ID, &d.FullName, &d.Specialization, &d.ClinicAddress, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d.Slots, err = s.loadSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, specialization, clinic_address, created_at, updated_at
		 FROM doctors ORDER BY full_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.FullName, &d.Specialization, &d.ClinicAddress,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Slots, err = s.loadSlots(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadSlots(ctx context.Context, doctorID string) ([]model.Slot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, start_time, end_time, status
		 FROM slots WHERE doctor_id = $1 ORDER BY position`, doctorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Slot
	for rows.Next() {
		var sl model.Slot
		if err := rows.Scan(&sl.Date, &sl.Start, &sl.End, &sl.Status); err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

// ReplaceSlots overwrites a doctor's entire slot list, matching the legacy
// full-array document form. Duplicate (date, start) entries keep the first
// occurrence.
func (s *Store) ReplaceSlots(ctx context.Context, doctorID string, slots []model.Slot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctors WHERE id = $1)`, doctorID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM slots WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	if err := insertSlots(ctx, tx, doctorID, model.DedupeSlots(slots)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE doctors SET updated_at = NOW() WHERE id = $1`, doctorID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertSlots(ctx context.Context, tx pgx.Tx, doctorID string, slots []model.Slot) error {
	for i, sl := range slots {
		status := sl.Status
		if status == "" {
			status = model.SlotAvailable
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO slots (id, doctor_id, position, date, start_time, end_time, status)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.New().String(), doctorID, i, sl.Date, sl.Start, sl.End, status,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/moshaver-app/counseling-api/internal/dto"
	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
)

// AppointmentRepository drives the appointment lifecycle. Every mutation that
// touches both an appointment and its slot runs inside one transaction with
// the slot row locked, so two concurrent bookers cannot both win.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository builds repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `id, student_id, counselor_id, slot_id, date, start_time, status, notes, created_at, updated_at`

// Book reserves the slot and inserts the appointment as one atomic unit.
// The slot row is locked before the reservation check; the loser of a race
// observes is_reserved = true and gets ErrSlotUnavailable. A missing slot is
// reported the same way. The appointment's counselor, date and start time are
// copied from the locked slot and its parent range.
func (r *AppointmentRepository) Book(ctx context.Context, appt *models.Appointment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var slot struct {
		ID          string    `db:"id"`
		StartTime   string    `db:"start_time"`
		Reserved    bool      `db:"is_reserved"`
		CounselorID string    `db:"counselor_id"`
		Date        time.Time `db:"date"`
	}
	const lockQuery = `SELECT s.id, s.start_time, s.is_reserved, r.counselor_id, r.date
FROM available_time_slots s
JOIN counselor_time_ranges r ON r.id = s.range_id
WHERE s.id = $1
FOR UPDATE OF s`
	if err = tx.GetContext(ctx, &slot, lockQuery, appt.SlotID); err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.ErrSlotUnavailable
			return err
		}
		return fmt.Errorf("lock slot: %w", err)
	}
	if slot.Reserved {
		err = appErrors.ErrSlotUnavailable
		return err
	}

	const reserveQuery = `UPDATE available_time_slots SET is_reserved = TRUE WHERE id = $1`
	if _, err = tx.ExecContext(ctx, reserveQuery, slot.ID); err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}

	now := time.Now().UTC()
	appt.CounselorID = slot.CounselorID
	appt.Date = slot.Date
	appt.StartTime = slot.StartTime
	appt.Status = models.AppointmentPending
	appt.CreatedAt = now
	appt.UpdatedAt = now

	const insertQuery = `INSERT INTO appointments (id, student_id, counselor_id, slot_id, date, start_time, status, notes, created_at, updated_at)
VALUES (:id, :student_id, :counselor_id, :slot_id, :date, :start_time, :status, :notes, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, appt); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// Approve moves a pending appointment to approved. The transition is guarded:
// only pending rows move, so re-approving or approving a cancelled appointment
// yields ErrConflict. A missing row yields sql.ErrNoRows.
func (r *AppointmentRepository) Approve(ctx context.Context, id string) (appt *models.Appointment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approve transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	approveQuery := `UPDATE appointments SET status = 'approved', updated_at = $2 WHERE id = $1 AND status = 'pending' RETURNING ` + appointmentColumns
	var updated models.Appointment
	if err = tx.GetContext(ctx, &updated, approveQuery, id, time.Now().UTC()); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("approve appointment: %w", err)
		}
		var status models.AppointmentStatus
		const statusQuery = `SELECT status FROM appointments WHERE id = $1`
		if serr := tx.GetContext(ctx, &status, statusQuery, id); serr != nil {
			if serr == sql.ErrNoRows {
				err = sql.ErrNoRows
				return nil, err
			}
			return nil, fmt.Errorf("check appointment status: %w", serr)
		}
		err = appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("appointment is %s, not pending", status))
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}
	return &updated, nil
}

// Cancel marks the appointment cancelled and releases its slot in one
// transaction. The row is kept for history. Cancelling twice yields
// ErrConflict; a missing row yields sql.ErrNoRows.
func (r *AppointmentRepository) Cancel(ctx context.Context, id string) (appt *models.Appointment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Appointment
	lockQuery := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock appointment: %w", err)
	}
	if current.Status == models.AppointmentCancelled {
		err = appErrors.Clone(appErrors.ErrConflict, "appointment is already cancelled")
		return nil, err
	}

	now := time.Now().UTC()
	const cancelQuery = `UPDATE appointments SET status = 'cancelled', updated_at = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, cancelQuery, id, now); err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	const releaseQuery = `UPDATE available_time_slots SET is_reserved = FALSE WHERE id = $1`
	if _, err = tx.ExecContext(ctx, releaseQuery, current.SlotID); err != nil {
		return nil, fmt.Errorf("release slot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}

	current.Status = models.AppointmentCancelled
	current.UpdatedAt = now
	return &current, nil
}

// FindByID returns a single appointment.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 LIMIT 1`
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &appt, nil
}

// ListByStatus returns a counselor's appointments in the given status joined
// with the booking student's name and the slot bounds.
func (r *AppointmentRepository) ListByStatus(ctx context.Context, counselorID string, status models.AppointmentStatus) ([]dto.AppointmentRow, error) {
	const query = `SELECT a.id AS appointment_id, a.student_id, u.first_name, u.last_name, a.date, a.start_time, sl.end_time, a.notes
FROM appointments a
JOIN students st ON st.id = a.student_id
JOIN users u ON u.id = st.user_id
JOIN available_time_slots sl ON sl.id = a.slot_id
WHERE a.counselor_id = $1 AND a.status = $2
ORDER BY a.date ASC, a.start_time ASC`
	var rows []dto.AppointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, counselorID, status); err != nil {
		return nil, fmt.Errorf("list appointments by status: %w", err)
	}
	return rows, nil
}

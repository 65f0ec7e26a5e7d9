package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/moshaver-app/counseling-api/internal/models"
	"github.com/moshaver-app/counseling-api/internal/schedule"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
)

// TimeSlotRepository manages counselor availability windows and their slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository builds repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const rangeColumns = `id, counselor_id, date, from_time, to_time, duration_minutes, created_at`

// CreateRangeWithSlots persists a range and its generated slots atomically.
// The overlap check and the insert run in one transaction: an advisory lock
// keyed by (counselor, date) serializes concurrent creations so neither of
// two overlapping ranges can slip past the check.
func (r *TimeSlotRepository) CreateRangeWithSlots(ctx context.Context, rng *models.TimeRange, slots []models.TimeSlot) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin range transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	lockKey := fmt.Sprintf("ranges:%s:%s", rng.CounselorID, rng.Date.Format("2006-01-02"))
	if _, err = tx.ExecContext(ctx, lockQuery, lockKey); err != nil {
		return fmt.Errorf("acquire range lock: %w", err)
	}

	const existingQuery = `SELECT from_time, to_time FROM counselor_time_ranges WHERE counselor_id = $1 AND date = $2`
	var existing []struct {
		FromTime string `db:"from_time"`
		ToTime   string `db:"to_time"`
	}
	if err = tx.SelectContext(ctx, &existing, existingQuery, rng.CounselorID, rng.Date); err != nil {
		return fmt.Errorf("list ranges for overlap check: %w", err)
	}

	newFrom, err := schedule.ParseClock(rng.FromTime)
	if err != nil {
		return fmt.Errorf("parse range start: %w", err)
	}
	newTo, err := schedule.ParseClock(rng.ToTime)
	if err != nil {
		return fmt.Errorf("parse range end: %w", err)
	}
	for _, other := range existing {
		otherFrom, perr := schedule.ParseClock(other.FromTime)
		if perr != nil {
			return fmt.Errorf("parse stored range start: %w", perr)
		}
		otherTo, perr := schedule.ParseClock(other.ToTime)
		if perr != nil {
			return fmt.Errorf("parse stored range end: %w", perr)
		}
		if schedule.Overlaps(newFrom, newTo, otherFrom, otherTo) {
			err = appErrors.ErrOverlap
			return err
		}
	}

	const insertRange = `INSERT INTO counselor_time_ranges (id, counselor_id, date, from_time, to_time, duration_minutes, created_at)
VALUES (:id, :counselor_id, :date, :from_time, :to_time, :duration_minutes, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertRange, rng); err != nil {
		return fmt.Errorf("insert time range: %w", err)
	}

	const insertSlot = `INSERT INTO available_time_slots (id, range_id, start_time, end_time, is_reserved)
VALUES (:id, :range_id, :start_time, :end_time, :is_reserved)`
	for i := range slots {
		if _, err = tx.NamedExecContext(ctx, insertSlot, &slots[i]); err != nil {
			return fmt.Errorf("insert time slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit time range: %w", err)
	}
	return nil
}

// ListRangesByCounselor returns a counselor's ranges ordered by date and start.
func (r *TimeSlotRepository) ListRangesByCounselor(ctx context.Context, counselorID string) ([]models.TimeRange, error) {
	query := `SELECT ` + rangeColumns + ` FROM counselor_time_ranges WHERE counselor_id = $1 ORDER BY date ASC, from_time ASC`
	var ranges []models.TimeRange
	if err := r.db.SelectContext(ctx, &ranges, query, counselorID); err != nil {
		return nil, fmt.Errorf("list time ranges: %w", err)
	}
	return ranges, nil
}

// FindRangeByID returns a single range.
func (r *TimeSlotRepository) FindRangeByID(ctx context.Context, id string) (*models.TimeRange, error) {
	query := `SELECT ` + rangeColumns + ` FROM counselor_time_ranges WHERE id = $1 LIMIT 1`
	var rng models.TimeRange
	if err := r.db.GetContext(ctx, &rng, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find time range: %w", err)
	}
	return &rng, nil
}

// ListSlotsByRange returns the slots of a range ordered by start time.
func (r *TimeSlotRepository) ListSlotsByRange(ctx context.Context, rangeID string) ([]models.TimeSlot, error) {
	const query = `SELECT id, range_id, start_time, end_time, is_reserved FROM available_time_slots WHERE range_id = $1 ORDER BY start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, rangeID); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// DeleteRange removes a range; the slots go with it via ON DELETE CASCADE.
// Returns sql.ErrNoRows when the range does not exist.
func (r *TimeSlotRepository) DeleteRange(ctx context.Context, id string) error {
	const query = `DELETE FROM counselor_time_ranges WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete time range: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete time range: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

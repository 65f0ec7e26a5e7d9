package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func sampleRange() *models.TimeRange {
	return &models.TimeRange{
		ID:              "range-1",
		CounselorID:     "counselor-1",
		Date:            time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
		FromTime:        "09:00",
		ToTime:          "11:00",
		DurationMinutes: 30,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestTimeSlotRepositoryCreateRangeWithSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rng := sampleRange()
	slots := []models.TimeSlot{
		{ID: "slot-1", RangeID: rng.ID, StartTime: "09:00", EndTime: "09:30"},
		{ID: "slot-2", RangeID: rng.ID, StartTime: "09:30", EndTime: "10:00"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("ranges:counselor-1:2025-04-12").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT from_time, to_time FROM counselor_time_ranges").
		WithArgs(rng.CounselorID, rng.Date).
		WillReturnRows(sqlmock.NewRows([]string{"from_time", "to_time"}).
			AddRow("07:00", "08:30"))
	mock.ExpectExec("INSERT INTO counselor_time_ranges").
		WithArgs(rng.ID, rng.CounselorID, rng.Date, rng.FromTime, rng.ToTime, rng.DurationMinutes, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO available_time_slots").
		WithArgs("slot-1", rng.ID, "09:00", "09:30", false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO available_time_slots").
		WithArgs("slot-2", rng.ID, "09:30", "10:00", false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateRangeWithSlots(context.Background(), rng, slots))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryCreateRangeOverlapRejected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rng := sampleRange()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("ranges:counselor-1:2025-04-12").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT from_time, to_time FROM counselor_time_ranges").
		WithArgs(rng.CounselorID, rng.Date).
		WillReturnRows(sqlmock.NewRows([]string{"from_time", "to_time"}).
			AddRow("10:30", "12:00"))
	mock.ExpectRollback()

	err := repo.CreateRangeWithSlots(context.Background(), rng, nil)
	assert.ErrorIs(t, err, appErrors.ErrOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryCreateRangeTouchingBoundaryAllowed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rng := sampleRange()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT from_time, to_time FROM counselor_time_ranges").
		WithArgs(rng.CounselorID, rng.Date).
		WillReturnRows(sqlmock.NewRows([]string{"from_time", "to_time"}).
			AddRow("11:00", "13:00"))
	mock.ExpectExec("INSERT INTO counselor_time_ranges").
		WithArgs(rng.ID, rng.CounselorID, rng.Date, rng.FromTime, rng.ToTime, rng.DurationMinutes, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateRangeWithSlots(context.Background(), rng, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryListSlotsByRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "range_id", "start_time", "end_time", "is_reserved"}).
		AddRow("slot-1", "range-1", "09:00", "09:30", false).
		AddRow("slot-2", "range-1", "09:30", "10:00", true)
	mock.ExpectQuery("SELECT id, range_id, start_time, end_time, is_reserved FROM available_time_slots").
		WithArgs("range-1").
		WillReturnRows(rows)

	slots, err := repo.ListSlotsByRange(context.Background(), "range-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[1].Reserved)
}

func TestTimeSlotRepositoryDeleteRangeNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectExec("DELETE FROM counselor_time_ranges").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteRange(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

package models

import "time"

// TimeRange is a counselor's declared availability window on a specific date.
// Times of day are stored as canonical zero-padded "HH:MM" strings so that
// lexicographic and chronological order agree. A range is immutable once its
// slots are generated; it can only be deleted, which cascades to the slots.
type TimeRange struct {
	ID              string    `db:"id" json:"id"`
	CounselorID     string    `db:"counselor_id" json:"counselor_id"`
	Date            time.Time `db:"date" json:"date"`
	FromTime        string    `db:"from_time" json:"from_time"`
	ToTime          string    `db:"to_time" json:"to_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// TimeSlot is an indivisible bookable unit of time within a TimeRange.
type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	RangeID   string `db:"range_id" json:"range_id"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Reserved  bool   `db:"is_reserved" json:"is_reserved"`
}

package dto

// CreateTimeRangeRequest is the payload for declaring an availability window.
// Date is a Gregorian "YYYY-MM-DD" string; times are "HH:MM".
type CreateTimeRangeRequest struct {
	Date            string `json:"date" validate:"required"`
	FromTime        string `json:"from_time" validate:"required"`
	ToTime          string `json:"to_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
}

// SlotItem is a bookable slot in API responses.
type SlotItem struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reserved  bool   `json:"is_reserved"`
}

// TimeRangeWithSlots is an availability window together with its slots.
// Date carries the stored Gregorian form, JalaliDate the display form.
type TimeRangeWithSlots struct {
	ID              string     `json:"id"`
	CounselorID     string     `json:"counselor_id"`
	Date            string     `json:"date"`
	JalaliDate      string     `json:"jalali_date"`
	FromTime        string     `json:"from_time"`
	ToTime          string     `json:"to_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Slots           []SlotItem `json:"slots"`
}

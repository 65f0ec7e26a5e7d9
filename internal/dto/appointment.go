package dto

import "time"

// BookAppointmentRequest is the payload for booking a free slot.
type BookAppointmentRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
	Notes  string `json:"notes"`
}

// AppointmentResponse mirrors a persisted appointment.
type AppointmentResponse struct {
	ID          string  `json:"id"`
	StudentID   string  `json:"student_id"`
	CounselorID string  `json:"counselor_id"`
	SlotID      string  `json:"slot_id"`
	Date        string  `json:"date"`
	JalaliDate  string  `json:"jalali_date"`
	StartTime   string  `json:"start_time"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
}

// AppointmentRow is the flattened database projection for counselor listings.
type AppointmentRow struct {
	AppointmentID string    `db:"appointment_id"`
	StudentID     string    `db:"student_id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Date          time.Time `db:"date"`
	StartTime     string    `db:"start_time"`
	EndTime       string    `db:"end_time"`
	Notes         *string   `db:"notes"`
}

// AppointmentItem is the counselor-facing listing entry. Date is rendered in
// the Jalali calendar at this boundary.
type AppointmentItem struct {
	AppointmentID string  `json:"appointment_id"`
	StudentID     string  `json:"student_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Notes         *string `json:"notes,omitempty"`
}

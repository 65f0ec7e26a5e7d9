package models

import "time"

// AppointmentStatus enumerates the appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentApproved  AppointmentStatus = "approved"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentApproved, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment is a student's booking of a counselor time slot. Date and
// StartTime are copied from the slot at booking time and never re-derived.
// Cancellation is a terminal status, not a row deletion, so history survives.
type Appointment struct {
	ID          string            `db:"id" json:"id"`
	StudentID   string            `db:"student_id" json:"student_id"`
	CounselorID string            `db:"counselor_id" json:"counselor_id"`
	SlotID      string            `db:"slot_id" json:"slot_id"`
	Date        time.Time         `db:"date" json:"date"`
	StartTime   string            `db:"start_time" json:"start_time"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Notes       *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

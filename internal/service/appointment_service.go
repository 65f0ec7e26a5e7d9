package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moshaver-app/counseling-api/internal/dto"
	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
	"github.com/moshaver-app/counseling-api/pkg/jalali"
)

type appointmentStore interface {
	Book(ctx context.Context, appt *models.Appointment) error
	Approve(ctx context.Context, id string) (*models.Appointment, error)
	Cancel(ctx context.Context, id string) (*models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByStatus(ctx context.Context, counselorID string, status models.AppointmentStatus) ([]dto.AppointmentRow, error)
}

type identityResolver interface {
	FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindStudentByID(ctx context.Context, id string) (*models.Student, error)
	FindCounselorByUserID(ctx context.Context, userID string) (*models.Counselor, error)
	FindCounselorByID(ctx context.Context, id string) (*models.Counselor, error)
}

type notifier interface {
	Dispatch(ctx context.Context, userID, message string)
}

// AppointmentService drives the booking lifecycle: pending on booking,
// approved by the counselor, cancelled as a terminal state. Slot reservation
// is coupled to these transitions inside the repository's transactions;
// notifications are dispatched only after the transaction has committed.
type AppointmentService struct {
	repo      appointmentStore
	identity  identityResolver
	notify    notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAppointmentService builds an AppointmentService with sane defaults.
func NewAppointmentService(repo appointmentStore, identity identityResolver, notify notifier, validate *validator.Validate, logger *zap.Logger) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repo: repo, identity: identity, notify: notify, validator: validate, logger: logger}
}

// Book reserves a free slot for the calling student. The counselor is told
// about the new pending appointment; that message can fail without affecting
// the committed booking.
func (s *AppointmentService) Book(ctx context.Context, req dto.BookAppointmentRequest, claims *models.JWTClaims) (*dto.AppointmentResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can book appointments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	student, err := s.identity.FindStudentByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	appt := &models.Appointment{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		SlotID:    req.SlotID,
	}
	if req.Notes != "" {
		appt.Notes = &req.Notes
	}

	if err := s.repo.Book(ctx, appt); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book appointment")
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("slot_id", appt.SlotID),
		zap.String("student_id", appt.StudentID),
	)

	counselor, err := s.identity.FindCounselorByID(ctx, appt.CounselorID)
	if err != nil {
		s.logger.Warn("booked appointment but could not resolve counselor for notification",
			zap.String("appointment_id", appt.ID),
			zap.Error(err),
		)
	} else {
		message := fmt.Sprintf("Student %s booked a session on %s at %s.",
			claims.FullName(), jalali.FormatDate(appt.Date), appt.StartTime)
		s.notify.Dispatch(ctx, counselor.UserID, message)
	}

	return appointmentResponse(appt), nil
}

// Approve confirms a pending appointment owned by the calling counselor. The
// slot stays reserved. Approving a non-pending appointment is rejected.
func (s *AppointmentService) Approve(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AppointmentResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleCounselor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only counselors can approve appointments")
	}

	counselor, err := s.identity.FindCounselorByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counselor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve counselor")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	if appt.CounselorID != counselor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another counselor")
	}

	approved, err := s.repo.Approve(ctx, id)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve appointment")
	}

	student, err := s.identity.FindStudentByID(ctx, approved.StudentID)
	if err != nil {
		s.logger.Warn("approved appointment but could not resolve student for notification",
			zap.String("appointment_id", approved.ID),
			zap.Error(err),
		)
	} else {
		message := fmt.Sprintf("Your session with counselor %s on %s at %s was approved.",
			claims.FullName(), jalali.FormatDate(approved.Date), approved.StartTime)
		s.notify.Dispatch(ctx, student.UserID, message)
	}

	return appointmentResponse(approved), nil
}

// Cancel terminates an appointment and frees its slot. The booking student,
// the owning counselor, and admins may cancel. No notification is sent.
func (s *AppointmentService) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AppointmentResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	if err := s.canCancel(ctx, appt, claims); err != nil {
		return nil, err
	}

	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel appointment")
	}

	s.logger.Info("appointment cancelled",
		zap.String("appointment_id", cancelled.ID),
		zap.String("slot_id", cancelled.SlotID),
	)
	return appointmentResponse(cancelled), nil
}

// ListByStatus returns the calling counselor's appointments in one status.
func (s *AppointmentService) ListByStatus(ctx context.Context, status models.AppointmentStatus, claims *models.JWTClaims) ([]dto.AppointmentItem, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleCounselor {
		return nil, appErrors.ErrForbidden
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown appointment status")
	}

	counselor, err := s.identity.FindCounselorByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counselor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve counselor")
	}

	rows, err := s.repo.ListByStatus(ctx, counselor.ID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}

	items := make([]dto.AppointmentItem, len(rows))
	for i, row := range rows {
		items[i] = dto.AppointmentItem{
			AppointmentID: row.AppointmentID,
			StudentID:     row.StudentID,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			Date:          jalali.FormatDate(row.Date),
			StartTime:     row.StartTime,
			EndTime:       row.EndTime,
			Notes:         row.Notes,
		}
	}
	return items, nil
}

func (s *AppointmentService) canCancel(ctx context.Context, appt *models.Appointment, claims *models.JWTClaims) error {
	switch claims.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCounselor:
		counselor, err := s.identity.FindCounselorByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "counselor profile not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve counselor")
		}
		if appt.CounselorID != counselor.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another counselor")
		}
		return nil
	case models.RoleStudent:
		student, err := s.identity.FindStudentByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
		}
		if appt.StudentID != student.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another student")
		}
		return nil
	default:
		return appErrors.ErrForbidden
	}
}

func appointmentResponse(appt *models.Appointment) *dto.AppointmentResponse {
	return &dto.AppointmentResponse{
		ID:          appt.ID,
		StudentID:   appt.StudentID,
		CounselorID: appt.CounselorID,
		SlotID:      appt.SlotID,
		Date:        appt.Date.Format(dateLayout),
		JalaliDate:  jalali.FormatDate(appt.Date),
		StartTime:   appt.StartTime,
		Status:      string(appt.Status),
		Notes:       appt.Notes,
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moshaver-app/counseling-api/internal/dto"
	"github.com/moshaver-app/counseling-api/internal/models"
	"github.com/moshaver-app/counseling-api/internal/schedule"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
	"github.com/moshaver-app/counseling-api/pkg/jalali"
)

const dateLayout = "2006-01-02"

type timeRangeStore interface {
	CreateRangeWithSlots(ctx context.Context, rng *models.TimeRange, slots []models.TimeSlot) error
	ListRangesByCounselor(ctx context.Context, counselorID string) ([]models.TimeRange, error)
	FindRangeByID(ctx context.Context, id string) (*models.TimeRange, error)
	ListSlotsByRange(ctx context.Context, rangeID string) ([]models.TimeSlot, error)
	DeleteRange(ctx context.Context, id string) error
}

type counselorResolver interface {
	FindCounselorByUserID(ctx context.Context, userID string) (*models.Counselor, error)
}

// TimeSlotService manages counselor availability: declaring windows, slicing
// them into bookable slots, and tearing them down.
type TimeSlotService struct {
	repo       timeRangeStore
	counselors counselorResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTimeSlotService builds a TimeSlotService with sane defaults.
func NewTimeSlotService(repo timeRangeStore, counselors counselorResolver, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, counselors: counselors, validator: validate, logger: logger}
}

// Create declares an availability window and materializes its slots. Only
// counselors may create windows, and only for themselves. The overlap guard
// runs inside the repository transaction.
func (s *TimeSlotService) Create(ctx context.Context, req dto.CreateTimeRangeRequest, claims *models.JWTClaims) (*dto.TimeRangeWithSlots, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleCounselor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only counselors can declare availability")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time range payload")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	fromTime, err := schedule.Canonicalize(req.FromTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from_time")
	}
	toTime, err := schedule.Canonicalize(req.ToTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to_time")
	}

	generated, err := schedule.Generate(fromTime, toTime, req.DurationMinutes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
	}

	counselor, err := s.counselors.FindCounselorByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counselor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve counselor")
	}

	rng := &models.TimeRange{
		ID:              uuid.NewString(),
		CounselorID:     counselor.ID,
		Date:            date,
		FromTime:        fromTime,
		ToTime:          toTime,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       time.Now().UTC(),
	}
	slots := make([]models.TimeSlot, len(generated))
	for i, slot := range generated {
		slots[i] = models.TimeSlot{
			ID:        uuid.NewString(),
			RangeID:   rng.ID,
			StartTime: slot.Start,
			EndTime:   slot.End,
			Reserved:  false,
		}
	}

	if err := s.repo.CreateRangeWithSlots(ctx, rng, slots); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time range")
	}

	s.logger.Info("time range created",
		zap.String("range_id", rng.ID),
		zap.String("counselor_id", counselor.ID),
		zap.Int("slots", len(slots)),
	)
	return rangeWithSlots(rng, slots), nil
}

// ListMine returns the calling counselor's windows with their slots.
func (s *TimeSlotService) ListMine(ctx context.Context, claims *models.JWTClaims) ([]dto.TimeRangeWithSlots, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleCounselor {
		return nil, appErrors.ErrForbidden
	}
	counselor, err := s.counselors.FindCounselorByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counselor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve counselor")
	}

	ranges, err := s.repo.ListRangesByCounselor(ctx, counselor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time ranges")
	}

	result := make([]dto.TimeRangeWithSlots, 0, len(ranges))
	for i := range ranges {
		slots, err := s.repo.ListSlotsByRange(ctx, ranges[i].ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
		}
		result = append(result, *rangeWithSlots(&ranges[i], slots))
	}
	return result, nil
}

// Get returns a single window with its slots. Any authenticated caller may
// look at a window, which is how students browse free slots.
func (s *TimeSlotService) Get(ctx context.Context, rangeID string, claims *models.JWTClaims) (*dto.TimeRangeWithSlots, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	rng, err := s.repo.FindRangeByID(ctx, rangeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time range not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time range")
	}
	slots, err := s.repo.ListSlotsByRange(ctx, rng.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	return rangeWithSlots(rng, slots), nil
}

// Delete removes a window and, through the cascade, its slots. Only the
// owning counselor or an admin may delete it.
func (s *TimeSlotService) Delete(ctx context.Context, rangeID string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}

	rng, err := s.repo.FindRangeByID(ctx, rangeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time range not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time range")
	}

	if claims.Role != models.RoleAdmin {
		if claims.Role != models.RoleCounselor {
			return appErrors.ErrForbidden
		}
		counselor, err := s.counselors.FindCounselorByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "counselor profile not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve counselor")
		}
		if rng.CounselorID != counselor.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "time range belongs to another counselor")
		}
	}

	if err := s.repo.DeleteRange(ctx, rangeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time range not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time range")
	}
	return nil
}

func rangeWithSlots(rng *models.TimeRange, slots []models.TimeSlot) *dto.TimeRangeWithSlots {
	items := make([]dto.SlotItem, len(slots))
	for i, slot := range slots {
		items[i] = dto.SlotItem{
			ID:        slot.ID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Reserved:  slot.Reserved,
		}
	}
	return &dto.TimeRangeWithSlots{
		ID:              rng.ID,
		CounselorID:     rng.CounselorID,
		Date:            rng.Date.Format(dateLayout),
		JalaliDate:      jalali.FormatDate(rng.Date),
		FromTime:        rng.FromTime,
		ToTime:          rng.ToTime,
		DurationMinutes: rng.DurationMinutes,
		Slots:           items,
	}
}

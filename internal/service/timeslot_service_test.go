package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshaver-app/counseling-api/internal/dto"
	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
)

type timeRangeRepoStub struct {
	ranges    map[string]*models.TimeRange
	slots     map[string][]models.TimeSlot
	createErr error
	deleted   []string
}

func newTimeRangeRepoStub() *timeRangeRepoStub {
	return &timeRangeRepoStub{
		ranges: make(map[string]*models.TimeRange),
		slots:  make(map[string][]models.TimeSlot),
	}
}

func (s *timeRangeRepoStub) CreateRangeWithSlots(ctx context.Context, rng *models.TimeRange, slots []models.TimeSlot) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.ranges[rng.ID] = rng
	s.slots[rng.ID] = slots
	return nil
}

func (s *timeRangeRepoStub) ListRangesByCounselor(ctx context.Context, counselorID string) ([]models.TimeRange, error) {
	var result []models.TimeRange
	for _, rng := range s.ranges {
		if rng.CounselorID == counselorID {
			result = append(result, *rng)
		}
	}
	return result, nil
}

func (s *timeRangeRepoStub) FindRangeByID(ctx context.Context, id string) (*models.TimeRange, error) {
	rng, ok := s.ranges[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rng, nil
}

func (s *timeRangeRepoStub) ListSlotsByRange(ctx context.Context, rangeID string) ([]models.TimeSlot, error) {
	return s.slots[rangeID], nil
}

func (s *timeRangeRepoStub) DeleteRange(ctx context.Context, id string) error {
	if _, ok := s.ranges[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.ranges, id)
	delete(s.slots, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type counselorResolverStub struct {
	counselors map[string]*models.Counselor
}

func (s *counselorResolverStub) FindCounselorByUserID(ctx context.Context, userID string) (*models.Counselor, error) {
	counselor, ok := s.counselors[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return counselor, nil
}

func counselorClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleCounselor, FirstName: "Reza", LastName: "Karimi"}
}

func newTimeSlotFixture() (*TimeSlotService, *timeRangeRepoStub) {
	repo := newTimeRangeRepoStub()
	resolver := &counselorResolverStub{counselors: map[string]*models.Counselor{
		"user-c1": {ID: "counselor-1", UserID: "user-c1"},
		"user-c2": {ID: "counselor-2", UserID: "user-c2"},
	}}
	return NewTimeSlotService(repo, resolver, nil, nil), repo
}

func TestTimeSlotServiceCreateGeneratesSlots(t *testing.T) {
	svc, repo := newTimeSlotFixture()

	req := dto.CreateTimeRangeRequest{
		Date:            "2025-04-12",
		FromTime:        "09:00",
		ToTime:          "11:00",
		DurationMinutes: 30,
	}
	res, err := svc.Create(context.Background(), req, counselorClaims("user-c1"))
	require.NoError(t, err)
	require.Len(t, res.Slots, 4)
	assert.Equal(t, "09:00", res.Slots[0].StartTime)
	assert.Equal(t, "09:30", res.Slots[0].EndTime)
	assert.Equal(t, "10:30", res.Slots[3].StartTime)
	assert.Equal(t, "11:00", res.Slots[3].EndTime)
	assert.Equal(t, "counselor-1", res.CounselorID)
	assert.NotEmpty(t, res.JalaliDate)
	assert.Len(t, repo.slots[res.ID], 4)
}

func TestTimeSlotServiceCreateDropsTrailingRemainder(t *testing.T) {
	svc, _ := newTimeSlotFixture()

	req := dto.CreateTimeRangeRequest{
		Date:            "2025-04-12",
		FromTime:        "09:00",
		ToTime:          "10:45",
		DurationMinutes: 30,
	}
	res, err := svc.Create(context.Background(), req, counselorClaims("user-c1"))
	require.NoError(t, err)
	require.Len(t, res.Slots, 3)
	assert.Equal(t, "10:30", res.Slots[2].EndTime)
}

func TestTimeSlotServiceCreateRejectsNonCounselor(t *testing.T) {
	svc, _ := newTimeSlotFixture()

	req := dto.CreateTimeRangeRequest{Date: "2025-04-12", FromTime: "09:00", ToTime: "11:00", DurationMinutes: 30}
	_, err := svc.Create(context.Background(), req, &models.JWTClaims{UserID: "user-s1", Role: models.RoleStudent})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestTimeSlotServiceCreateRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTimeSlotFixture()

	req := dto.CreateTimeRangeRequest{Date: "2025-04-12", FromTime: "11:00", ToTime: "09:00", DurationMinutes: 30}
	_, err := svc.Create(context.Background(), req, counselorClaims("user-c1"))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimeSlotServiceCreatePassesThroughOverlap(t *testing.T) {
	svc, repo := newTimeSlotFixture()
	repo.createErr = appErrors.ErrOverlap

	req := dto.CreateTimeRangeRequest{Date: "2025-04-12", FromTime: "09:00", ToTime: "11:00", DurationMinutes: 30}
	_, err := svc.Create(context.Background(), req, counselorClaims("user-c1"))
	assert.ErrorIs(t, err, appErrors.ErrOverlap)
}

func TestTimeSlotServiceDeleteOwnership(t *testing.T) {
	svc, repo := newTimeSlotFixture()
	repo.ranges["range-1"] = &models.TimeRange{
		ID:          "range-1",
		CounselorID: "counselor-1",
		Date:        time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
	}

	err := svc.Delete(context.Background(), "range-1", counselorClaims("user-c2"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.Delete(context.Background(), "range-1", counselorClaims("user-c1")))
	assert.Equal(t, []string{"range-1"}, repo.deleted)
}

func TestTimeSlotServiceDeleteMissingRange(t *testing.T) {
	svc, _ := newTimeSlotFixture()

	err := svc.Delete(context.Background(), "ghost", counselorClaims("user-c1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimeSlotServiceGetVisibleToStudents(t *testing.T) {
	svc, repo := newTimeSlotFixture()
	repo.ranges["range-1"] = &models.TimeRange{
		ID:          "range-1",
		CounselorID: "counselor-1",
		Date:        time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
		FromTime:    "09:00",
		ToTime:      "11:00",
	}
	repo.slots["range-1"] = []models.TimeSlot{
		{ID: "slot-1", RangeID: "range-1", StartTime: "09:00", EndTime: "09:30", Reserved: true},
	}

	res, err := svc.Get(context.Background(), "range-1", &models.JWTClaims{UserID: "user-s1", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	assert.True(t, res.Slots[0].Reserved)
}

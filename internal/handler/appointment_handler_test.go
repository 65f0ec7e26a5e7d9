package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshaver-app/counseling-api/internal/dto"
	"github.com/moshaver-app/counseling-api/internal/middleware"
	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
)

type appointmentServiceMock struct {
	bookResp   *dto.AppointmentResponse
	bookErr    error
	actionResp *dto.AppointmentResponse
	actionErr  error
	listResp   []dto.AppointmentItem
	listErr    error
	lastStatus models.AppointmentStatus
	lastID     string
}

func (m *appointmentServiceMock) Book(ctx context.Context, req dto.BookAppointmentRequest, claims *models.JWTClaims) (*dto.AppointmentResponse, error) {
	return m.bookResp, m.bookErr
}

func (m *appointmentServiceMock) Approve(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AppointmentResponse, error) {
	m.lastID = id
	return m.actionResp, m.actionErr
}

func (m *appointmentServiceMock) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AppointmentResponse, error) {
	m.lastID = id
	return m.actionResp, m.actionErr
}

func (m *appointmentServiceMock) ListByStatus(ctx context.Context, status models.AppointmentStatus, claims *models.JWTClaims) ([]dto.AppointmentItem, error) {
	m.lastStatus = status
	return m.listResp, m.listErr
}

func studentContext(w *httptest.ResponseRecorder) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-s1", Role: models.RoleStudent})
	return c
}

func TestAppointmentHandlerBook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &appointmentServiceMock{
		bookResp: &dto.AppointmentResponse{ID: "appt-1", Status: "pending"},
	}
	handler := NewAppointmentHandler(mockSvc)

	payload, _ := json.Marshal(dto.BookAppointmentRequest{SlotID: "slot-1"})
	w := httptest.NewRecorder()
	c := studentContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/appointments/book", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Book(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAppointmentHandlerBookSlotTaken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &appointmentServiceMock{bookErr: appErrors.ErrSlotUnavailable}
	handler := NewAppointmentHandler(mockSvc)

	payload, _ := json.Marshal(dto.BookAppointmentRequest{SlotID: "slot-1"})
	w := httptest.NewRecorder()
	c := studentContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/appointments/book", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Book(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAppointmentHandlerBookInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAppointmentHandler(&appointmentServiceMock{})

	w := httptest.NewRecorder()
	c := studentContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/appointments/book", bytes.NewBufferString(`{"slot_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Book(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppointmentHandlerApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &appointmentServiceMock{
		actionResp: &dto.AppointmentResponse{ID: "appt-1", Status: "approved"},
	}
	handler := NewAppointmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-c1", Role: models.RoleCounselor})
	req, _ := http.NewRequest(http.MethodPost, "/appointments/appt-1/approve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "appt-1", mockSvc.lastID)
}

func TestAppointmentHandlerCancelConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &appointmentServiceMock{
		actionErr: appErrors.Clone(appErrors.ErrConflict, "appointment is already cancelled"),
	}
	handler := NewAppointmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c := studentContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/appointments/appt-1/cancel", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}

	handler.Cancel(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAppointmentHandlerListPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &appointmentServiceMock{
		listResp: []dto.AppointmentItem{{AppointmentID: "appt-1"}},
	}
	handler := NewAppointmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-c1", Role: models.RoleCounselor})
	req, _ := http.NewRequest(http.MethodGet, "/appointments/pending", nil)
	c.Request = req

	handler.ListPending(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AppointmentPending, mockSvc.lastStatus)
}

func TestAppointmentHandlerListApproved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &appointmentServiceMock{}
	handler := NewAppointmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-c1", Role: models.RoleCounselor})
	req, _ := http.NewRequest(http.MethodGet, "/appointments/approved", nil)
	c.Request = req

	handler.ListApproved(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AppointmentApproved, mockSvc.lastStatus)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moshaver-app/counseling-api/internal/dto"
	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
	"github.com/moshaver-app/counseling-api/pkg/response"
)

type appointmentService interface {
	Book(ctx context.Context, req dto.BookAppointmentRequest, claims *models.JWTClaims) (*dto.AppointmentResponse, error)
	Approve(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AppointmentResponse, error)
	ListByStatus(ctx context.Context, status models.AppointmentStatus, claims *models.JWTClaims) ([]dto.AppointmentItem, error)
}

// AppointmentHandler wires HTTP endpoints to the appointment service.
type AppointmentHandler struct {
	service appointmentService
}

// NewAppointmentHandler creates a new handler.
func NewAppointmentHandler(svc appointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: svc}
}

// Book godoc
// @Summary Book an appointment
// @Description Reserve a free slot for the calling student
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BookAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/book [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	res, err := h.service.Book(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Approve godoc
// @Summary Approve an appointment
// @Description Confirm a pending appointment owned by the calling counselor
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id}/approve [post]
func (h *AppointmentHandler) Approve(c *gin.Context) {
	res, err := h.service.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Cancel godoc
// @Summary Cancel an appointment
// @Description Cancel an appointment and free its slot
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id}/cancel [delete]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	res, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ListPending godoc
// @Summary List pending appointments
// @Description List the calling counselor's appointments awaiting approval
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/pending [get]
func (h *AppointmentHandler) ListPending(c *gin.Context) {
	h.listByStatus(c, models.AppointmentPending)
}

// ListApproved godoc
// @Summary List approved appointments
// @Description List the calling counselor's confirmed appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/approved [get]
func (h *AppointmentHandler) ListApproved(c *gin.Context) {
	h.listByStatus(c, models.AppointmentApproved)
}

func (h *AppointmentHandler) listByStatus(c *gin.Context, status models.AppointmentStatus) {
	res, err := h.service.ListByStatus(c.Request.Context(), status, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

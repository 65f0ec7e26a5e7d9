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

type timeSlotService interface {
	Create(ctx context.Context, req dto.CreateTimeRangeRequest, claims *models.JWTClaims) (*dto.TimeRangeWithSlots, error)
	ListMine(ctx context.Context, claims *models.JWTClaims) ([]dto.TimeRangeWithSlots, error)
	Get(ctx context.Context, rangeID string, claims *models.JWTClaims) (*dto.TimeRangeWithSlots, error)
	Delete(ctx context.Context, rangeID string, claims *models.JWTClaims) error
}

// TimeSlotHandler wires HTTP endpoints to the time slot service.
type TimeSlotHandler struct {
	service timeSlotService
}

// NewTimeSlotHandler creates a new handler.
func NewTimeSlotHandler(svc timeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{service: svc}
}

// Create godoc
// @Summary Declare availability
// @Description Create an availability window and generate its bookable slots
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTimeRangeRequest true "Time range payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timeslots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req dto.CreateTimeRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time range payload"))
		return
	}

	res, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// ListMine godoc
// @Summary List own availability
// @Description List the calling counselor's windows with their slots
// @Tags TimeSlots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /timeslots/my [get]
func (h *TimeSlotHandler) ListMine(c *gin.Context) {
	res, err := h.service.ListMine(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Get godoc
// @Summary Get an availability window
// @Description Fetch one window with its slots and reservation state
// @Tags TimeSlots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Time range ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timeslots/range/{id} [get]
func (h *TimeSlotHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Delete godoc
// @Summary Delete an availability window
// @Description Remove a window and all of its slots
// @Tags TimeSlots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Time range ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timeslots/range/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moshaver-app/counseling-api/internal/models"
	"github.com/moshaver-app/counseling-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, claims *models.JWTClaims) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, claims *models.JWTClaims) (*models.Notification, error)
	Delete(ctx context.Context, id string, claims *models.JWTClaims) error
}

// NotificationHandler wires HTTP endpoints to the notification service.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Description List the caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// MarkRead godoc
// @Summary Mark notification read
// @Description Flip the read flag on one of the caller's notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	res, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Delete godoc
// @Summary Delete notification
// @Description Remove one of the caller's notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

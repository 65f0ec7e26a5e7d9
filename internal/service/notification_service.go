package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
	"github.com/moshaver-app/counseling-api/pkg/jobs"
)

const notificationJobType = "notification"

type notificationStore interface {
	Create(ctx context.Context, userID, message string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type realtimePublisher interface {
	Publish(ctx context.Context, userID, body string) error
}

type notificationDelivery struct {
	UserID  string
	Message string
}

// NotificationService persists notifications, pushes them in real time, and
// exposes the per-user notification API. Dispatch is asynchronous: callers
// hand off a message after their own transaction commits and never see a
// delivery failure.
type NotificationService struct {
	repo      notificationStore
	publisher realtimePublisher
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationService builds the service and its dispatch queue.
func NewNotificationService(repo notificationStore, publisher realtimePublisher, queueCfg jobs.QueueConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.deliver, queueCfg)
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Dispatch queues a notification for a user. Best effort: a full queue is
// logged and the message dropped, never surfaced to the caller.
func (s *NotificationService) Dispatch(ctx context.Context, userID, message string) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    notificationJobType,
		Payload: notificationDelivery{UserID: userID, Message: message},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("notification dropped",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.CountNotification("dropped")
		}
	}
}

// deliver writes the durable row and then publishes the realtime push. A
// failed insert is retried by the queue; a failed push is only logged since
// the durable copy already exists.
func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(notificationDelivery)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job", job.ID))
		return nil
	}

	if _, err := s.repo.Create(ctx, payload.UserID, payload.Message); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, payload.UserID, payload.Message); err != nil {
		s.logger.Warn("realtime push failed",
			zap.String("user_id", payload.UserID),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.CountNotification("push_failed")
		}
		return nil
	}

	if s.metrics != nil {
		s.metrics.CountNotification("delivered")
	}
	return nil
}

// List returns the caller's notifications.
func (s *NotificationService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Notification, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	notifications, err := s.repo.ListByUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flips the read flag on one of the caller's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, id string, claims *models.JWTClaims) (*models.Notification, error) {
	notification, err := s.owned(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	notification.Read = true
	return notification, nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, id string, claims *models.JWTClaims) error {
	if _, err := s.owned(ctx, id, claims); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

func (s *NotificationService) owned(ctx context.Context, id string, claims *models.JWTClaims) (*models.Notification, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	return notification, nil
}

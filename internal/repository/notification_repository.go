package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moshaver-app/counseling-api/internal/models"
)

// NotificationRepository stores durable per-user notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts an unread notification.
func (r *NotificationRepository) Create(ctx context.Context, userID, message string) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	const query = `INSERT INTO notifications (id, user_id, message, read, created_at)
VALUES (:id, :user_id, :message, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return notification, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	const query = `SELECT id, user_id, message, read, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// FindByID returns a single notification.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, user_id, message, read, created_at FROM notifications WHERE id = $1 LIMIT 1`
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &notification, nil
}

// MarkRead flips the read flag. Returns sql.ErrNoRows when absent.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a notification. Returns sql.ErrNoRows when absent.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notifications WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

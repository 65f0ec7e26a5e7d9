package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshaver-app/counseling-api/internal/models"
	appErrors "github.com/moshaver-app/counseling-api/pkg/errors"
	"github.com/moshaver-app/counseling-api/pkg/jobs"
)

type notificationStoreStub struct {
	mu    sync.Mutex
	items map[string]*models.Notification
}

func newNotificationStoreStub() *notificationStoreStub {
	return &notificationStoreStub{items: make(map[string]*models.Notification)}
}

func (s *notificationStoreStub) Create(ctx context.Context, userID, message string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.items[notification.ID] = notification
	return notification, nil
}

func (s *notificationStoreStub) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Notification
	for _, n := range s.items {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (s *notificationStoreStub) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *n
	return &clone, nil
}

func (s *notificationStoreStub) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	n.Read = true
	return nil
}

func (s *notificationStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *notificationStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type publisherStub struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (s *publisherStub) Publish(ctx context.Context, userID, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, userID)
	return nil
}

func (s *publisherStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func newNotificationFixture(t *testing.T) (*NotificationService, *notificationStoreStub, *publisherStub) {
	t.Helper()
	store := newNotificationStoreStub()
	publisher := &publisherStub{}
	svc := NewNotificationService(store, publisher, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 8,
	}, nil, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc, store, publisher
}

func TestNotificationServiceDispatchDelivers(t *testing.T) {
	svc, store, publisher := newNotificationFixture(t)

	svc.Dispatch(context.Background(), "user-1", "your session was approved")

	require.Eventually(t, func() bool {
		return store.count() == 1 && publisher.count() == 1
	}, time.Second, 10*time.Millisecond)

	notifications, err := svc.List(context.Background(), &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "your session was approved", notifications[0].Message)
}

func TestNotificationServicePushFailureKeepsRow(t *testing.T) {
	svc, store, publisher := newNotificationFixture(t)
	publisher.err = errors.New("redis down")

	svc.Dispatch(context.Background(), "user-1", "hello")

	require.Eventually(t, func() bool {
		return store.count() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, publisher.count())
}

func TestNotificationServiceMarkReadOwnership(t *testing.T) {
	svc, store, _ := newNotificationFixture(t)

	created, err := store.Create(context.Background(), "user-1", "hello")
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), created.ID, &models.JWTClaims{UserID: "user-2", Role: models.RoleStudent})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	updated, err := svc.MarkRead(context.Background(), created.ID, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.True(t, updated.Read)

	// Admins can manage any notification.
	require.NoError(t, svc.Delete(context.Background(), created.ID, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}))
	assert.Zero(t, store.count())
}

func TestNotificationServiceDeleteMissing(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)

	err := svc.Delete(context.Background(), "ghost", &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

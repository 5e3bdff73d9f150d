package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"farrier-backend/internal/cache"
	"farrier-backend/internal/models"
	"farrier-backend/internal/repositories"
	"farrier-backend/internal/ws"
)

const cacheCountTTL = 5 * time.Minute

// notifier is the send-side surface other services depend on;
// NotificationService is the production implementation.
type notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	repo *repositories.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repositories.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Notify persists a notification and pushes it to the recipient's open
// sockets. The push replaces the old fixed-interval count polling.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	cache.InvalidateNotificationCount(ctx, n.UserID)

	if s.hub != nil {
		s.hub.Push(n.UserID, ws.Event{Type: "notification", Payload: n})
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 25 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UnreadCount serves from Redis when possible; the database stays the source
// of truth.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	key := cache.UnreadCountKey(userID)
	if data, ok := cache.GetCached(ctx, key); ok {
		if count, err := strconv.Atoi(string(data)); err == nil {
			return count, nil
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	cache.SetCached(ctx, key, []byte(strconv.Itoa(count)), cacheCountTTL)
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	cache.InvalidateNotificationCount(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	cache.InvalidateNotificationCount(ctx, userID)
	return nil
}

// Delete soft-deletes; the row is flagged, never removed
func (s *NotificationService) Delete(ctx context.Context, id, userID int) error {
	if err := s.repo.SoftDelete(ctx, id, userID); err != nil {
		return err
	}
	cache.InvalidateNotificationCount(ctx, userID)
	return nil
}

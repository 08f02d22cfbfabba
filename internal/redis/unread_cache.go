package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

const unreadCountTTL = 5 * time.Minute

// CachedNotificationStore decorates a domain.NotificationStore with a
// Redis-backed read-through cache for the unread counter. Every mutation
// invalidates the counter rather than updating it in place, so the cache can
// never drift from the durable rows. Redis failures fall back to the
// underlying store.
type CachedNotificationStore struct {
	store  domain.NotificationStore
	client *Client

	// fillGroup collapses concurrent cache-miss fills for the same user.
	fillGroup singleflight.Group
}

var _ domain.NotificationStore = (*CachedNotificationStore)(nil)

// NewCachedNotificationStore wraps store with the unread-count cache.
func NewCachedNotificationStore(store domain.NotificationStore, client *Client) *CachedNotificationStore {
	return &CachedNotificationStore{store: store, client: client}
}

func unreadCountKey(userID int64) string {
	return fmt.Sprintf("unread_count:%d", userID)
}

// Create persists the notification and invalidates the target user's counter.
func (s *CachedNotificationStore) Create(ctx context.Context, userID int64, message string, answerID int64) (*domain.Notification, error) {
	notification, err := s.store.Create(ctx, userID, message, answerID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return notification, nil
}

// ListByUser passes through to the underlying store.
func (s *CachedNotificationStore) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.store.ListByUser(ctx, userID)
}

// CountUnread serves the counter from Redis when present, otherwise reads the
// store and populates the cache with a short TTL.
func (s *CachedNotificationStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	key := unreadCountKey(userID)

	cached, err := s.client.Underlying().Get(ctx, key).Result()
	switch {
	case err == nil:
		count, parseErr := strconv.Atoi(cached)
		if parseErr == nil {
			metrics.UnreadCacheHits.WithLabelValues("hit").Inc()
			return count, nil
		}
		// Unparseable value: treat as a miss and repair below.
		s.invalidate(ctx, userID)
	case errors.Is(err, redis.Nil):
		metrics.UnreadCacheHits.WithLabelValues("miss").Inc()
	default:
		metrics.UnreadCacheHits.WithLabelValues("error").Inc()
		slog.Warn("Unread count cache read failed, falling back to store", "user_id", userID, "error", err)
	}

	result, err, _ := s.fillGroup.Do(key, func() (any, error) {
		count, err := s.store.CountUnread(ctx, userID)
		if err != nil {
			return 0, err
		}
		if setErr := s.client.Underlying().Set(ctx, key, count, unreadCountTTL).Err(); setErr != nil {
			slog.Warn("Unread count cache write failed", "user_id", userID, "error", setErr)
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// MarkRead updates the row and invalidates the counter.
func (s *CachedNotificationStore) MarkRead(ctx context.Context, notificationID, userID int64) (*domain.Notification, error) {
	notification, err := s.store.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return notification, nil
}

func (s *CachedNotificationStore) invalidate(ctx context.Context, userID int64) {
	if err := s.client.Underlying().Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		slog.Warn("Unread count cache invalidation failed", "user_id", userID, "error", err)
	}
}

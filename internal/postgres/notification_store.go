package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

// notificationColumns must match the Scan order in scanNotification.
const notificationColumns = `id, user_id, message, answer_id, is_read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.AnswerID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// NotificationStore implements domain.NotificationStore backed by PostgreSQL.
type NotificationStore struct {
	db *DB
}

func NewNotificationStore(db *DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, userID int64, message string, answerID int64) (*domain.Notification, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	n, err := scanNotification(s.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, message, answer_id, is_read, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING `+notificationColumns,
		userID, message, answerID))
	if err != nil {
		return nil, mapErr("create notification", err)
	}

	metrics.NotificationsPersistedTotal.Inc()
	return n, nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapErr("list notifications", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, mapErr("list notifications: scan", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	var count int
	err := s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, mapErr("count unread notifications", err)
	}
	return count, nil
}

// MarkRead flips is_read only when the notification belongs to userID;
// a foreign or missing id reports not found.
func (s *NotificationStore) MarkRead(ctx context.Context, notificationID, userID int64) (*domain.Notification, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	n, err := scanNotification(s.db.Pool.QueryRow(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		notificationID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, mapErr("mark notification read", err)
	}
	return n, nil
}

// Package notify bridges engagement events into durable notification records
// and real-time fan-out.
package notify

import (
	"context"
	"log/slog"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

// Dispatcher implements domain.Notifier. It writes the notification row first
// and only then publishes it to the recipient's personal room. The durable row
// is the source of truth: if the write fails nothing is published, and if
// publishing reaches no live session the row still waits in the recipient's
// notification list.
type Dispatcher struct {
	store     domain.NotificationStore
	publisher domain.Publisher
}

var _ domain.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. publisher may be nil, in which case
// notifications are persisted without real-time delivery.
func NewDispatcher(store domain.NotificationStore, publisher domain.Publisher) *Dispatcher {
	return &Dispatcher{store: store, publisher: publisher}
}

// Notify persists a notification for userID and fans it out to their room.
func (d *Dispatcher) Notify(ctx context.Context, userID int64, message string, answerID int64) error {
	notification, err := d.store.Create(ctx, userID, message, answerID)
	if err != nil {
		metrics.NotificationsDroppedTotal.Inc()
		return err
	}

	if d.publisher == nil {
		return nil
	}

	d.publisher.Publish(domain.UserRoom(userID), domain.Event{
		Name:    domain.NotificationEvent(userID),
		Payload: notification,
	})

	slog.Debug("Notification dispatched",
		"user_id", userID,
		"notification_id", notification.ID,
	)
	return nil
}

package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// StoreSink persists each notice as a Notification row for the user.
type StoreSink struct {
	notifications repository.NotificationQueries
}

// NewStoreSink constructs a StoreSink writing through q.
func NewStoreSink(q repository.NotificationQueries) *StoreSink {
	return &StoreSink{notifications: q}
}

// Name identifies the sink in logs and metrics.
func (s *StoreSink) Name() string { return "store" }

// Deliver creates an unread Notification for the notice's user.
func (s *StoreSink) Deliver(ctx context.Context, n model.Notice) error {
	return s.notifications.CreateNotification(ctx, &model.Notification{
		ID:        uuid.NewString(),
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.OccurredAt,
	})
}

package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

const notificationColumns = `id, user_id, title, message, is_read, created_at`

// CreateNotification inserts a notification.
func (q *queries) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Title, n.Message, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications newest first.
func (q *queries) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags one notification as read and returns it.
func (q *queries) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := q.db.QueryRow(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 RETURNING `+notificationColumns,
		id,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, notFound(err, "notification")
	}
	return &n, nil
}

// MarkAllNotificationsRead flags every unread notification of the user.
func (q *queries) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteNotification removes a notification.
func (q *queries) DeleteNotification(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return expectOne(tag, "notification")
}

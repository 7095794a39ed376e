package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

const notificationColumns = `id, receiver_id, type, message, read, created_at`

type NotificationRepository struct {
	q dbtx
}

func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	n.ID = newID()
	n.Read = false
	n.CreatedAt = now()

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, 0, ?)
	`, n.ID, n.ReceiverID, n.Type, n.Message, toUnix(n.CreatedAt))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListRecent: LIMIT -1 в SQLite — без ограничения.
func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limitArg(limit))
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (r *NotificationRepository) ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE receiver_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, receiverID, limitArg(limit))
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string) (domain.Notification, error) {
	n, err := scanNotification(r.q.QueryRowContext(ctx, `
		UPDATE notifications SET read = 1
		WHERE id = ?
		RETURNING `+notificationColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotificationNotFound
		}
		return domain.Notification{}, err
	}
	return n, nil
}

func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n         domain.Notification
		createdAt int64
	)
	if err := s.Scan(&n.ID, &n.ReceiverID, &n.Type, &n.Message, &n.Read, &createdAt); err != nil {
		return domain.Notification{}, err
	}
	n.CreatedAt = fromUnix(createdAt)
	return n, nil
}

func collectNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	defer rows.Close()

	out := make([]domain.Notification, 0, 16)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

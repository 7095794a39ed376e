package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct {
	q querier
}

func NewNotificationRepository(q querier) *NotificationRepository {
	return &NotificationRepository{q: q}
}

func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	out, err := scanNotification(r.q.QueryRow(ctx, queryCreateNotification,
		newID(), n.ReceiverID, n.Type, n.Message))
	if err != nil {
		return domain.Notification{}, mapPgError(err)
	}
	return out, nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := r.q.Query(ctx, queryRecentNotifications, limitArg(limit))
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (r *NotificationRepository) ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error) {
	rows, err := r.q.Query(ctx, queryNotificationsForReceiver, receiverID, limitArg(limit))
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string) (domain.Notification, error) {
	n, err := scanNotification(r.q.QueryRow(ctx, queryMarkNotificationRead, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotificationNotFound
		}
		return domain.Notification{}, err
	}
	return n, nil
}

// limitArg: <= 0 превращается в NULL, т.е. LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func scanNotification(row pgx.Row) (domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.ReceiverID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	return n, err
}

func collectNotifications(rows pgx.Rows) ([]domain.Notification, error) {
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

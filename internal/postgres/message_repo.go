package postgres

import (
	"context"
	"fmt"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/pagination"

	"github.com/jackc/pgx/v5"
)

type MessageRepository struct {
	q querier
}

func NewMessageRepository(q querier) *MessageRepository {
	return &MessageRepository{q: q}
}

func (r *MessageRepository) Append(ctx context.Context, m domain.Message) (domain.Message, error) {
	row := r.q.QueryRow(ctx, queryAppendMessage,
		newID(), m.SenderID.String(), m.ReceiverID.String(), m.RoomID, m.Text)

	out, err := scanMessage(row)
	if err != nil {
		return domain.Message{}, mapPgError(err)
	}
	return out, nil
}

func (r *MessageRepository) History(ctx context.Context, roomID string) ([]domain.Message, error) {
	rows, err := r.q.Query(ctx, queryHistory, roomID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// HistoryPage: страница истории по возрастанию, курсор указывает на последний
// полученный элемент.
func (r *MessageRepository) HistoryPage(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	limit = pagination.ClampLimit(limit)
	cur, err := pagination.Decode(after)
	if err != nil {
		return nil, "", err
	}

	var createdAt, id any
	if cur != nil {
		createdAt, id = cur.CreatedAt, cur.ID
	}
	rows, err := r.q.Query(ctx, queryHistoryPage, roomID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	out, err := collectMessages(rows)
	if err != nil {
		return nil, "", err
	}

	var next string
	if n := len(out); n > 0 {
		next = pagination.Next(n, limit, out[n-1].CreatedAt, out[n-1].ID)
	}
	return out, next, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, roomID, receiverID string) (int64, error) {
	tag, err := r.q.Exec(ctx, queryMarkMessagesRead, roomID, receiverID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MessageRepository) UnreadCount(ctx context.Context, receiverID string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, queryUnreadCount, receiverID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanMessage(row pgx.Row) (domain.Message, error) {
	var (
		m                domain.Message
		sender, receiver string
	)
	if err := row.Scan(&m.ID, &sender, &receiver, &m.RoomID, &m.Text, &m.Read, &m.CreatedAt); err != nil {
		return domain.Message{}, err
	}
	var err error
	if m.SenderID, err = domain.ParseParty(sender); err != nil {
		return domain.Message{}, fmt.Errorf("message %s sender: %w", m.ID, err)
	}
	if m.ReceiverID, err = domain.ParseParty(receiver); err != nil {
		return domain.Message{}, fmt.Errorf("message %s receiver: %w", m.ID, err)
	}
	return m, nil
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	defer rows.Close()

	out := make([]domain.Message, 0, 16)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/pagination"
)

const messageColumns = `id, sender_id, receiver_id, room_id, text, read, created_at`

type MessageRepository struct {
	q dbtx
}

func (r *MessageRepository) Append(ctx context.Context, m domain.Message) (domain.Message, error) {
	m.ID = newID()
	m.Read = false
	m.CreatedAt = now()

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, m.ID, m.SenderID.String(), m.ReceiverID.String(), m.RoomID, m.Text, toUnix(m.CreatedAt))
	if err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (r *MessageRepository) History(ctx context.Context, roomID string) ([]domain.Message, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at ASC, id ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *MessageRepository) HistoryPage(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	limit = pagination.ClampLimit(limit)
	cur, err := pagination.Decode(after)
	if err != nil {
		return nil, "", err
	}

	var rows *sql.Rows
	if cur == nil {
		rows, err = r.q.QueryContext(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE room_id = ?
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		`, roomID, limit)
	} else {
		at := toUnix(cur.CreatedAt)
		rows, err = r.q.QueryContext(ctx, `
			SELECT `+messageColumns+`
			FROM messages
			WHERE room_id = ?
			  AND (created_at > ? OR (created_at = ? AND id > ?))
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		`, roomID, at, at, cur.ID, limit)
	}
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
	res, err := r.q.ExecContext(ctx, `
		UPDATE messages SET read = 1
		WHERE room_id = ? AND receiver_id = ? AND read = 0
	`, roomID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MessageRepository) UnreadCount(ctx context.Context, receiverID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND read = 0
	`, receiverID).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (domain.Message, error) {
	var (
		m                domain.Message
		sender, receiver string
		createdAt        int64
	)
	if err := s.Scan(&m.ID, &sender, &receiver, &m.RoomID, &m.Text, &m.Read, &createdAt); err != nil {
		return domain.Message{}, err
	}
	m.CreatedAt = fromUnix(createdAt)

	var err error
	if m.SenderID, err = domain.ParseParty(sender); err != nil {
		return domain.Message{}, fmt.Errorf("message %s sender: %w", m.ID, err)
	}
	if m.ReceiverID, err = domain.ParseParty(receiver); err != nil {
		return domain.Message{}, fmt.Errorf("message %s receiver: %w", m.ID, err)
	}
	return m, nil
}

func collectMessages(rows *sql.Rows) ([]domain.Message, error) {
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

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

// UpsertForMessage: чтение и запись в одной транзакции; при единственном
// соединении параллельные вызовы выполняются строго по очереди.
func (r *ConversationRepository) UpsertForMessage(ctx context.Context, roomID string, participants []string, lastMessage string) (domain.Conversation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Conversation{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	c, err := scanConversation(tx.QueryRowContext(ctx, `
		SELECT id, room_id, participants, last_message, created_at, updated_at
		FROM conversations WHERE room_id = ?
	`, roomID))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		c = domain.Conversation{ID: newID(), RoomID: roomID, CreatedAt: ts}
		c.AddParticipants(participants...)
		c.LastMessage = lastMessage
		c.UpdatedAt = ts

		raw, err := json.Marshal(c.Participants)
		if err != nil {
			return domain.Conversation{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conversations (id, room_id, participants, last_message, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, c.RoomID, string(raw), c.LastMessage, toUnix(c.CreatedAt), toUnix(c.UpdatedAt)); err != nil {
			return domain.Conversation{}, fmt.Errorf("insert conversation: %w", err)
		}
	case err != nil:
		return domain.Conversation{}, err
	default:
		c.AddParticipants(participants...)
		c.LastMessage = lastMessage
		c.UpdatedAt = ts

		raw, err := json.Marshal(c.Participants)
		if err != nil {
			return domain.Conversation{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE conversations SET participants = ?, last_message = ?, updated_at = ?
			WHERE id = ?
		`, string(raw), c.LastMessage, toUnix(c.UpdatedAt), c.ID); err != nil {
			return domain.Conversation{}, fmt.Errorf("update conversation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.room_id, c.participants, c.last_message, c.created_at, c.updated_at
		FROM conversations c
		WHERE EXISTS (SELECT 1 FROM json_each(c.participants) p WHERE p.value = ?)
		ORDER BY c.updated_at DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConversation(s scanner) (domain.Conversation, error) {
	var (
		c                    domain.Conversation
		raw                  string
		createdAt, updatedAt int64
	)
	if err := s.Scan(&c.ID, &c.RoomID, &raw, &c.LastMessage, &createdAt, &updatedAt); err != nil {
		return domain.Conversation{}, err
	}
	if err := json.Unmarshal([]byte(raw), &c.Participants); err != nil {
		return domain.Conversation{}, fmt.Errorf("conversation %s participants: %w", c.ID, err)
	}
	c.CreatedAt = fromUnix(createdAt)
	c.UpdatedAt = fromUnix(updatedAt)
	return c, nil
}

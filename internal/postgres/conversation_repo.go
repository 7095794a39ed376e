package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type ConversationRepository struct {
	q querier
}

func NewConversationRepository(q querier) *ConversationRepository {
	return &ConversationRepository{q: q}
}

func (r *ConversationRepository) UpsertForMessage(ctx context.Context, roomID string, participants []string, lastMessage string) (domain.Conversation, error) {
	row := r.q.QueryRow(ctx, queryUpsertConversation, newID(), roomID, participants, lastMessage)

	c, err := scanConversation(row)
	if err != nil {
		return domain.Conversation{}, mapPgError(err)
	}
	return c, nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := r.q.Query(ctx, queryConversationsForUser, userID)
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

func scanConversation(row pgx.Row) (domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(&c.ID, &c.RoomID, &c.Participants, &c.LastMessage, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type ConversationService struct {
	conversations ConversationRepository
	identities    IdentityDirectory
}

func NewConversationService(conversations ConversationRepository, identities IdentityDirectory) *ConversationService {
	return &ConversationService{conversations: conversations, identities: identities}
}

// ListForUser возвращает переписки пользователя (свежие первыми) с разрешёнными
// участниками: сначала users, потом employees. Неразрешённые участники выбрасываются.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]domain.ConversationView, error) {
	if userID == "" {
		return nil, domain.ErrMissingSender
	}
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("conversations.ListForUser: %w", err)
	}

	cache := make(map[string]*domain.Identity)
	out := make([]domain.ConversationView, 0, len(convs))
	for _, c := range convs {
		view := domain.ConversationView{
			ID:           c.ID,
			RoomID:       c.RoomID,
			Participants: make([]domain.Identity, 0, len(c.Participants)),
			LastMessage:  c.LastMessage,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		}
		for _, pid := range c.Participants {
			ident, ok := cache[pid]
			if !ok {
				ident, err = s.resolve(ctx, pid)
				if err != nil {
					return nil, err
				}
				cache[pid] = ident
			}
			if ident != nil {
				view.Participants = append(view.Participants, *ident)
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// resolve: nil без ошибки — участник не найден ни в одном справочнике.
func (s *ConversationService) resolve(ctx context.Context, id string) (*domain.Identity, error) {
	party, err := domain.ParseParty(id)
	if err != nil {
		return nil, nil
	}
	if party.IsBot() {
		bot := domain.BotIdentity
		return &bot, nil
	}

	ident, err := s.identities.FindUser(ctx, id)
	if err == nil {
		return &ident, nil
	}
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("identities.FindUser: %w", err)
	}

	ident, err = s.identities.FindEmployee(ctx, id)
	if err == nil {
		return &ident, nil
	}
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("identities.FindEmployee: %w", err)
	}
	return nil, nil
}

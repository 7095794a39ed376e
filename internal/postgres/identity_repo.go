package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type IdentityRepository struct {
	q querier
}

func NewIdentityRepository(q querier) *IdentityRepository {
	return &IdentityRepository{q: q}
}

func (r *IdentityRepository) FindUser(ctx context.Context, id string) (domain.Identity, error) {
	return r.find(ctx, queryFindUser, id, domain.IdentityUser)
}

func (r *IdentityRepository) FindEmployee(ctx context.Context, id string) (domain.Identity, error) {
	return r.find(ctx, queryFindEmployee, id, domain.IdentityEmployee)
}

func (r *IdentityRepository) find(ctx context.Context, sql, id string, kind domain.IdentityKind) (domain.Identity, error) {
	ident := domain.Identity{Kind: kind}
	if err := r.q.QueryRow(ctx, sql, id).Scan(&ident.ID, &ident.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, domain.ErrIdentityNotFound
		}
		return domain.Identity{}, err
	}
	return ident, nil
}

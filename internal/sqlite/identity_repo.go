package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type IdentityRepository struct {
	q dbtx
}

func (r *IdentityRepository) FindUser(ctx context.Context, id string) (domain.Identity, error) {
	return r.find(ctx, `SELECT id, name FROM users WHERE id = ?`, id, domain.IdentityUser)
}

func (r *IdentityRepository) FindEmployee(ctx context.Context, id string) (domain.Identity, error) {
	return r.find(ctx, `SELECT id, name FROM employees WHERE id = ?`, id, domain.IdentityEmployee)
}

func (r *IdentityRepository) find(ctx context.Context, query, id string, kind domain.IdentityKind) (domain.Identity, error) {
	ident := domain.Identity{Kind: kind}
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&ident.ID, &ident.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, domain.ErrIdentityNotFound
		}
		return domain.Identity{}, err
	}
	return ident, nil
}

// SeedIdentity: заводит запись в users или employees (dev и тесты).
func (s *Store) SeedIdentity(ctx context.Context, ident domain.Identity) error {
	table := "users"
	if ident.Kind == domain.IdentityEmployee {
		table = "employees"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		ident.ID, ident.Name)
	return err
}

package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

type Config struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ApplicationName   string // пусто — не устанавливать
}

// NewPool: создаёт *pgxpool.Pool с применением настроек и проверкой Ping().
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.ApplicationName != "" {
		if pc.ConnConfig.RuntimeParams == nil {
			pc.ConnConfig.RuntimeParams = map[string]string{}
		}
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	if err := ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return pool.Ping(ctx)
}

// Migrate применяет schema.sql; все операторы идемпотентны.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

/*
абстрактный слой над *pgxpool.Pool / pgx.Tx,
репозитории не знают, в транзакции они или нет
*/
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store собирает репозитории поверх одного пула.
type Store struct {
	pool          *pgxpool.Pool
	messages      *MessageRepository
	conversations *ConversationRepository
	notifications *NotificationRepository
	identities    *IdentityRepository
}

var _ service.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:          pool,
		messages:      NewMessageRepository(pool),
		conversations: NewConversationRepository(pool),
		notifications: NewNotificationRepository(pool),
		identities:    NewIdentityRepository(pool),
	}
}

func (s *Store) Messages() service.MessageRepository           { return s.messages }
func (s *Store) Conversations() service.ConversationRepository { return s.conversations }
func (s *Store) Notifications() service.NotificationRepository { return s.notifications }
func (s *Store) Identities() service.IdentityDirectory         { return s.identities }

func (s *Store) Ping(ctx context.Context) error { return ping(ctx, s.pool) }
func (s *Store) Close()                         { s.pool.Close() }

func newID() string {
	// v7 упорядочен по времени — удобно для (created_at, id)
	return uuid.Must(uuid.NewV7()).String()
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 - unique violation
		if pgErr.Code == "23505" {
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrAlreadyExists)
		}
	}

	return err
}

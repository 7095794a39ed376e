// Package sqlite — встраиваемое хранилище для локального запуска и тестов.
// Соединение одно, поэтому транзакции сериализуются самим пулом database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cwrk-planet/chat-service/internal/service"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

const MemoryPath = ":memory:"

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db            *sql.DB
	messages      *MessageRepository
	conversations *ConversationRepository
	notifications *NotificationRepository
	identities    *IdentityRepository
}

var _ service.Store = (*Store)(nil)

// Open открывает (или создаёт) базу по пути и накатывает схему.
// ":memory:": база в памяти, живёт пока открыт Store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "./data/chat.db"
	}

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore: поверх уже открытой базы, схему не трогает.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		messages:      &MessageRepository{q: db},
		conversations: &ConversationRepository{db: db},
		notifications: &NotificationRepository{q: db},
		identities:    &IdentityRepository{q: db},
	}
}

func (s *Store) Messages() service.MessageRepository           { return s.messages }
func (s *Store) Conversations() service.ConversationRepository { return s.conversations }
func (s *Store) Notifications() service.NotificationRepository { return s.notifications }
func (s *Store) Identities() service.IdentityDirectory         { return s.identities }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close()                         { _ = s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS employees (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	sender_id   TEXT NOT NULL,
	receiver_id TEXT NOT NULL,
	room_id     TEXT NOT NULL,
	text        TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages (room_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_messages_receiver_read ON messages (receiver_id, read);

CREATE TABLE IF NOT EXISTS conversations (
	id           TEXT PRIMARY KEY,
	room_id      TEXT NOT NULL UNIQUE,
	participants TEXT NOT NULL DEFAULT '[]',
	last_message TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	receiver_id TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT 'info',
	message     TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_receiver ON notifications (receiver_id, created_at DESC);
`

// время храним как unix-наносекунды: сортировка по INTEGER без сюрпризов
func toUnix(t time.Time) int64   { return t.UnixNano() }
func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }
func newID() string              { return ulid.Make().String() }
func now() time.Time             { return time.Now().UTC() }

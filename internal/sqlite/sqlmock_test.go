package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestAppend_PropagatesDriverError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO messages").WillReturnError(errors.New("disk I/O error"))

	_, err := s.Messages().Append(context.Background(), domain.Message{
		SenderID: domain.User("A"), ReceiverID: domain.User("B"), RoomID: "A_B", Text: "hi",
	})
	if err == nil || err.Error() != "insert message: disk I/O error" {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpsert_RollsBackOnWriteFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, room_id, participants").
		WithArgs("A_B").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO conversations").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	if _, err := s.Conversations().UpsertForMessage(context.Background(), "A_B", []string{"A", "B"}, "hi"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpsert_UpdatesExistingRow(t *testing.T) {
	s, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "room_id", "participants", "last_message", "created_at", "updated_at"}).
		AddRow("c1", "A_B", `["A"]`, "old", int64(1), int64(1))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, room_id, participants").WithArgs("A_B").WillReturnRows(rows)
	mock.ExpectExec("UPDATE conversations SET participants").
		WithArgs(`["A","B"]`, "new", sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, err := s.Conversations().UpsertForMessage(context.Background(), "A_B", []string{"A", "B"}, "new")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if c.ID != "c1" || c.LastMessage != "new" || len(c.Participants) != 2 {
		t.Fatalf("conversation = %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkAsRead_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("UPDATE notifications SET read = 1").
		WithArgs("n-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "receiver_id", "type", "message", "read", "created_at"}))

	if _, err := s.Notifications().MarkAsRead(context.Background(), "n-missing"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestUnreadCount_QueryError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("SELECT COUNT").WithArgs("B").WillReturnError(errors.New("locked"))

	if _, err := s.Messages().UnreadCount(context.Background(), "B"); err == nil {
		t.Fatalf("expected error")
	}
}

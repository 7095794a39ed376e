package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type fakeMessages struct {
	mu   sync.Mutex
	seq  int
	list []domain.Message
	err  error
}

func (f *fakeMessages) Append(_ context.Context, m domain.Message) (domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Message{}, f.err
	}
	f.seq++
	m.ID = fmt.Sprintf("m%d", f.seq)
	m.CreatedAt = time.Unix(int64(f.seq), 0)
	f.list = append(f.list, m)
	return m, nil
}

func (f *fakeMessages) History(_ context.Context, roomID string) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.list {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) HistoryPage(ctx context.Context, roomID, _ string, _ int) ([]domain.Message, string, error) {
	out, err := f.History(ctx, roomID)
	return out, "", err
}

func (f *fakeMessages) MarkRead(_ context.Context, roomID, receiverID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.list {
		m := &f.list[i]
		if m.RoomID == roomID && m.ReceiverID.String() == receiverID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) UnreadCount(_ context.Context, receiverID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.list {
		if m.ReceiverID.String() == receiverID && !m.Read {
			n++
		}
	}
	return n, nil
}

type fakeConversations struct {
	mu    sync.Mutex
	rooms map[string]*domain.Conversation
	err   error
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{rooms: make(map[string]*domain.Conversation)}
}

func (f *fakeConversations) UpsertForMessage(_ context.Context, roomID string, participants []string, last string) (domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Conversation{}, f.err
	}
	c, ok := f.rooms[roomID]
	if !ok {
		c = &domain.Conversation{ID: "c-" + roomID, RoomID: roomID}
		f.rooms[roomID] = c
	}
	c.AddParticipants(participants...)
	c.LastMessage = last
	c.UpdatedAt = time.Now()
	return *c, nil
}

func (f *fakeConversations) ListForUser(_ context.Context, userID string) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Conversation
	for _, c := range f.rooms {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	seq  int
	list []domain.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n domain.Notification) (domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	n.ID = fmt.Sprintf("n%d", f.seq)
	n.CreatedAt = time.Unix(int64(f.seq), 0)
	f.list = append(f.list, n)
	return n, nil
}

func (f *fakeNotifications) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, 0, len(f.list))
	for i := len(f.list) - 1; i >= 0; i-- {
		out = append(out, f.list[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotifications) ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error) {
	all, _ := f.ListRecent(ctx, 0)
	var out []domain.Notification
	for _, n := range all {
		if n.ReceiverID == receiverID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, id string) (domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Read = true
			return f.list[i], nil
		}
	}
	return domain.Notification{}, domain.ErrNotificationNotFound
}

type fakeIdentities struct {
	users     map[string]string
	employees map[string]string
	err       error
}

func (f fakeIdentities) FindUser(_ context.Context, id string) (domain.Identity, error) {
	if f.err != nil {
		return domain.Identity{}, f.err
	}
	if name, ok := f.users[id]; ok {
		return domain.Identity{ID: id, Name: name, Kind: domain.IdentityUser}, nil
	}
	return domain.Identity{}, domain.ErrIdentityNotFound
}

func (f fakeIdentities) FindEmployee(_ context.Context, id string) (domain.Identity, error) {
	if name, ok := f.employees[id]; ok {
		return domain.Identity{ID: id, Name: name, Kind: domain.IdentityEmployee}, nil
	}
	return domain.Identity{}, domain.ErrIdentityNotFound
}

var errStoreDown = errors.New("store down")

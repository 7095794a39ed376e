package ws

import (
	"log/slog"
	"sync"

	"github.com/cwrk-planet/chat-service/internal/metrics"
)

type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Hub: живые соединения процесса и подписки на комнаты.
// Комната — множество по id соединения, повторный join не дублирует доставку.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Conn                // connID -> conn
	rooms  map[string]map[string]Conn     // roomID -> connID -> conn
	joined map[string]map[string]struct{} // connID -> roomIDs
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]Conn),
		joined: make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.ID()] = c
}

// Remove убирает соединение из хаба и из всех комнат.
func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := c.ID()
	for roomID := range h.joined[id] {
		h.leaveLocked(roomID, id)
	}
	delete(h.joined, id)
	delete(h.conns, id)
}

func (h *Hub) Join(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := c.ID()
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[roomID] = rs
	}
	rs[id] = c

	js, ok := h.joined[id]
	if !ok {
		js = make(map[string]struct{})
		h.joined[id] = js
	}
	js[roomID] = struct{}{}
}

func (h *Hub) Leave(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(roomID, c.ID())
	if js, ok := h.joined[c.ID()]; ok {
		delete(js, roomID)
	}
}

func (h *Hub) leaveLocked(roomID, connID string) {
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast работает best-effort, ошибка одного получателя не мешает остальным.
func (h *Hub) Broadcast(roomID string, msg Message) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sendAll(targets, msg)
}

func (h *Hub) BroadcastAll(msg Message) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sendAll(targets, msg)
}

// SendTo: false — соединения с таким id в этом процессе нет.
func (h *Hub) SendTo(connID string, msg Message) (bool, error) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := c.Send(msg); err != nil {
		metrics.WSSendFailures.Inc()
		return true, err
	}
	return true, nil
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// CloseAll закрывает все соединения (graceful shutdown).
func (h *Hub) CloseAll() {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		_ = c.Close()
	}
}

func sendAll(targets []Conn, msg Message) {
	for _, c := range targets {
		if err := c.Send(msg); err != nil {
			metrics.WSSendFailures.Inc()
			slog.Debug("ws send failed", "conn", c.ID(), "event", msg.Event, "err", err)
		}
	}
}

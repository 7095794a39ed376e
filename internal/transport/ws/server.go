package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/metrics"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 5 * time.Second
	maxFrameSize = 1 << 16
)

type Server struct {
	upgrader  websocket.Upgrader
	delivery  *Delivery
	pingEvery time.Duration
}

// NewServer: пустой allowedOrigins — принимаем любой Origin.
func NewServer(delivery *Delivery, pingEvery time.Duration, allowedOrigins []string) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	return &Server{
		delivery:  delivery,
		pingEvery: pingEvery,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[u.Scheme+"://"+u.Host]
		return ok
	}
}

// HandleWS: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.FromCtx(r.Context()).Warn("ws upgrade failed", "err", err)
		return
	}

	// контекст соединения не зависит от таймаутов запроса
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	c := newWsConn(conn, uuid.NewString())
	s.delivery.Hub().Add(c)
	metrics.WSConnections.Inc()
	logger.FromCtx(ctx).Debug("ws connected", "conn", c.ID(), "remote", r.RemoteAddr)

	go s.pingLoop(ctx, c)
	s.readLoop(ctx, c)

	s.delivery.Disconnect(ctx, c)
	metrics.WSConnections.Dec()
	if err := c.Close(); err != nil {
		logger.FromCtx(ctx).Debug("ws close failed", "conn", c.ID(), "err", err)
	}
	logger.FromCtx(ctx).Debug("ws disconnected", "conn", c.ID(), "user", c.UserID())
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		if c.UserID() != "" {
			tctx, cancel := context.WithTimeout(ctx, time.Second)
			s.delivery.Touch(tctx, c)
			cancel()
		}
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.FromCtx(ctx).Debug("ws read failed", "conn", c.ID(), "err", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		s.delivery.Handle(ctx, c, data)
	}
}

func (s *Server) pingLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn   *websocket.Conn
	id     string
	sendMu chan struct{}
	closed chan struct{}
	once   sync.Once

	mu     sync.RWMutex
	userID string
}

func newWsConn(c *websocket.Conn, id string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     id,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return websocket.ErrCloseSent
	case c.sendMu <- struct{}{}:
	}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) SetUserID(id string) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

func (c *wsConn) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

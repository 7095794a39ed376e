package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/pkg/logger"
)

// Config: WriteTimeout не задаётся, websocket-соединения живут долго и
// сами ставят deadline на запись.
type Config struct {
	Addr            string        // ":8080"
	ReadTimeout     time.Duration // 15s
	IdleTimeout     time.Duration // 60s
	ShutdownTimeout time.Duration // 10s
}

type Server struct {
	cfg Config
	srv *http.Server
}

func New(cfg Config, handler http.Handler) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return &Server{
		cfg: cfg,
		srv: s,
	}
}

// OnShutdown: hijacked-соединения (websocket) Shutdown не закрывает, их закрывает f.
func (s *Server) OnShutdown(f func()) {
	s.srv.RegisterOnShutdown(f)
}

// Run запускает HTTP-сервер и блокирует до завершения ctx.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.FromCtx(ctx).Info("http server listening", "addr", l.Addr().String())

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}

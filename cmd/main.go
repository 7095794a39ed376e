package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwrk-planet/chat-service/config"
	"github.com/cwrk-planet/chat-service/internal/auth"
	"github.com/cwrk-planet/chat-service/internal/postgres"
	"github.com/cwrk-planet/chat-service/internal/presence"
	httpserver "github.com/cwrk-planet/chat-service/internal/server/http"
	"github.com/cwrk-planet/chat-service/internal/service"
	"github.com/cwrk-planet/chat-service/internal/sqlite"
	grpcx "github.com/cwrk-planet/chat-service/internal/transport/grpc"
	httpx "github.com/cwrk-planet/chat-service/internal/transport/http"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:        logger.ParseEnv(cfg.Logging.Env),
		Service:    cfg.Logging.Service,
		Version:    cfg.Logging.Version,
		InstanceID: cfg.Logging.InstanceID,
		Backend:    logger.Backend(cfg.Logging.Backend),
		Level:      logger.ParseLevel(cfg.Logging.Level),
		AddSource:  cfg.Logging.AddSource,
		Debug:      cfg.Logging.Debug,
		Attrs:      []slog.Attr{slog.String("storage", cfg.Storage.Driver), slog.String("presence", cfg.Presence.Backend)},
	})
	slog.Info("starting chat-service")

	// trace_id/span_id в логах; экспортёр не подключён
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- storage ---
	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("storage", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	// --- presence ---
	reg, checks, err := openPresence(ctx, cfg)
	if err != nil {
		slog.Error("presence", "backend", cfg.Presence.Backend, "err", err)
		os.Exit(1)
	}
	checks = append([]httpx.HealthCheck{{Name: "store", Ping: store.Ping}}, checks...)

	// --- services ---
	chatSvc := service.NewChatService(store.Messages(), store.Conversations(), cfg.Chat.MaxMessageLength)
	conversationSvc := service.NewConversationService(store.Conversations(), store.Identities())
	notificationSvc := service.NewNotificationService(store.Notifications(), cfg.Chat.NotificationsLimit)

	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	// --- WS hub & delivery ---
	hub := ws.NewHub()
	delivery := ws.NewDelivery(hub, reg, chatSvc, notificationSvc)
	wsServer := ws.NewServer(delivery, cfg.WS.PingEvery, cfg.WS.AllowedOrigins)

	// --- HTTP ---
	handler := httpx.NewHandler(chatSvc, conversationSvc, notificationSvc, delivery, checks...)
	router := httpx.NewRouter(handler, authn, wsServer.HandleWS, httpx.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	httpSrv := httpserver.New(httpserver.Config{
		Addr:        cfg.HTTP.Addr,
		ReadTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout: cfg.HTTP.IdleTimeout,
	}, router)
	httpSrv.OnShutdown(hub.CloseAll)

	// --- gRPC ---
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcx.RequestIDUnaryInterceptor(),
			grpcx.UnaryServerInterceptor(),
			grpcx.AuthUnaryInterceptor(authn),
		),
	)
	grpcx.Register(grpcServer, grpcx.NewServer(chatSvc, conversationSvc, notificationSvc, delivery))

	// --- run both servers ---
	errCh := make(chan error, 2)

	go func() {
		errCh <- httpSrv.Run(ctx)
	}()

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			errCh <- err
			return
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		errCh <- grpcServer.Serve(lis)
	}()

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "err", err)
		}
		stop()
	}

	grpcServer.GracefulStop()
	<-errCh
	_ = tp.Shutdown(context.Background())
	slog.Info("stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (service.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Storage.SQLite.Path)
	default:
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			MaxConnLifetime: cfg.Storage.Postgres.MaxConnLifetime,
			MaxConnIdleTime: cfg.Storage.Postgres.MaxConnIdleTime,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Storage.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return postgres.NewStore(pool), nil
	}
}

func openPresence(ctx context.Context, cfg *config.Config) (presence.Registry, []httpx.HealthCheck, error) {
	if cfg.Presence.Backend != config.PresenceRedis {
		return presence.NewMemory(), nil, nil
	}
	client, err := presence.DialRedis(ctx, cfg.Presence.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	// ключ соединения переживает read deadline (2*pingEvery) и продлевается на pong
	reg := presence.NewRedis(client, cfg.Presence.Redis.KeyPrefix, 3*cfg.WS.PingEvery)
	return reg, []httpx.HealthCheck{{Name: "presence", Ping: reg.Ping}}, nil
}

package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, tokens httpmw.TokenValidator, wsHandler http.HandlerFunc, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(httpmw.Metrics)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareTracing)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httputil.MiddlewareLogging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WS живёт дольше любого таймаута запроса
	if wsHandler != nil {
		r.Get("/ws", wsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewareChi.Timeout(cfg.RequestTimeout))

		// история комнаты открыта без токена
		api.Get("/chat/history/{roomId}", h.GetChatHistory)

		api.Group(func(pr chi.Router) {
			pr.Use(httpmw.Auth(tokens))

			pr.Post("/chat/history/{roomId}", h.PostChatMessage)
			pr.Post("/chat/history/{roomId}/read", h.MarkRoomRead)
			pr.Get("/messages/unread-count", h.UnreadCount)
			pr.Get("/conversations", h.ListConversations)
			pr.Get("/notifications", h.ListNotifications)
			pr.Patch("/notifications/{id}/read", h.MarkNotificationRead)
		})
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

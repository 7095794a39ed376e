package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/metrics"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpmw "github.com/cwrk-planet/chat-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/chat-service/pkg/errs"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

const maxBodySize = 64 << 10

// Publisher отдаёт сообщения живой доставке (ws.Delivery), REST-отправка раздаётся так же, как из сокета.
type Publisher interface {
	PublishMessage(ctx context.Context, m domain.Message, originConnID string)
	PublishNotificationUpdated(n domain.Notification)
}

type Handler struct {
	chatSvc         *service.ChatService
	conversationSvc *service.ConversationService
	notificationSvc *service.NotificationService
	publisher       Publisher
	checks          []HealthCheck
}

func NewHandler(
	chat *service.ChatService,
	conversations *service.ConversationService,
	notifications *service.NotificationService,
	publisher Publisher,
	checks ...HealthCheck,
) *Handler {
	return &Handler{
		chatSvc:         chat,
		conversationSvc: conversations,
		notificationSvc: notifications,
		publisher:       publisher,
		checks:          checks,
	}
}

// GET /api/chat/history/{roomId}?limit=&after=
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	q := r.URL.Query()

	if !q.Has("limit") && !q.Has("after") {
		msgs, err := h.chatSvc.History(r.Context(), roomID)
		if err != nil {
			h.fail(w, r, "handler.GetChatHistory", err)
			return
		}
		httputil.OK(w, HistoryResponse{Messages: orEmpty(msgs)})
		return
	}

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid limit", map[string]any{"limit": q.Get("limit")})
		return
	}
	msgs, next, err := h.chatSvc.HistoryPage(r.Context(), roomID, q.Get("after"), limit)
	if err != nil {
		h.fail(w, r, "handler.GetChatHistory", err)
		return
	}
	httputil.OK(w, HistoryResponse{Messages: orEmpty(msgs), NextCursor: next})
}

// POST /api/chat/history/{roomId}
func (h *Handler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	caller := httpmw.UserIDFromCtx(r.Context())
	senderRaw := strings.TrimSpace(req.SenderID)
	if senderRaw == "" {
		senderRaw = caller
	}
	sender, err := domain.ParseParty(senderRaw)
	if err != nil {
		httputil.FromErr(r.Context(), w, domain.ErrMissingSender)
		return
	}
	// от чужого имени писать нельзя, от бота можно (ответы ассистента)
	if !sender.IsBot() && sender.String() != caller {
		httputil.FromErr(r.Context(), w, domain.ErrSenderMismatch)
		return
	}
	receiver, err := domain.ParseParty(req.ReceiverID)
	if err != nil {
		httputil.FromErr(r.Context(), w, domain.ErrMissingReceiver)
		return
	}

	res, err := h.chatSvc.Send(r.Context(), service.SendInput{
		SenderID:   sender,
		ReceiverID: receiver,
		RoomID:     chi.URLParam(r, "roomId"),
		Text:       req.Text,
	})
	if err != nil {
		h.fail(w, r, "handler.PostChatMessage", err)
		return
	}
	metrics.MessagesSent.WithLabelValues("http").Inc()

	if h.publisher != nil {
		h.publisher.PublishMessage(r.Context(), res.Message, "")
	}
	httputil.Created(w, SendMessageResponse{Message: res.Message, Conversation: res.Conversation})
}

// POST /api/chat/history/{roomId}/read
func (h *Handler) MarkRoomRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.chatSvc.MarkRead(r.Context(), chi.URLParam(r, "roomId"), httpmw.UserIDFromCtx(r.Context()))
	if err != nil {
		h.fail(w, r, "handler.MarkRoomRead", err)
		return
	}
	httputil.OK(w, MarkReadResponse{Updated: n})
}

// GET /api/messages/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.chatSvc.UnreadCount(r.Context(), httpmw.UserIDFromCtx(r.Context()))
	if err != nil {
		h.fail(w, r, "handler.UnreadCount", err)
		return
	}
	httputil.OK(w, UnreadCountResponse{Count: n})
}

// GET /api/conversations
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.conversationSvc.ListForUser(r.Context(), httpmw.UserIDFromCtx(r.Context()))
	if err != nil {
		h.fail(w, r, "handler.ListConversations", err)
		return
	}
	if convs == nil {
		convs = []domain.ConversationView{}
	}
	httputil.OK(w, ConversationsResponse{Conversations: convs})
}

// GET /api/notifications?limit=
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid limit", nil)
		return
	}
	list, err := h.notificationSvc.ListForReceiver(r.Context(), httpmw.UserIDFromCtx(r.Context()), limit)
	if err != nil {
		h.fail(w, r, "handler.ListNotifications", err)
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	httputil.OK(w, NotificationsResponse{Notifications: list})
}

// PATCH /api/notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notificationSvc.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "handler.MarkNotificationRead", err)
		return
	}
	if h.publisher != nil {
		h.publisher.PublishNotificationUpdated(n)
	}
	httputil.OK(w, NotificationResponse{Notification: n})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errs.ToHTTP(err) >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error(op, "err", err)
	}
	httputil.FromErr(r.Context(), w, err)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// parseLimit: пусто — 0 (значение по умолчанию решает сервис).
func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid limit")
	}
	return n, nil
}

func orEmpty(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return []domain.Message{}
	}
	return msgs
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/metrics"
	"github.com/cwrk-planet/chat-service/internal/presence"
	"github.com/cwrk-planet/chat-service/internal/service"
	"github.com/cwrk-planet/chat-service/pkg/errs"
	"github.com/cwrk-planet/chat-service/pkg/logger"
)

type ChatSvc interface {
	Send(ctx context.Context, in service.SendInput) (service.SendResult, error)
}

type NotificationSvc interface {
	Create(ctx context.Context, receiverID, typ, message string) (domain.Notification, error)
	ListRecent(ctx context.Context) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id string) (domain.Notification, error)
}

// Delivery разбирает события соединений и раздаёт результат живым соединениям.
type Delivery struct {
	hub           *Hub
	presence      presence.Registry
	chat          ChatSvc
	notifications NotificationSvc
}

func NewDelivery(hub *Hub, reg presence.Registry, chat ChatSvc, notifications NotificationSvc) *Delivery {
	return &Delivery{
		hub:           hub,
		presence:      reg,
		chat:          chat,
		notifications: notifications,
	}
}

func (d *Delivery) Hub() *Hub { return d.hub }

// Handle обрабатывает один кадр от соединения c.
func (d *Delivery) Handle(ctx context.Context, c Conn, frame []byte) {
	var in inbound
	if err := json.Unmarshal(frame, &in); err != nil || in.Event == "" {
		d.sendError(c, "malformed frame")
		return
	}

	switch in.Event {
	case EventRegister:
		d.onRegister(ctx, c, in)
	case EventJoinRoom:
		if roomID, ok := d.stringArg(c, in, "roomId"); ok {
			d.hub.Join(roomID, c)
		}
	case EventLeaveRoom:
		if roomID, ok := d.stringArg(c, in, "roomId"); ok {
			d.hub.Leave(roomID, c)
		}
	case EventGetNotifications:
		d.onGetNotifications(ctx, c)
	case EventChatMessage:
		d.onChatMessage(ctx, c, in)
	case EventSendNotification:
		d.onSendNotification(ctx, c, in)
	case EventMarkAsRead:
		d.onMarkAsRead(ctx, c, in)
	default:
		logger.FromCtx(ctx).Debug("ws unknown event", "conn", c.ID(), "event", in.Event)
		metrics.WSEvents.WithLabelValues("unknown").Inc()
		return
	}
	metrics.WSEvents.WithLabelValues(in.Event).Inc()
}

// Disconnect вызывается после закрытия соединения, чистит presence и комнаты.
func (d *Delivery) Disconnect(ctx context.Context, c Conn) {
	d.hub.Remove(c)
	if err := d.presence.Remove(ctx, c.ID()); err != nil {
		logger.FromCtx(ctx).Warn("ws presence remove failed", "conn", c.ID(), "err", err)
	}
	d.refreshOnline(ctx)
}

// Touch продлевает presence соединения, вызывается на каждый pong.
func (d *Delivery) Touch(ctx context.Context, c Conn) {
	if err := d.presence.Touch(ctx, c.ID()); err != nil {
		logger.FromCtx(ctx).Debug("ws presence touch failed", "conn", c.ID(), "err", err)
	}
}

func (d *Delivery) onRegister(ctx context.Context, c Conn, in inbound) {
	userID, ok := d.stringArg(c, in, "userId")
	if !ok {
		return
	}
	if err := d.presence.Register(ctx, userID, c.ID()); err != nil {
		logger.FromCtx(ctx).Error("ws presence register failed", "conn", c.ID(), "user", userID, "err", err)
		d.sendError(c, "register failed")
		return
	}
	if u, ok := c.(interface{ SetUserID(string) }); ok {
		u.SetUserID(userID)
	}
	d.refreshOnline(ctx)
}

func (d *Delivery) onGetNotifications(ctx context.Context, c Conn) {
	list, err := d.notifications.ListRecent(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("ws list notifications failed", "conn", c.ID(), "err", err)
		d.sendError(c, errs.Public(err))
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	_ = c.Send(Message{Event: EventLoadNotifications, Data: list})
}

func (d *Delivery) onChatMessage(ctx context.Context, c Conn, in inbound) {
	var p ChatMessagePayload
	if err := json.Unmarshal(in.Data, &p); err != nil {
		d.sendError(c, "invalid chatMessage payload")
		return
	}
	sender, err := domain.ParseParty(p.SenderID)
	if err != nil {
		d.sendError(c, domain.ErrMissingSender.Error())
		return
	}
	receiver, err := domain.ParseParty(p.ReceiverID)
	if err != nil {
		d.sendError(c, domain.ErrMissingReceiver.Error())
		return
	}

	res, err := d.chat.Send(ctx, service.SendInput{
		SenderID:   sender,
		ReceiverID: receiver,
		RoomID:     p.RoomID,
		Text:       p.Text,
	})
	if err != nil {
		if errs.ToHTTP(err) >= 500 {
			logger.FromCtx(ctx).Error("ws chat send failed", "conn", c.ID(), "room", p.RoomID, "err", err)
		}
		d.sendError(c, errs.Public(err))
		return
	}
	metrics.MessagesSent.WithLabelValues("ws").Inc()

	d.PublishMessage(ctx, res.Message, c.ID())
}

// PublishMessage рассылает newMessage в комнату и уведомляет получателя,
// если он онлайн и это не то же соединение, с которого пришло сообщение.
// originConnID пустой для сообщений, пришедших по REST.
func (d *Delivery) PublishMessage(ctx context.Context, m domain.Message, originConnID string) {
	d.hub.Broadcast(m.RoomID, Message{Event: EventNewMessage, Data: newMessagePayload(m)})

	if m.ReceiverID.IsBot() {
		return
	}
	receiver := m.ReceiverID.String()
	connID, online, err := d.presence.Lookup(ctx, receiver)
	if err != nil {
		logger.FromCtx(ctx).Warn("ws presence lookup failed", "user", receiver, "err", err)
		return
	}
	if !online || connID == originConnID {
		return
	}

	n, err := d.notifications.Create(ctx, receiver, domain.NotificationMessage,
		fmt.Sprintf("New message from %s", m.SenderID.String()))
	if err != nil {
		logger.FromCtx(ctx).Warn("ws message notification failed", "user", receiver, "err", err)
		return
	}
	metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()
	d.push(ctx, connID, n)
}

func (d *Delivery) onSendNotification(ctx context.Context, c Conn, in inbound) {
	var p SendNotificationPayload
	if err := json.Unmarshal(in.Data, &p); err != nil {
		d.sendError(c, "invalid sendNotification payload")
		return
	}
	n, err := d.notifications.Create(ctx, p.ReceiverID, p.Type, p.Message)
	if err != nil {
		if errs.ToHTTP(err) >= 500 {
			logger.FromCtx(ctx).Error("ws create notification failed", "conn", c.ID(), "err", err)
		}
		d.sendError(c, errs.Public(err))
		return
	}
	metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()
	d.PushNotification(ctx, n)
}

// PushNotification доставляет уведомление получателю, если он онлайн.
// Возвращает true, если кадр ушёл в соединение.
func (d *Delivery) PushNotification(ctx context.Context, n domain.Notification) bool {
	connID, online, err := d.presence.Lookup(ctx, n.ReceiverID)
	if err != nil {
		logger.FromCtx(ctx).Warn("ws presence lookup failed", "user", n.ReceiverID, "err", err)
		return false
	}
	if !online {
		return false
	}
	return d.push(ctx, connID, n)
}

func (d *Delivery) push(ctx context.Context, connID string, n domain.Notification) bool {
	local, err := d.hub.SendTo(connID, Message{Event: EventNotification, Data: n})
	switch {
	case !local:
		// соединение на другом инстансе: кросс-инстансной доставки нет
		logger.FromCtx(ctx).Debug("ws notification receiver not local", "user", n.ReceiverID, "conn", connID)
		return false
	case err != nil:
		logger.FromCtx(ctx).Debug("ws notification push failed", "user", n.ReceiverID, "err", err)
		return false
	}
	metrics.NotificationsPushed.Inc()
	return true
}

func (d *Delivery) onMarkAsRead(ctx context.Context, c Conn, in inbound) {
	var id string
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &id); err != nil {
			var obj struct {
				NotificationID string `json:"notificationId"`
			}
			_ = json.Unmarshal(in.Data, &obj)
			id = obj.NotificationID
		}
	}

	n, err := d.notifications.MarkAsRead(ctx, strings.TrimSpace(id))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			logger.FromCtx(ctx).Error("ws mark as read failed", "conn", c.ID(), "id", id, "err", err)
		}
		d.ack(c, in.Ack, MarkAsReadResult{Status: StatusError, Error: errs.Public(err)})
		return
	}

	d.ack(c, in.Ack, MarkAsReadResult{Status: StatusSuccess, Notification: &n})
	d.PublishNotificationUpdated(n)
}

// PublishNotificationUpdated: всем подключённым клиентам.
func (d *Delivery) PublishNotificationUpdated(n domain.Notification) {
	d.hub.BroadcastAll(Message{Event: EventNotificationUpdated, Data: n})
}

func (d *Delivery) ack(c Conn, id *int64, result any) {
	if id == nil {
		return
	}
	_ = c.Send(Message{Event: EventAck, Ack: id, Data: result})
}

func (d *Delivery) sendError(c Conn, msg string) {
	_ = c.Send(Message{Event: EventError, Data: msg})
}

// stringArg: data — либо строка, либо объект с полем field.
func (d *Delivery) stringArg(c Conn, in inbound, field string) (string, bool) {
	var s string
	if err := json.Unmarshal(in.Data, &s); err != nil {
		var obj map[string]any
		if json.Unmarshal(in.Data, &obj) == nil {
			s, _ = obj[field].(string)
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.sendError(c, fmt.Sprintf("%s: %s is required", in.Event, field))
		return "", false
	}
	return s, true
}

func (d *Delivery) refreshOnline(ctx context.Context) {
	if n, err := d.presence.Online(ctx); err == nil {
		metrics.UsersOnline.Set(float64(n))
	}
}

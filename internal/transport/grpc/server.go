package grpcx

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/service"
	"github.com/cwrk-planet/chat-service/pkg/errs"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NotificationPublisher: рассылка notificationUpdated живым соединениям.
type NotificationPublisher interface {
	PublishNotificationUpdated(n domain.Notification)
}

type Server struct {
	chatSvc         *service.ChatService
	conversationSvc *service.ConversationService
	notificationSvc *service.NotificationService
	publisher       NotificationPublisher
}

var _ ChatServiceServer = (*Server)(nil)

func NewServer(
	chatSvc *service.ChatService,
	conversationSvc *service.ConversationService,
	notificationSvc *service.NotificationService,
	publisher NotificationPublisher,
) *Server {
	return &Server{
		chatSvc:         chatSvc,
		conversationSvc: conversationSvc,
		notificationSvc: notificationSvc,
		publisher:       publisher,
	}
}

func Register(grpcServer grpc.ServiceRegistrar, s *Server) {
	grpcServer.RegisterService(&ChatServiceDesc, s)
}

func (s *Server) GetHistory(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	msgs, err := s.chatSvc.History(ctx, strings.TrimSpace(in.GetValue()))
	if err != nil {
		return nil, mapErr(err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return toStruct("messages", msgs)
}

func (s *Server) ListConversations(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID := strings.TrimSpace(in.GetValue())
	if userID == "" {
		return nil, status.Error(codes.InvalidArgument, "user id is required")
	}
	convs, err := s.conversationSvc.ListForUser(ctx, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	if convs == nil {
		convs = []domain.ConversationView{}
	}
	return toStruct("conversations", convs)
}

func (s *Server) UnreadCount(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	n, err := s.chatSvc.UnreadCount(ctx, strings.TrimSpace(in.GetValue()))
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Int64(n), nil
}

func (s *Server) MarkNotificationRead(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	n, err := s.notificationSvc.MarkAsRead(ctx, strings.TrimSpace(in.GetValue()))
	if err != nil {
		return nil, mapErr(err)
	}
	if s.publisher != nil {
		s.publisher.PublishNotificationUpdated(n)
	}
	return toStruct("notification", n)
}

// -------- helpers --------

// toStruct кладёт v под ключ key через JSON, поля совпадают с REST.
func toStruct(key string, v any) (*structpb.Struct, error) {
	b, err := json.Marshal(map[string]any{key: v})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, errs.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

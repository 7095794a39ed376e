package grpcx

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "chat.v1.ChatService"

// ChatServiceServer описан вручную: сообщения — well-known types, без сгенерированных стабов.
type ChatServiceServer interface {
	GetHistory(ctx context.Context, roomID *wrapperspb.StringValue) (*structpb.Struct, error)
	ListConversations(ctx context.Context, userID *wrapperspb.StringValue) (*structpb.Struct, error)
	UnreadCount(ctx context.Context, userID *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	MarkNotificationRead(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error)
}

var ChatServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetHistory", Handler: unary("GetHistory", ChatServiceServer.GetHistory)},
		{MethodName: "ListConversations", Handler: unary("ListConversations", ChatServiceServer.ListConversations)},
		{MethodName: "UnreadCount", Handler: unary("UnreadCount", ChatServiceServer.UnreadCount)},
		{MethodName: "MarkNotificationRead", Handler: unary("MarkNotificationRead", ChatServiceServer.MarkNotificationRead)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chat/v1/chat.proto",
}

func fullMethod(name string) string { return "/" + serviceName + "/" + name }

func unary[Req, Resp any](name string, call func(ChatServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChatServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChatServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client: тонкий клиент для других сервисов платформы.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) GetHistory(ctx context.Context, roomID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, fullMethod("GetHistory"), wrapperspb.String(roomID), out, opts...)
	return out, err
}

func (c *Client) ListConversations(ctx context.Context, userID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, fullMethod("ListConversations"), wrapperspb.String(userID), out, opts...)
	return out, err
}

func (c *Client) UnreadCount(ctx context.Context, userID string, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("UnreadCount"), wrapperspb.String(userID), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, fullMethod("MarkNotificationRead"), wrapperspb.String(id), out, opts...)
	return out, err
}

package grpcx

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/auth"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
	"github.com/cwrk-planet/chat-service/pkg/logger"

	"github.com/google/uuid"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	mdAuthorization = "authorization"
	mdRequestID     = "x-request-id"
	defaultDeadline = 10 * time.Second
)

type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type claimsKey struct{}

// UnaryServerInterceptor: logging + recovery + timeout guard (если у вызова нет deadline).
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultDeadline)
			defer cancel()
		}

		reqID, _ := httputil.FromContext(ctx)
		defer func() {
			if r := recover(); r != nil {
				logger.FromCtx(ctx).Error("grpc unary panic",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal server error")
			}
			logger.FromCtx(ctx).Info("grpc unary",
				"method", info.FullMethod,
				"req_id", reqID,
				"code", status.Code(err).String(),
				"dur_ms", time.Since(start).Milliseconds())
		}()

		return handler(ctx, req)
	}
}

// RequestIDUnaryInterceptor берёт x-request-id из metadata или генерирует новый;
// id кладётся в тот же ключ контекста, что и у HTTP.
func RequestIDUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var reqID string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			reqID = strings.TrimSpace(first(md.Get(mdRequestID)))
		}
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(mdRequestID, reqID))

		return handler(httputil.WithRequestID(ctx, reqID), req)
	}
}

// AuthUnaryInterceptor проверяет "authorization: Bearer <jwt>" из metadata.
func AuthUnaryInterceptor(v TokenValidator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		token, err := bearerFromMD(ctx)
		if err != nil {
			return nil, err
		}
		claims, err := v.ValidateToken(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(context.WithValue(ctx, claimsKey{}, claims), req)
	}
}

func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

func bearerFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	h := first(md.Get(mdAuthorization))
	if h == "" {
		return "", status.Error(codes.Unauthenticated, "missing authorization")
	}
	if len(h) <= 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", status.Error(codes.Unauthenticated, "invalid authorization")
	}
	return strings.TrimSpace(h[7:]), nil
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

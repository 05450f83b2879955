package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/iho/bankledger/internal/infrastructure/auth"
	"github.com/iho/bankledger/internal/infrastructure/logger"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated caller ID
	UserContextKey ContextKey = "user"

	// AuthorizationHeader is the metadata key for authorization
	AuthorizationHeader = "authorization"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthInterceptor creates a gRPC authentication interceptor. When required
// is false, calls without a token pass through anonymously.
func AuthInterceptor(verifier TokenVerifier, required bool) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		accessToken := tokenFromMetadata(ctx)
		if accessToken == "" {
			if required {
				return nil, status.Error(codes.Unauthenticated, "missing authorization token")
			}
			return handler(ctx, req)
		}

		claims, err := verifier.Verify(accessToken)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = context.WithValue(ctx, UserContextKey, claims.UserID)
		ctx = logger.WithRequest(ctx, "", claims.UserID)

		return handler(ctx, req)
	}
}

// UserIDFromContext returns the authenticated caller ID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserContextKey).(string)
	return id
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(AuthorizationHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimPrefix(values[0], "Bearer ")
}

// ChainUnaryServer chains multiple unary interceptors
func ChainUnaryServer(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			next := chain
			chain = func(ctx context.Context, req interface{}) (interface{}, error) {
				return interceptor(ctx, req, info, next)
			}
		}
		return chain(ctx, req)
	}
}

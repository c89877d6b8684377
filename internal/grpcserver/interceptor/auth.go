package interceptor

import (
	"context"
	"crypto/subtle"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/starredrpc"
	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext returns the user id put in ctx by UnaryUserIDInterceptor.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// UnarySharedSecretInterceptor rejects calls whose authorization metadata does
// not equal secret. An empty secret disables the check.
func UnarySharedSecretInterceptor(secret string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if secret == "" {
			return handler(ctx, req)
		}

		got := firstMetadataValue(ctx, starredrpc.AuthorizationMetadataKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			logger.Log.Debugw("rejected gRPC call with a wrong shared secret", "method", info.FullMethod)
			return nil, status.Error(codes.Unauthenticated, "invalid shared secret")
		}

		return handler(ctx, req)
	}
}

// UnaryUserIDInterceptor moves the user id metadata of the listed methods into the context.
func UnaryUserIDInterceptor(methods []string) grpc.UnaryServerInterceptor {
	required := methodSet(methods)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !required.has(info.FullMethod) {
			return handler(ctx, req)
		}

		userID := firstMetadataValue(ctx, starredrpc.UserIDMetadataKey)
		if userID == "" {
			return nil, status.Error(codes.InvalidArgument, "missing user ID")
		}

		return handler(context.WithValue(ctx, userIDKey, userID), req)
	}
}

func firstMetadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

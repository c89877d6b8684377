package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
)

// UnaryLoggingInterceptor logs the listed unary methods with their duration and status.
// An empty list logs every method.
func UnaryLoggingInterceptor(methods []string) grpc.UnaryServerInterceptor {
	logged := methodSet(methods)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		if !logged.has(info.FullMethod) {
			return handler(ctx, req)
		}

		start := time.Now()

		resp, err = handler(ctx, req)

		st, _ := status.FromError(err)
		logger.Log.Infow(
			"gRPC request",
			"method", info.FullMethod,
			"duration", time.Since(start),
			"code", st.Code().String(),
			"message", st.Message(),
		)

		return resp, err
	}
}

type set map[string]struct{}

// methodSet returns nil for an empty list, which matches every method.
func methodSet(methods []string) set {
	if len(methods) == 0 {
		return nil
	}
	s := make(set, len(methods))
	for _, m := range methods {
		s[m] = struct{}{}
	}
	return s
}

func (s set) has(method string) bool {
	if s == nil {
		return true
	}
	_, ok := s[method]
	return ok
}

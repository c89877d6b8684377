package grpcserver

import (
	"net"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/interceptor"
	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/starredrpc"
)

var starredMethods = []string{
	starredrpc.GetStarredMethod,
	starredrpc.AddStarredMethod,
	starredrpc.RemoveStarredMethod,
}

// NewGRPCServer listens on addr and returns a server with the starred notes service registered.
func NewGRPCServer(
	addr string,
	handler *StarredNotesHandler,
	sharedSecret string,
) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor(starredMethods),
			interceptor.UnarySharedSecretInterceptor(sharedSecret),
			interceptor.UnaryUserIDInterceptor(starredMethods),
		),
	)
	starredrpc.RegisterStarredNotesServer(server, handler)

	return server, lis, nil
}

package userservice

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/starredrpc"
)

// GRPC calls the atomicnotes.StarredNotes service of another instance.
type GRPC struct {
	conn         *grpc.ClientConn
	client       *starredrpc.StarredNotesClient
	sharedSecret string
}

// DialGRPC connects to addr. The connection is established lazily.
func DialGRPC(addr, sharedSecret string, opts ...grpc.DialOption) (*GRPC, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("in internal/userservice/grpc.go/DialGRPC(): error while `grpc.Dial()` calling: %w", err)
	}

	return &GRPC{
		conn:         conn,
		client:       starredrpc.NewStarredNotesClient(conn),
		sharedSecret: sharedSecret,
	}, nil
}

func (g *GRPC) GetStarredAtomicNoteIDs(ctx context.Context, userID string) ([]string, error) {
	list, err := g.client.GetStarred(g.outgoing(ctx, userID), &emptypb.Empty{})
	return g.result(list, err)
}

func (g *GRPC) StarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	list, err := g.client.AddStarred(g.outgoing(ctx, userID), wrapperspb.String(noteID))
	return g.result(list, err)
}

func (g *GRPC) UnstarAtomicNote(ctx context.Context, userID, noteID string) ([]string, error) {
	list, err := g.client.RemoveStarred(g.outgoing(ctx, userID), wrapperspb.String(noteID))
	return g.result(list, err)
}

func (g *GRPC) Close() error {
	return g.conn.Close()
}

func (g *GRPC) outgoing(ctx context.Context, userID string) context.Context {
	pairs := []string{starredrpc.UserIDMetadataKey, userID}
	if g.sharedSecret != "" {
		pairs = append(pairs, starredrpc.AuthorizationMetadataKey, g.sharedSecret)
	}

	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

func (g *GRPC) result(list *structpb.ListValue, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return starredrpc.FromListValue(list), nil
}

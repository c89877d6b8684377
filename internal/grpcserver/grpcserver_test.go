package grpcserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/starredrpc"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv/memorykv"
	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/starred"
)

const (
	addr        = "localhost:0"
	dialTimeout = 5 * time.Second
)

// startTestGRPCServer boots up a test gRPC server and returns the client and shutdown function.
func startTestGRPCServer(t *testing.T, sharedSecret string) (*starredrpc.StarredNotesClient, func()) {
	require.NoError(t, logger.Init("debug"))

	actors := starred.NewNamespace(memorykv.New())

	server, lis, err := NewGRPCServer(addr, NewStarredNotesHandler(actors), sharedSecret)
	require.NoError(t, err)

	go func() {
		if err := server.Serve(lis); err != nil {
			t.Logf("gRPC server stopped: %v", err)
		}
	}()

	dialContext, cancelDial := context.WithTimeout(context.Background(), dialTimeout)
	defer cancelDial()

	conn, err := grpc.DialContext(
		dialContext,
		lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	require.NoError(t, err)

	return starredrpc.NewStarredNotesClient(conn), func() {
		server.Stop()
		conn.Close()
		lis.Close()
	}
}

func withUser(userID string, pairs ...string) context.Context {
	return metadata.NewOutgoingContext(
		context.Background(),
		metadata.Pairs(append([]string{starredrpc.UserIDMetadataKey, userID}, pairs...)...),
	)
}

func TestStarredNotes_AddGetRemove(t *testing.T) {
	client, shutdown := startTestGRPCServer(t, "")
	defer shutdown()

	ctx := withUser("u1")

	list, err := client.GetStarred(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Empty(t, starredrpc.FromListValue(list))

	list, err = client.AddStarred(ctx, wrapperspb.String("n2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, starredrpc.FromListValue(list))

	list, err = client.AddStarred(ctx, wrapperspb.String("n1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2"}, starredrpc.FromListValue(list))

	list, err = client.RemoveStarred(ctx, wrapperspb.String("n2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, starredrpc.FromListValue(list))

	list, err = client.GetStarred(withUser("u2"), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Empty(t, starredrpc.FromListValue(list), "other users are not affected")
}

func TestStarredNotes_MissingUserID(t *testing.T) {
	client, shutdown := startTestGRPCServer(t, "")
	defer shutdown()

	_, err := client.GetStarred(context.Background(), &emptypb.Empty{})
	require.Error(t, err)
	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestStarredNotes_EmptyNoteID(t *testing.T) {
	client, shutdown := startTestGRPCServer(t, "")
	defer shutdown()

	_, err := client.AddStarred(withUser("u1"), wrapperspb.String(""))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStarredNotes_SharedSecret(t *testing.T) {
	client, shutdown := startTestGRPCServer(t, "s3cret")
	defer shutdown()

	_, err := client.GetStarred(withUser("u1"), &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.GetStarred(withUser("u1", starredrpc.AuthorizationMetadataKey, "wrong"), &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.GetStarred(withUser("u1", starredrpc.AuthorizationMetadataKey, "s3cret"), &emptypb.Empty{})
	assert.NoError(t, err)
}

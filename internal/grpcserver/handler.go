package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/interceptor"
	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver/starredrpc"
	"github.com/patric-chuzhbe/atomicnotes/internal/starred"
)

type actorNamespace interface {
	IDFromName(name string) starred.ActorID
	Get(id starred.ActorID) *starred.Actor
}

// StarredNotesHandler serves atomicnotes.StarredNotes over the starred actors.
type StarredNotesHandler struct {
	actors actorNamespace
}

func NewStarredNotesHandler(actors actorNamespace) *StarredNotesHandler {
	return &StarredNotesHandler{actors: actors}
}

func (h *StarredNotesHandler) GetStarred(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	actor, err := h.actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := actor.GetStarred(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to get starred atomic notes")
	}

	return starredrpc.ToListValue(ids), nil
}

func (h *StarredNotesHandler) AddStarred(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	actor, err := h.actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "atomic note id must not be empty")
	}

	ids, err := actor.AddStarred(ctx, req.GetValue())
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to star an atomic note")
	}

	return starredrpc.ToListValue(ids), nil
}

func (h *StarredNotesHandler) RemoveStarred(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	actor, err := h.actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "atomic note id must not be empty")
	}

	ids, err := actor.RemoveStarred(ctx, req.GetValue())
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to unstar an atomic note")
	}

	return starredrpc.ToListValue(ids), nil
}

func (h *StarredNotesHandler) actorFromContext(ctx context.Context) (*starred.Actor, error) {
	userID, ok := interceptor.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing user ID")
	}

	return h.actors.Get(h.actors.IDFromName(userID)), nil
}

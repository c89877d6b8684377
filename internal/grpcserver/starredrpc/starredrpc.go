// Package starredrpc describes the atomicnotes.StarredNotes gRPC service.
// Messages are protobuf well-known types, so no generated code is needed:
//
//	service StarredNotes {
//	  rpc GetStarred(google.protobuf.Empty) returns (google.protobuf.ListValue);
//	  rpc AddStarred(google.protobuf.StringValue) returns (google.protobuf.ListValue);
//	  rpc RemoveStarred(google.protobuf.StringValue) returns (google.protobuf.ListValue);
//	}
//
// The user the call is about travels in the UserIDMetadataKey metadata entry.
package starredrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "atomicnotes.StarredNotes"

	GetStarredMethod    = "/" + ServiceName + "/GetStarred"
	AddStarredMethod    = "/" + ServiceName + "/AddStarred"
	RemoveStarredMethod = "/" + ServiceName + "/RemoveStarred"

	// UserIDMetadataKey carries the user id of a call.
	UserIDMetadataKey = "x-user-id"

	// AuthorizationMetadataKey carries the shared secret between instances.
	AuthorizationMetadataKey = "authorization"
)

// StarredNotesServer is implemented by the gRPC handler.
type StarredNotesServer interface {
	GetStarred(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	AddStarred(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error)
	RemoveStarred(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// RegisterStarredNotesServer registers srv on s.
func RegisterStarredNotesServer(s grpc.ServiceRegistrar, srv StarredNotesServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc is the grpc.ServiceDesc of atomicnotes.StarredNotes.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StarredNotesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStarred", Handler: getStarredHandler},
		{MethodName: "AddStarred", Handler: addStarredHandler},
		{MethodName: "RemoveStarred", Handler: removeStarredHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "atomicnotes/starred.proto",
}

func getStarredHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StarredNotesServer).GetStarred(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStarredMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StarredNotesServer).GetStarred(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func addStarredHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StarredNotesServer).AddStarred(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AddStarredMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StarredNotesServer).AddStarred(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func removeStarredHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StarredNotesServer).RemoveStarred(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RemoveStarredMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StarredNotesServer).RemoveStarred(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// StarredNotesClient calls atomicnotes.StarredNotes.
type StarredNotesClient struct {
	cc grpc.ClientConnInterface
}

func NewStarredNotesClient(cc grpc.ClientConnInterface) *StarredNotesClient {
	return &StarredNotesClient{cc: cc}
}

func (c *StarredNotesClient) GetStarred(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, GetStarredMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StarredNotesClient) AddStarred(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, AddStarredMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StarredNotesClient) RemoveStarred(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, RemoveStarredMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ToListValue converts ids into a ListValue of strings.
func ToListValue(ids []string) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(ids))
	for _, id := range ids {
		values = append(values, structpb.NewStringValue(id))
	}

	return &structpb.ListValue{Values: values}
}

// FromListValue returns the string elements of list.
func FromListValue(list *structpb.ListValue) []string {
	ids := make([]string, 0, len(list.GetValues()))
	for _, value := range list.GetValues() {
		ids = append(ids, value.GetStringValue())
	}

	return ids
}

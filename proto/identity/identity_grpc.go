// Hand-authored in the shape protoc-gen-go-grpc would produce, modeled
// structurally on components/ledger/proto/account/account_grpc.pb.go
// (service descriptor, Unimplemented*Server, per-method _Handler funcs):
// service descriptor, client stub, server interface, and handler funcs,
// wired to a JSON encoding.Codec (internal/transport) instead of protobuf
// wire bytes (see SPEC_FULL.md §4).
package identity

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	IdentityHandler_CreateUser_FullMethodName        = "/identity.IdentityHandler/CreateUser"
	IdentityHandler_GetUser_FullMethodName           = "/identity.IdentityHandler/GetUser"
	IdentityHandler_UpdateUserProfile_FullMethodName = "/identity.IdentityHandler/UpdateUserProfile"
	IdentityHandler_ValidateUser_FullMethodName      = "/identity.IdentityHandler/ValidateUser"
	IdentityHandler_HealthCheck_FullMethodName       = "/identity.IdentityHandler/HealthCheck"
)

// IdentityHandlerClient is the client API for IdentityHandler service.
type IdentityHandlerClient interface {
	CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error)
	UpdateUserProfile(ctx context.Context, in *UpdateUserProfileRequest, opts ...grpc.CallOption) (*UpdateUserProfileResponse, error)
	ValidateUser(ctx context.Context, in *ValidateUserRequest, opts ...grpc.CallOption) (*ValidateUserResponse, error)
	HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type identityHandlerClient struct {
	cc grpc.ClientConnInterface
}

// NewIdentityHandlerClient builds a client stub over an existing channel.
func NewIdentityHandlerClient(cc grpc.ClientConnInterface) IdentityHandlerClient {
	return &identityHandlerClient{cc}
}

func (c *identityHandlerClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	out := new(CreateUserResponse)
	if err := c.cc.Invoke(ctx, IdentityHandler_CreateUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityHandlerClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error) {
	out := new(GetUserResponse)
	if err := c.cc.Invoke(ctx, IdentityHandler_GetUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityHandlerClient) UpdateUserProfile(ctx context.Context, in *UpdateUserProfileRequest, opts ...grpc.CallOption) (*UpdateUserProfileResponse, error) {
	out := new(UpdateUserProfileResponse)
	if err := c.cc.Invoke(ctx, IdentityHandler_UpdateUserProfile_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityHandlerClient) ValidateUser(ctx context.Context, in *ValidateUserRequest, opts ...grpc.CallOption) (*ValidateUserResponse, error) {
	out := new(ValidateUserResponse)
	if err := c.cc.Invoke(ctx, IdentityHandler_ValidateUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityHandlerClient) HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, IdentityHandler_HealthCheck_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// IdentityHandlerServer is the server API for IdentityHandler service.
// All implementations must embed UnimplementedIdentityHandlerServer for
// forward compatibility.
type IdentityHandlerServer interface {
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
	UpdateUserProfile(context.Context, *UpdateUserProfileRequest) (*UpdateUserProfileResponse, error)
	ValidateUser(context.Context, *ValidateUserRequest) (*ValidateUserResponse, error)
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
	mustEmbedUnimplementedIdentityHandlerServer()
}

// UnimplementedIdentityHandlerServer must be embedded to have forward compatible implementations.
type UnimplementedIdentityHandlerServer struct{}

func (UnimplementedIdentityHandlerServer) CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateUser not implemented")
}
func (UnimplementedIdentityHandlerServer) GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedIdentityHandlerServer) UpdateUserProfile(context.Context, *UpdateUserProfileRequest) (*UpdateUserProfileResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateUserProfile not implemented")
}
func (UnimplementedIdentityHandlerServer) ValidateUser(context.Context, *ValidateUserRequest) (*ValidateUserResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ValidateUser not implemented")
}
func (UnimplementedIdentityHandlerServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method HealthCheck not implemented")
}
func (UnimplementedIdentityHandlerServer) mustEmbedUnimplementedIdentityHandlerServer() {}

// UnsafeIdentityHandlerServer may be embedded to opt out of forward compatibility.
type UnsafeIdentityHandlerServer interface {
	mustEmbedUnimplementedIdentityHandlerServer()
}

// RegisterIdentityHandlerServer registers srv with s.
func RegisterIdentityHandlerServer(s grpc.ServiceRegistrar, srv IdentityHandlerServer) {
	s.RegisterService(&IdentityHandler_ServiceDesc, srv)
}

func _IdentityHandler_CreateUser_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateUserRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityHandlerServer).CreateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityHandler_CreateUser_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityHandlerServer).CreateUser(ctx, req.(*CreateUserRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityHandler_GetUser_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetUserRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityHandlerServer).GetUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityHandler_GetUser_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityHandlerServer).GetUser(ctx, req.(*GetUserRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityHandler_UpdateUserProfile_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateUserProfileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityHandlerServer).UpdateUserProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityHandler_UpdateUserProfile_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityHandlerServer).UpdateUserProfile(ctx, req.(*UpdateUserProfileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityHandler_ValidateUser_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ValidateUserRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityHandlerServer).ValidateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityHandler_ValidateUser_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityHandlerServer).ValidateUser(ctx, req.(*ValidateUserRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityHandler_HealthCheck_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityHandlerServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityHandler_HealthCheck_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityHandlerServer).HealthCheck(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// IdentityHandler_ServiceDesc is the grpc.ServiceDesc for IdentityHandler service.
var IdentityHandler_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "identity.IdentityHandler",
	HandlerType: (*IdentityHandlerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateUser", Handler: _IdentityHandler_CreateUser_Handler},
		{MethodName: "GetUser", Handler: _IdentityHandler_GetUser_Handler},
		{MethodName: "UpdateUserProfile", Handler: _IdentityHandler_UpdateUserProfile_Handler},
		{MethodName: "ValidateUser", Handler: _IdentityHandler_ValidateUser_Handler},
		{MethodName: "HealthCheck", Handler: _IdentityHandler_HealthCheck_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/identity/identity.proto",
}

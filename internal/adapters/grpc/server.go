package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/citadelx/marketplace/internal/application"
)

// MarketInternalService is the service-to-service surface: collaborator
// services (the moderation runtime, the dashboard) ask whether an address may
// use a moderator without going through the public HTTP API.
type MarketInternalService interface {
	CheckAccess(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type MarketInternalServer struct {
	service *application.Service
}

func NewMarketInternalServer(service *application.Service) *MarketInternalServer {
	return &MarketInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc MarketInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "citadelx.market.v1.MarketInternalService",
		HandlerType: (*MarketInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "CheckAccess",
				Handler:    checkAccessHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "contracts/proto/market/v1/market_internal.proto",
	}, svc)
}

func (s *MarketInternalServer) CheckAccess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	rawID := fields["moderator_id"].GetStringValue()
	address := fields["address"].GetStringValue()
	if rawID == "" || address == "" {
		return nil, status.Error(codes.InvalidArgument, "moderator_id and address are required")
	}
	moderatorID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid moderator_id")
	}

	allowed, err := s.service.HasAccess(ctx, moderatorID, address)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "check access: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"moderator_id": moderatorID.String(),
		"address":      address,
		"has_access":   allowed,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func checkAccessHandler(svc MarketInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.CheckAccess(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/citadelx.market.v1.MarketInternalService/CheckAccess",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.CheckAccess(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

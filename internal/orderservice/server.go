package orderservice

import (
	"context"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/transport"
	"github.com/coreflux/idorder/proto/order"
	"google.golang.org/grpc/status"
)

// Server adapts a Service to order.OrderHandlerServer, translating proto
// wire messages to/from mmodel types and CORE errors to gRPC status.
type Server struct {
	order.UnimplementedOrderHandlerServer
	service *Service
}

// NewServer constructs a Server over the given Service.
func NewServer(service *Service) *Server {
	return &Server{service: service}
}

// callerUserID prefers the Principal the server interceptor chain (C3)
// resolved onto ctx; it falls back to the request-supplied field only when
// no Principal is present (security mode below Full), so an authenticated
// caller can never act as another user by forging the wire field.
func callerUserID(ctx context.Context, fallback string) string {
	if p, ok := transport.PrincipalFromContext(ctx); ok {
		return p.UserID
	}

	return fallback
}

// CreateOrder implements order.OrderHandlerServer.
func (s *Server) CreateOrder(ctx context.Context, req *order.CreateOrderRequest) (*order.CreateOrderResponse, error) {
	created, err := s.service.CreateOrder(ctx, mmodel.CreateOrderInput{
		UserID:          callerUserID(ctx, req.UserID),
		Items:           toModelItems(req.Items),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return nil, toWireStatus(err)
	}

	return &order.CreateOrderResponse{Order: toWireOrder(created)}, nil
}

// GetOrder implements order.OrderHandlerServer.
func (s *Server) GetOrder(ctx context.Context, req *order.GetOrderRequest) (*order.GetOrderResponse, error) {
	found, err := s.service.GetOrder(ctx, req.OrderID, callerUserID(ctx, ""))
	if err != nil {
		return nil, toWireStatus(err)
	}

	return &order.GetOrderResponse{Order: toWireOrder(found)}, nil
}

// ListUserOrders implements order.OrderHandlerServer.
func (s *Server) ListUserOrders(ctx context.Context, req *order.ListUserOrdersRequest) (*order.ListUserOrdersResponse, error) {
	page, err := s.service.ListUserOrders(ctx, callerUserID(ctx, req.UserID), req.PageSize, req.PageNumber)
	if err != nil {
		return nil, toWireStatus(err)
	}

	orders := make([]order.Order, 0, len(page.Orders))
	for _, o := range page.Orders {
		orders = append(orders, toWireOrder(o))
	}

	return &order.ListUserOrdersResponse{
		Orders:      orders,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
		CurrentPage: page.CurrentPage,
	}, nil
}

// UpdateOrderStatus implements order.OrderHandlerServer.
func (s *Server) UpdateOrderStatus(ctx context.Context, req *order.UpdateOrderStatusRequest) (*order.UpdateOrderStatusResponse, error) {
	updated, err := s.service.UpdateOrderStatus(ctx, req.OrderID, mmodel.OrderStatus(req.Status))
	if err != nil {
		return nil, toWireStatus(err)
	}

	return &order.UpdateOrderStatusResponse{Order: toWireOrder(updated)}, nil
}

// HealthCheck implements order.OrderHandlerServer.
func (s *Server) HealthCheck(context.Context, *order.HealthCheckRequest) (*order.HealthCheckResponse, error) {
	return &order.HealthCheckResponse{Status: "SERVING", Message: "order service healthy"}, nil
}

// toWireStatus maps a Service error to a gRPC status. The Saga's
// compensation path (internal/saga.CompensationError.Status) already
// returns a status error directly; anything else is an apperrors.Error
// routed through the §7 taxonomy table.
func toWireStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	return apperrors.ToGRPCStatus(err)
}

func toModelItems(items []order.Item) []mmodel.OrderItem {
	out := make([]mmodel.OrderItem, 0, len(items))
	for _, i := range items {
		out = append(out, mmodel.OrderItem{ProductID: i.ProductID, Name: i.Name, Quantity: i.Quantity, UnitPrice: i.UnitPrice})
	}

	return out
}

func toWireItems(items []mmodel.OrderItem) []order.Item {
	out := make([]order.Item, 0, len(items))
	for _, i := range items {
		out = append(out, order.Item{ProductID: i.ProductID, Name: i.Name, Quantity: i.Quantity, UnitPrice: i.UnitPrice})
	}

	return out
}

func toWireOrder(o mmodel.Order) order.Order {
	return order.Order{
		OrderID:         o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		Items:           toWireItems(o.Items),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

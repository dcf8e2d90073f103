// Package order holds the wire messages and generated-style gRPC stubs for
// the Order Service (§6). See proto/identity for the JSON-codec rationale.
package order

import "time"

// Item mirrors mmodel.OrderItem on the wire.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Order mirrors mmodel.Order on the wire.
type Order struct {
	OrderID         string    `json:"orderId"`
	UserID          string    `json:"userId"`
	Status          string    `json:"status"`
	TotalAmount     float64   `json:"totalAmount"`
	Items           []Item    `json:"items"`
	ShippingAddress string    `json:"shippingAddress,omitempty"`
	PaymentMethod   string    `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateOrderRequest is CreateOrder's input (§6).
type CreateOrderRequest struct {
	UserID          string `json:"userId"`
	Items           []Item `json:"items"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	PaymentMethod   string `json:"paymentMethod,omitempty"`
}

// CreateOrderResponse is CreateOrder's output (§6).
type CreateOrderResponse struct {
	Order Order `json:"order"`
}

// GetOrderRequest is GetOrder's input (§6).
type GetOrderRequest struct {
	OrderID string `json:"orderId"`
}

// GetOrderResponse is GetOrder's output (§6).
type GetOrderResponse struct {
	Order Order `json:"order"`
}

// ListUserOrdersRequest is ListUserOrders's input (§6).
type ListUserOrdersRequest struct {
	UserID     string `json:"userId"`
	PageSize   int64  `json:"pageSize"`
	PageNumber int64  `json:"pageNumber"`
}

// ListUserOrdersResponse is ListUserOrders's output (§6).
type ListUserOrdersResponse struct {
	Orders      []Order `json:"orders"`
	TotalPages  int64   `json:"totalPages"`
	TotalItems  int64   `json:"totalItems"`
	CurrentPage int64   `json:"currentPage"`
}

// UpdateOrderStatusRequest is UpdateOrderStatus's input (§6).
type UpdateOrderStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// UpdateOrderStatusResponse is UpdateOrderStatus's output (§6).
type UpdateOrderStatusResponse struct {
	Order Order `json:"order"`
}

// HealthCheckRequest is HealthCheck's (empty) input.
type HealthCheckRequest struct{}

// HealthCheckResponse is HealthCheck's output (§6).
type HealthCheckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

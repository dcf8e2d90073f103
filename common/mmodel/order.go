package mmodel

import "time"

// OrderStatus is the externally visible lifecycle state of an Order (§3, §4.7).
type OrderStatus string

// Order statuses and their authoritative transition table live in §4.7.
const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderFailed     OrderStatus = "FAILED"
)

// allowedOrderTransitions is the authoritative table from §4.7.
var allowedOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled, OrderFailed},
	OrderShipped:    {OrderDelivered},
	OrderFailed:     {OrderProcessing},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// CanTransitionTo reports whether moving from the receiver to target is an
// allowed status transition per the §4.7 table.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range allowedOrderTransitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}

// SagaState is the internal saga progress of an Order (§4.7), distinct from
// its externally visible OrderStatus.
type SagaState string

// Saga states (§4.7).
const (
	SagaNotStarted    SagaState = "NOT_STARTED"
	SagaInProgress    SagaState = "IN_PROGRESS"
	SagaUserValidated SagaState = "USER_VALIDATED"
	SagaCompleted     SagaState = "COMPLETED"
	SagaCompensating  SagaState = "COMPENSATING"
	SagaFailed        SagaState = "FAILED"
)

// OrderItem is one line item of an Order (§3).
type OrderItem struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int64   `json:"quantity" validate:"required,min=1"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
}

// Subtotal returns quantity * unitPrice for this line item.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// CreateOrderInput is the payload accepted by CreateOrder.
type CreateOrderInput struct {
	UserID          string      `json:"userId" validate:"required"`
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
}

// Order is the persisted order record (§3). Mutated only by the Saga (C7)
// and by authorized status transitions; in-flight copies are values, never
// shared references.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	TotalAmount     float64
	Status          OrderStatus
	SagaState       SagaState
	ShippingAddress string
	PaymentMethod   string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotal returns the exact sum of each item's subtotal (§4.7 step 2).
func (o Order) ComputeTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}

	return total
}

// Page is a page of orders returned by ListUserOrders.
type Page struct {
	Orders      []Order
	TotalPages  int64
	TotalItems  int64
	CurrentPage int64
}

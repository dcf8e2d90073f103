package orderservice

import (
	"context"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/saga"
)

// Service implements four of the Order Service's RPC operations (§6);
// HealthCheck is answered by Server alone. CreateOrder delegates to the Saga
// (C7); the rest are straightforward reads and a single guarded status
// transition over Repository.
type Service struct {
	repo Repository
	saga *saga.Saga
}

// New constructs a Service over the given Repository and Saga. The Saga
// embeds its own OrderRepository (normally the same Repository), kept
// separate here because CreateOrder is the only operation the saga drives;
// the rest talk to Repository directly.
func New(repo Repository, orderSaga *saga.Saga) *Service {
	return &Service{repo: repo, saga: orderSaga}
}

// CreateOrder implements §6's CreateOrder by running the Saga end to end.
func (s *Service) CreateOrder(ctx context.Context, input mmodel.CreateOrderInput) (mmodel.Order, error) {
	return s.saga.CreateOrder(ctx, input)
}

// GetOrder implements §6's GetOrder: NotFound if absent or not owned by the
// caller.
func (s *Service) GetOrder(ctx context.Context, orderID, callerUserID string) (mmodel.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return mmodel.Order{}, err
	}

	if order.UserID != callerUserID {
		return mmodel.Order{}, apperrors.NewNotFound(orderEntity, "order not found")
	}

	return order, nil
}

// ListUserOrders implements §6's ListUserOrders.
func (s *Service) ListUserOrders(ctx context.Context, userID string, pageSize, pageNumber int64) (mmodel.Page, error) {
	return s.repo.FindByUser(ctx, userID, pageSize, pageNumber)
}

// UpdateOrderStatus implements §6's UpdateOrderStatus: FailedPrecondition on
// a disallowed transition (§4.7's status table), persisted under the
// repository's optimistic concurrency check. Setting status to its current
// value is a permitted no-op (§8's idempotence law) rather than a rejected
// transition, even for terminal statuses with no outgoing edges.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, target mmodel.OrderStatus) (mmodel.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return mmodel.Order{}, err
	}

	if order.Status == target {
		// §8's idempotence law: setting status to its current value is a
		// permitted no-op on persistent state except updatedAt, so this
		// still persists (to refresh updatedAt) rather than being rejected
		// as a disallowed transition — including for terminal statuses with
		// no outgoing edges in the table below.
		return s.repo.Update(ctx, order)
	}

	if !order.Status.CanTransitionTo(target) {
		return mmodel.Order{}, apperrors.NewInvalidTransition(string(order.Status), string(target))
	}

	order.Status = target

	return s.repo.Update(ctx, order)
}

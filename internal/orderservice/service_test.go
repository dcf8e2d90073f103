package orderservice

import (
	"context"
	"testing"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeOrderRepo struct {
	orders  map[string]mmodel.Order
	nextID  int
	byUser  map[string][]string
	updated []mmodel.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]mmodel.Order{}, byUser: map[string][]string{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order mmodel.Order) (mmodel.Order, error) {
	r.nextID++
	order.ID = "order-" + string(rune('0'+r.nextID))
	order.Version = 1
	r.orders[order.ID] = order
	r.byUser[order.UserID] = append(r.byUser[order.UserID], order.ID)

	return order, nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orderID string) (mmodel.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return mmodel.Order{}, apperrors.NewNotFound(orderEntity, "not found")
	}

	return o, nil
}

func (r *fakeOrderRepo) FindByUser(_ context.Context, userID string, pageSize, pageNumber int64) (mmodel.Page, error) {
	ids := r.byUser[userID]

	var orders []mmodel.Order
	for _, id := range ids {
		orders = append(orders, r.orders[id])
	}

	return mmodel.Page{Orders: orders, TotalItems: int64(len(orders)), TotalPages: 1, CurrentPage: pageNumber}, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order mmodel.Order) (mmodel.Order, error) {
	order.Version++
	r.orders[order.ID] = order
	r.updated = append(r.updated, order)

	return order, nil
}

type fakeValidator struct {
	valid bool
	err   error
}

func (v fakeValidator) IsValidForOrder(context.Context, string) (bool, error) {
	return v.valid, v.err
}

func sampleCreateOrderInput() mmodel.CreateOrderInput {
	return mmodel.CreateOrderInput{
		UserID: "user-1",
		Items:  []mmodel.OrderItem{{ProductID: "p1", Name: "widget", Quantity: 2, UnitPrice: 9.5}},
	}
}

func TestService_CreateOrder_HappyPath(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())

	require.NoError(t, err)
	assert.Equal(t, mmodel.OrderConfirmed, created.Status)
	assert.Equal(t, 19.0, created.TotalAmount)
}

func TestService_CreateOrder_CompensatesOnInvalidUser(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: false}))

	_, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())

	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestService_GetOrder_NotFoundWhenNotOwned(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), created.ID, "someone-else")

	var appErr apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
}

func TestService_GetOrder_SucceedsForOwner(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	found, err := svc.GetOrder(context.Background(), created.ID, "user-1")

	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestService_ListUserOrders_ReturnsPage(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	_, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	page, err := svc.ListUserOrders(context.Background(), "user-1", 10, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestService_UpdateOrderStatus_AllowsValidTransition(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), created.ID, mmodel.OrderProcessing)

	require.NoError(t, err)
	assert.Equal(t, mmodel.OrderProcessing, updated.Status)
}

func TestService_UpdateOrderStatus_RejectsDisallowedTransition(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), created.ID, mmodel.OrderDelivered)

	var appErr apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindInvalidTransition, appErr.Kind)
}

func TestService_UpdateOrderStatus_SameStatusIsPermittedNoOp(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), created.ID, created.Status)

	require.NoError(t, err)
	assert.Equal(t, created.Status, updated.Status)
}

func TestService_UpdateOrderStatus_SameStatusIsPermittedForTerminalStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, saga.New(repo, fakeValidator{valid: true}))

	created, err := svc.CreateOrder(context.Background(), sampleCreateOrderInput())
	require.NoError(t, err)

	delivered := created
	delivered.Status = mmodel.OrderDelivered
	repo.orders[delivered.ID] = delivered

	updated, err := svc.UpdateOrderStatus(context.Background(), delivered.ID, mmodel.OrderDelivered)

	require.NoError(t, err)
	assert.Equal(t, mmodel.OrderDelivered, updated.Status)
}

package saga

import (
	"context"
	"testing"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeRepo struct {
	orders    map[string]mmodel.Order
	nextID    int
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[string]mmodel.Order{}}
}

func (r *fakeRepo) Create(_ context.Context, order mmodel.Order) (mmodel.Order, error) {
	r.nextID++
	order.ID = "order-" + string(rune('0'+r.nextID))
	order.Version = 1
	r.orders[order.ID] = order

	return order, nil
}

func (r *fakeRepo) Update(_ context.Context, order mmodel.Order) (mmodel.Order, error) {
	if r.updateErr != nil {
		return mmodel.Order{}, r.updateErr
	}

	order.Version++
	r.orders[order.ID] = order

	return order, nil
}

type fakeValidator struct {
	valid bool
	err   error
}

func (f fakeValidator) IsValidForOrder(context.Context, string) (bool, error) {
	return f.valid, f.err
}

func sampleInput() mmodel.CreateOrderInput {
	return mmodel.CreateOrderInput{
		UserID: "user-1",
		Items:  []mmodel.OrderItem{{ProductID: "p1", Name: "widget", Quantity: 2, UnitPrice: 9.5}},
	}
}

func TestSaga_CreateOrder_CompletesOnValidUser(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, fakeValidator{valid: true})

	order, err := s.CreateOrder(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, mmodel.OrderConfirmed, order.Status)
	assert.Equal(t, mmodel.SagaCompleted, order.SagaState)
	assert.Equal(t, 19.0, order.TotalAmount)
}

func TestSaga_CreateOrder_CompensatesOnInvalidUser(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, fakeValidator{valid: false})

	order, err := s.CreateOrder(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, mmodel.OrderCancelled, order.Status)
	assert.Equal(t, mmodel.SagaFailed, order.SagaState)
}

func TestSaga_CreateOrder_CompensatesOnRemoteUnavailable(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, fakeValidator{err: status.Error(codes.Unavailable, "down")})

	order, err := s.CreateOrder(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, mmodel.OrderCancelled, order.Status)
}

func TestSaga_CreateOrder_CompensatesOnRemoteDeadline(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, fakeValidator{err: status.Error(codes.DeadlineExceeded, "slow")}, WithValidateDeadline(10*time.Millisecond))

	order, err := s.CreateOrder(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	assert.Equal(t, mmodel.OrderCancelled, order.Status)
}

func TestSaga_CreateOrder_RejectsEmptyItems(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, fakeValidator{valid: true})

	input := sampleInput()
	input.Items = nil

	_, err := s.CreateOrder(context.Background(), input)
	require.Error(t, err)

	var appErr apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindInvalidInput, appErr.Kind)
}

func TestSaga_CreateOrder_RejectsZeroQuantity(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, fakeValidator{valid: true})

	input := sampleInput()
	input.Items[0].Quantity = 0

	_, err := s.CreateOrder(context.Background(), input)
	require.Error(t, err)
}

func TestSaga_CreateOrder_PropagatesVersionConflictWithoutRetry(t *testing.T) {
	repo := newFakeRepo()
	repo.updateErr = apperrors.NewVersionConflict("order")
	s := New(repo, fakeValidator{valid: true})

	_, err := s.CreateOrder(context.Background(), sampleInput())
	require.Error(t, err)

	var appErr apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindVersionConflict, appErr.Kind)
}

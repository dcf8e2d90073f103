// Package saga implements the Order Saga (C7): the short, in-process state
// machine executed per CreateOrder request (§4.7). No teacher saga exists
// (midaz has no saga of this kind); the state machine is authored fresh from
// §4.7 directly, in the teacher's general "struct with injected
// repositories, one method per use case" style seen throughout
// components/*/internal/services/command.
package saga

import (
	"context"
	"time"

	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/common/mvalidate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// defaultValidateDeadline is §4.7 step 3's "Deadline 2 s".
const defaultValidateDeadline = 2 * time.Second

// OrderRepository is the persistence port the saga drives through. Update
// MUST enforce optimistic concurrency keyed by Order.Version (§4.7:
// "Concurrency within an Order") and fail with a KindVersionConflict Error
// on a mismatch; the saga does not retry on that failure, it propagates it.
type OrderRepository interface {
	Create(ctx context.Context, order mmodel.Order) (mmodel.Order, error)
	Update(ctx context.Context, order mmodel.Order) (mmodel.Order, error)
}

// UserValidator is the C6-shaped port consulted at step 3. The Validation
// Cache (internal/validationcache.Cache) satisfies this directly.
type UserValidator interface {
	IsValidForOrder(ctx context.Context, userID string) (bool, error)
}

// CompensationReason classifies why CreateOrder compensated instead of
// completing (§4.7 step 5: "Respond with the failure classification
// appropriate to the cause").
type CompensationReason string

// Compensation reasons (§4.7 step 5).
const (
	ReasonNegativeValidation CompensationReason = "negative_validation"
	ReasonRemoteUnavailable  CompensationReason = "remote_unavailable"
	ReasonRemoteDeadline     CompensationReason = "remote_deadline"
)

// CompensationError is returned when the saga compensates. It sits above
// the CORE's apperrors taxonomy rather than inside it: §7's kind list
// covers component-local failures, while this classification is specific
// to how the order service's CreateOrder boundary reports saga outcomes.
type CompensationError struct {
	Reason CompensationReason
	Order  mmodel.Order
	Err    error
}

// Error implements the error interface.
func (e *CompensationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Reason)
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e *CompensationError) Unwrap() error {
	return e.Err
}

// Status maps Reason to the §4.7 step-5 gRPC status.
func (e *CompensationError) Status() error {
	switch e.Reason {
	case ReasonNegativeValidation:
		return status.Error(codes.FailedPrecondition, "user is not valid for order")
	case ReasonRemoteDeadline:
		return status.Error(codes.DeadlineExceeded, "user validation timed out")
	default:
		return status.Error(codes.Unavailable, "could not validate user")
	}
}

// Saga drives a single CreateOrder request through §4.7's state machine.
type Saga struct {
	repo             OrderRepository
	validator        UserValidator
	now              func() time.Time
	validateDeadline time.Duration
	logger           mlog.Logger
}

// Option configures a Saga.
type Option func(*Saga)

// WithClock overrides the injected clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Saga) { s.now = now }
}

// WithValidateDeadline overrides step 3's validation deadline.
func WithValidateDeadline(d time.Duration) Option {
	return func(s *Saga) { s.validateDeadline = d }
}

// WithLogger attaches a logger used when persisting a compensation fails.
func WithLogger(logger mlog.Logger) Option {
	return func(s *Saga) { s.logger = logger }
}

// New builds a Saga.
func New(repo OrderRepository, validator UserValidator, opts ...Option) *Saga {
	s := &Saga{
		repo:             repo,
		validator:        validator,
		now:              time.Now,
		validateDeadline: defaultValidateDeadline,
		logger:           mlog.FromContext(context.Background()),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateOrder runs every step of §4.7: validate input, persist PENDING,
// validate the user through C6, then confirm or compensate.
func (s *Saga) CreateOrder(ctx context.Context, input mmodel.CreateOrderInput) (mmodel.Order, error) {
	if err := validateInput(input); err != nil {
		return mmodel.Order{}, err
	}

	now := s.now()
	order := mmodel.Order{
		UserID:          input.UserID,
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          mmodel.OrderPending,
		SagaState:       mmodel.SagaNotStarted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.TotalAmount = order.ComputeTotal()

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return mmodel.Order{}, err
	}

	created.SagaState = mmodel.SagaInProgress
	created.UpdatedAt = s.now()

	created, err = s.repo.Update(ctx, created)
	if err != nil {
		return mmodel.Order{}, err
	}

	valid, err := s.validateUser(ctx, created.UserID)
	if err != nil {
		return s.compensate(ctx, created, classifyValidateErr(err))
	}

	if !valid {
		return s.compensate(ctx, created, &CompensationError{Reason: ReasonNegativeValidation})
	}

	return s.confirm(ctx, created)
}

func (s *Saga) validateUser(ctx context.Context, userID string) (bool, error) {
	vctx, cancel := context.WithTimeout(ctx, s.validateDeadline)
	defer cancel()

	return s.validator.IsValidForOrder(vctx, userID)
}

func classifyValidateErr(err error) *CompensationError {
	if status.Code(err) == codes.DeadlineExceeded {
		return &CompensationError{Reason: ReasonRemoteDeadline, Err: err}
	}

	return &CompensationError{Reason: ReasonRemoteUnavailable, Err: err}
}

// confirm transitions USER_VALIDATED → COMPLETED, persisting each step
// before the next begins (§4.7: "Durability of saga state").
func (s *Saga) confirm(ctx context.Context, order mmodel.Order) (mmodel.Order, error) {
	order.SagaState = mmodel.SagaUserValidated
	order.UpdatedAt = s.now()

	order, err := s.repo.Update(ctx, order)
	if err != nil {
		return mmodel.Order{}, err
	}

	order.Status = mmodel.OrderConfirmed
	order.SagaState = mmodel.SagaCompleted
	order.UpdatedAt = s.now()

	return s.repo.Update(ctx, order)
}

// compensate transitions IN_PROGRESS → COMPENSATING → FAILED, persisting
// each step before the next begins.
func (s *Saga) compensate(ctx context.Context, order mmodel.Order, reason *CompensationError) (mmodel.Order, error) {
	order.SagaState = mmodel.SagaCompensating
	order.UpdatedAt = s.now()

	order, err := s.repo.Update(ctx, order)
	if err != nil {
		s.logger.Errorf("saga: failed to persist COMPENSATING for order %s: %v", order.ID, err)
		return mmodel.Order{}, err
	}

	order.Status = mmodel.OrderCancelled
	order.SagaState = mmodel.SagaFailed
	order.UpdatedAt = s.now()

	order, err = s.repo.Update(ctx, order)
	if err != nil {
		return mmodel.Order{}, err
	}

	reason.Order = order

	return order, reason.Status()
}

// validateInput implements §4.7 step 1.
func validateInput(input mmodel.CreateOrderInput) error {
	return mvalidate.Struct(input)
}

package identityservice

import (
	"context"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/common/mvalidate"
	"golang.org/x/crypto/bcrypt"
)

// Service implements four of the Identity Service's RPC operations (§6) over
// a Repository; HealthCheck is answered by Server alone. One method per use case, mirroring the teacher's command/query
// UseCase split (components/ledger/internal/services/command/create-asset.go)
// collapsed into a single struct since this service has no separate
// query-side cache to warrant splitting command from query.
type Service struct {
	repo Repository
	now  func() time.Time
}

// Option customizes a Service at construction time.
type Option func(*Service)

// WithClock overrides the Service's notion of "now", for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a Service over the given Repository.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateUser implements §6's CreateUser: validates input, hashes the
// password, and persists a new User. Fails AlreadyExists on duplicate
// username/email (surfaced by the repository's unique-constraint
// classification) and InvalidInput on malformed fields.
func (s *Service) CreateUser(ctx context.Context, input mmodel.CreateUserInput) (mmodel.User, error) {
	if err := validateCreateUserInput(input); err != nil {
		return mmodel.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return mmodel.User{}, apperrors.Wrap(apperrors.KindUnexpected, "hash password", err)
	}

	user := mmodel.User{
		Username:        input.Username,
		Email:           input.Email,
		PasswordHash:    string(hash),
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Phone:           input.Phone,
		IsActive:        true,
		IsEmailVerified: false,
	}

	return s.repo.Create(ctx, user)
}

func validateCreateUserInput(input mmodel.CreateUserInput) error {
	return mvalidate.Struct(input)
}

// GetUser implements §6's GetUser: NotFound if absent.
func (s *Service) GetUser(ctx context.Context, userID string) (mmodel.Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return mmodel.Profile{}, err
	}

	return user.ToProfile(), nil
}

// UpdateUserProfile implements §6's UpdateUserProfile: a partial update of
// the mutable profile fields, applied under the repository's optimistic
// concurrency check. Authorization (target user or administrative role) is
// enforced by the caller, which holds the authenticated Principal.
func (s *Service) UpdateUserProfile(ctx context.Context, userID string, input mmodel.UpdateUserProfileInput) (mmodel.Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return mmodel.Profile{}, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}

	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return mmodel.Profile{}, err
	}

	return updated.ToProfile(), nil
}

// ValidateUser implements §6's ValidateUser: the service-to-service check
// backing the Order Service's Saga validation step (§4.7), evaluating the
// same isValidForOrder predicate the Validation Cache (C6) warms and reads.
func (s *Service) ValidateUser(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	return user.IsValidForOrder(), nil
}

package identityservice

import (
	"context"
	"errors"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/transport"
	"github.com/coreflux/idorder/proto/identity"
)

// AdminAuthority is the role that, per §6's UpdateUserProfile authorization
// rule ("caller must be the target user or hold an administrative role"),
// bypasses the self-only check.
const AdminAuthority = "admin"

// Server adapts a Service to identity.IdentityHandlerServer, translating
// proto wire messages to/from mmodel types and CORE errors to gRPC status
// via apperrors.ToGRPCStatus.
type Server struct {
	identity.UnimplementedIdentityHandlerServer
	service *Service
}

// NewServer constructs a Server over the given Service.
func NewServer(service *Service) *Server {
	return &Server{service: service}
}

// CreateUser implements identity.IdentityHandlerServer.
func (s *Server) CreateUser(ctx context.Context, req *identity.CreateUserRequest) (*identity.CreateUserResponse, error) {
	user, err := s.service.CreateUser(ctx, mmodel.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return nil, apperrors.ToGRPCStatus(err)
	}

	profile := user.ToProfile()

	return &identity.CreateUserResponse{
		UserID:    user.ID,
		Profile:   toWireProfile(profile),
		CreatedAt: profile.CreatedAt,
		Message:   "user created",
	}, nil
}

// GetUser implements identity.IdentityHandlerServer.
func (s *Server) GetUser(ctx context.Context, req *identity.GetUserRequest) (*identity.GetUserResponse, error) {
	profile, err := s.service.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, apperrors.ToGRPCStatus(err)
	}

	return &identity.GetUserResponse{Profile: toWireProfile(profile)}, nil
}

// UpdateUserProfile implements identity.IdentityHandlerServer. §6 requires
// the caller be the target user or hold an administrative role; this is
// enforced here, against the Principal the server interceptor chain (C3)
// placed on ctx, rather than in C3's generic per-method policy map, since it
// needs to compare the caller's identity against the request's target id.
func (s *Server) UpdateUserProfile(ctx context.Context, req *identity.UpdateUserProfileRequest) (*identity.UpdateUserProfileResponse, error) {
	if err := requireSelfOrAdmin(ctx, req.UserID); err != nil {
		return nil, err
	}

	profile, err := s.service.UpdateUserProfile(ctx, req.UserID, mmodel.UpdateUserProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return nil, apperrors.ToGRPCStatus(err)
	}

	return &identity.UpdateUserProfileResponse{Profile: toWireProfile(profile)}, nil
}

func requireSelfOrAdmin(ctx context.Context, targetUserID string) error {
	p, ok := transport.PrincipalFromContext(ctx)
	if !ok {
		return apperrors.ToGRPCStatus(apperrors.New(apperrors.KindPolicyDenied, "no authenticated principal"))
	}

	if p.UserID == targetUserID || p.HasAuthority(AdminAuthority) {
		return nil
	}

	return apperrors.ToGRPCStatus(apperrors.New(apperrors.KindPolicyDenied, "caller may only update its own profile"))
}

// ValidateUser implements identity.IdentityHandlerServer: the
// service-to-service predicate the Order Service's Saga (C7) and Validation
// Cache (C6) consult.
func (s *Server) ValidateUser(ctx context.Context, req *identity.ValidateUserRequest) (*identity.ValidateUserResponse, error) {
	valid, err := s.service.ValidateUser(ctx, req.UserID)
	if err != nil {
		var notFound apperrors.Error
		if errors.As(err, &notFound) && notFound.Kind == apperrors.KindNotFound {
			return &identity.ValidateUserResponse{Valid: false, UserID: req.UserID, Message: "user not found"}, nil
		}

		return nil, apperrors.ToGRPCStatus(err)
	}

	msg := "user is valid for orders"
	if !valid {
		msg = "user is not valid for orders"
	}

	return &identity.ValidateUserResponse{Valid: valid, UserID: req.UserID, Message: msg}, nil
}

// HealthCheck implements identity.IdentityHandlerServer.
func (s *Server) HealthCheck(context.Context, *identity.HealthCheckRequest) (*identity.HealthCheckResponse, error) {
	return &identity.HealthCheckResponse{Status: "SERVING", Message: "identity service healthy"}, nil
}

func toWireProfile(p mmodel.Profile) identity.Profile {
	return identity.Profile{
		UserID:    p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}

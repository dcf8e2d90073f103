package orderservice

import (
	"context"

	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/proto/identity"
)

// RemoteUserLookup adapts identity.IdentityHandlerClient to
// internal/validationcache.UserLookup, so the Order Service can front its
// own Redis-backed Validation Cache (C6) over a remote authoritative lookup
// instead of a local one. ValidateUser already evaluates isValidForOrder
// server-side and returns only a bool; FindByID synthesizes the minimal
// mmodel.User whose own IsValidForOrder() reproduces that same verdict, so
// the cache's read-through logic (authored once, against a User-shaped
// lookup) does not need a second code path for the remote case.
type RemoteUserLookup struct {
	client identity.IdentityHandlerClient
}

// NewRemoteUserLookup builds a RemoteUserLookup over the given Identity
// Service client stub, for cmd/orderservice to hand to
// internal/validationcache.New.
func NewRemoteUserLookup(client identity.IdentityHandlerClient) *RemoteUserLookup {
	return &RemoteUserLookup{client: client}
}

// FindByID implements validationcache.UserLookup.
func (l *RemoteUserLookup) FindByID(ctx context.Context, userID string) (mmodel.User, error) {
	resp, err := l.client.ValidateUser(ctx, &identity.ValidateUserRequest{UserID: userID})
	if err != nil {
		return mmodel.User{}, err
	}

	return mmodel.User{
		ID:              userID,
		IsActive:        resp.Valid,
		IsEmailVerified: resp.Valid,
	}, nil
}

package identityservice

import (
	"context"
	"testing"

	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/transport"
	"github.com/coreflux/idorder/proto/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestServer_CreateUser_HappyPath(t *testing.T) {
	repo := newFakeRepo()
	srv := NewServer(New(repo))

	resp, err := srv.CreateUser(context.Background(), &identity.CreateUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "Alice@123",
		FirstName: "Alice", LastName: "Johnson",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Profile.Username)
	assert.NotEmpty(t, resp.UserID)
}

func TestServer_UpdateUserProfile_RejectsOtherUserWithoutAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)
	srv := NewServer(svc)

	created, err := svc.CreateUser(context.Background(), sampleCreateInput())
	require.NoError(t, err)

	ctx := transport.WithPrincipal(context.Background(), mmodel.Principal{UserID: "someone-else"})
	newName := "Eve"

	_, err = srv.UpdateUserProfile(ctx, &identity.UpdateUserProfileRequest{UserID: created.ID, FirstName: &newName})

	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestServer_UpdateUserProfile_AllowsAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)
	srv := NewServer(svc)

	created, err := svc.CreateUser(context.Background(), sampleCreateInput())
	require.NoError(t, err)

	ctx := transport.WithPrincipal(context.Background(), mmodel.Principal{UserID: "admin-user", Authorities: []string{AdminAuthority}})
	newName := "Eve"

	resp, err := srv.UpdateUserProfile(ctx, &identity.UpdateUserProfileRequest{UserID: created.ID, FirstName: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Eve", resp.Profile.FirstName)
}

func TestServer_UpdateUserProfile_AllowsSelf(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)
	srv := NewServer(svc)

	created, err := svc.CreateUser(context.Background(), sampleCreateInput())
	require.NoError(t, err)

	ctx := transport.WithPrincipal(context.Background(), mmodel.Principal{UserID: created.ID})
	newName := "Eve"

	resp, err := srv.UpdateUserProfile(ctx, &identity.UpdateUserProfileRequest{UserID: created.ID, FirstName: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Eve", resp.Profile.FirstName)
}

func TestServer_ValidateUser_ReturnsFalseMessageForUnknownUser(t *testing.T) {
	repo := newFakeRepo()
	srv := NewServer(New(repo))

	resp, err := srv.ValidateUser(context.Background(), &identity.ValidateUserRequest{UserID: "missing"})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "missing", resp.UserID)
}

func TestServer_HealthCheck(t *testing.T) {
	srv := NewServer(New(newFakeRepo()))

	resp, err := srv.HealthCheck(context.Background(), &identity.HealthCheckRequest{})

	require.NoError(t, err)
	assert.Equal(t, "SERVING", resp.Status)
}

package principal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[string]mmodel.User
	calls int
}

func (f *fakeDirectory) FindByUsername(_ context.Context, username string) (mmodel.User, error) {
	f.calls++

	u, ok := f.users[username]
	if !ok {
		return mmodel.User{}, errors.New("not found")
	}

	return u, nil
}

func TestResolver_Resolve_ActiveUser(t *testing.T) {
	dir := &fakeDirectory{users: map[string]mmodel.User{
		"alice": {ID: "u-1", Username: "alice", IsActive: true, Roles: []string{"member"}},
	}}

	r := New(dir, time.Minute)

	p, err := r.Resolve(context.Background(), mmodel.Claims{Subject: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, mmodel.AccountActive, p.AccountStatus)
}

func TestResolver_Resolve_DisabledUser(t *testing.T) {
	dir := &fakeDirectory{users: map[string]mmodel.User{
		"bob": {ID: "u-2", Username: "bob", IsActive: false},
	}}

	r := New(dir, time.Minute)

	_, err := r.Resolve(context.Background(), mmodel.Claims{Subject: "bob"})
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindAccountDisabled, appErr.Kind)
}

func TestResolver_Resolve_UnknownSubject(t *testing.T) {
	dir := &fakeDirectory{users: map[string]mmodel.User{}}
	r := New(dir, time.Minute)

	_, err := r.Resolve(context.Background(), mmodel.Claims{Subject: "ghost"})
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindUnknownSubject, appErr.Kind)
}

func TestResolver_Resolve_CachesWithinTTL(t *testing.T) {
	dir := &fakeDirectory{users: map[string]mmodel.User{
		"alice": {ID: "u-1", Username: "alice", IsActive: true},
	}}

	r := New(dir, time.Hour)

	_, err := r.Resolve(context.Background(), mmodel.Claims{Subject: "alice"})
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), mmodel.Claims{Subject: "alice"})
	require.NoError(t, err)

	assert.Equal(t, 1, dir.calls, "second resolve should be served from cache")
}

func TestResolver_ResolveFromClaimsOnly(t *testing.T) {
	r := New(nil, time.Minute)

	p, err := r.Resolve(context.Background(), mmodel.Claims{Subject: "alice", Roles: []string{"member"}})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)
	assert.Equal(t, []string{"member"}, p.Authorities)
}

func TestResolver_ResolveFromClaimsOnly_MissingSubject(t *testing.T) {
	r := New(nil, time.Minute)

	_, err := r.ResolveFromClaimsOnly(mmodel.Claims{})
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindUnknownSubject, appErr.Kind)
}

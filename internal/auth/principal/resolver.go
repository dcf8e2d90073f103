// Package principal implements the Principal Resolver (C2): converting a
// verified claim set into a Principal, optionally enriched from a user
// directory (§4.2). Grounded on common/net/http/withJWT.go's JWKProvider,
// which guards a patrickmn/go-cache instance behind a sync.Once — the same
// shape, generalized from caching fetched JWK sets to caching resolved
// Principals.
package principal

import (
	"context"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is the §4.2 default bounded TTL for cached resolutions.
const DefaultCacheTTL = 5 * time.Minute

// Directory is the user-directory collaborator consulted by resolve. It is
// an external collaborator from C2's point of view; the identity service
// supplies the concrete implementation backed by Postgres.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (mmodel.User, error)
}

// Clock supplies "now" for evaluating a user's lock status
// (User.AccountStatusAt); cached entries expire on go-cache's own clock.
type Clock func() time.Time

// Resolver implements resolve/resolveFromClaimsOnly (§4.2).
type Resolver struct {
	directory Directory
	cache     *gocache.Cache
	now       Clock
}

// New constructs a Resolver. directory may be nil, in which case Resolve
// always falls back to ResolveFromClaimsOnly's behavior — the allowed
// fallback when no directory is configured (§4.2).
func New(directory Directory, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Resolver{
		directory: directory,
		cache:     gocache.New(ttl, ttl),
		now:       time.Now,
	}
}

// Resolve converts claims into a Principal, consulting the directory by
// `sub` (username) (§4.2). On directory hit, the Principal reflects the
// current stored status; disabled/locked users yield a resolution error
// rather than a silently-accepted Principal. On directory miss, resolution
// fails with KindUnknownSubject. Resolution errors are not retried (§4.2:
// "Failure policy").
func (r *Resolver) Resolve(ctx context.Context, claims mmodel.Claims) (mmodel.Principal, error) {
	if r.directory == nil {
		return r.ResolveFromClaimsOnly(claims)
	}

	if cached, found := r.cache.Get(claims.Subject); found {
		p, ok := cached.(mmodel.Principal)
		if ok {
			return p, nil
		}
	}

	user, err := r.directory.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return mmodel.Principal{}, apperrors.Wrap(apperrors.KindUnknownSubject, "subject not found in directory", err)
	}

	status := user.AccountStatusAt(r.now())
	if status != mmodel.AccountActive {
		return mmodel.Principal{}, apperrors.New(apperrors.KindAccountDisabled, "account is "+string(status))
	}

	p := mmodel.Principal{
		UserID:        user.ID,
		Username:      user.Username,
		Authorities:   user.Roles,
		AccountStatus: status,
	}

	r.cache.SetDefault(claims.Subject, p)

	return p, nil
}

// ResolveFromClaimsOnly trusts claims verbatim, with no directory
// consultation — the allowed fallback used when no directory is configured
// (§4.2).
func (r *Resolver) ResolveFromClaimsOnly(claims mmodel.Claims) (mmodel.Principal, error) {
	if claims.Subject == "" {
		return mmodel.Principal{}, apperrors.New(apperrors.KindUnknownSubject, "claims carry no subject")
	}

	return mmodel.Principal{
		UserID:        claims.Subject,
		Username:      claims.Subject,
		Authorities:   claims.Roles,
		AccountStatus: mmodel.AccountActive,
	}, nil
}

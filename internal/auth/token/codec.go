// Package token implements the Token Codec (C1): issuing and verifying
// signed tokens that bind to a claim set (§3, §4.1). Grounded on the
// teacher's use of github.com/golang-jwt in common/net/http/withJWT.go,
// generalized from RS256-over-JWKS (an external IdP) to HMAC-over-a-shared
// secret, since this spec has no external identity provider: the Token
// Codec itself is the issuer.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config is the Token Codec's configuration surface (§6: jwt.secret,
// jwt.issuer, jwt.audience) plus the clock-skew leeway
// (§4.1: "tolerant of clock skew only if explicitly configured"). The token
// lifetime is not part of Config: Issue takes it as its ttl argument.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
	Now      func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}

	return time.Now()
}

// Codec issues and verifies tokens. It is a pure function over (key, token);
// reentrant and safe for concurrent invocation (§4.1: "Thread-safety").
type Codec struct {
	cfg Config
}

// New constructs a Codec from Config.
func New(cfg Config) *Codec {
	return &Codec{cfg: cfg}
}

type claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Issue produces a signed token for principal, valid for ttl (§4.1:
// "issue(principal, ttl) → token"). Fails with KindTokenIssuanceError if the
// configured key is unusable.
func (c *Codec) Issue(principal mmodel.Principal, ttl time.Duration) (string, error) {
	now := c.cfg.now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Roles: principal.Authorities,
	})

	signed, err := tok.SignedString(c.cfg.Secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindTokenIssuanceError, "failed to sign token", err)
	}

	return signed, nil
}

// Verify parses and validates a token, returning its decoded Claims
// (§4.1: "verify(token) → Claims"). Fails with a distinct error kind for
// each violation: Malformed, BadSignature, Expired, WrongIssuer,
// WrongAudience, MissingRequiredClaim.
func (c *Codec) Verify(tokenString string) (mmodel.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return c.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithLeeway(c.cfg.Leeway),
		jwt.WithTimeFunc(c.cfg.now),
	)

	if err != nil {
		return mmodel.Claims{}, classifyVerifyError(err)
	}

	claimSet, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return mmodel.Claims{}, apperrors.New(apperrors.KindMalformed, "malformed token")
	}

	if claimSet.Subject == "" {
		return mmodel.Claims{}, apperrors.New(apperrors.KindMissingRequiredClaim, "missing sub claim")
	}

	if claimSet.ExpiresAt == nil {
		return mmodel.Claims{}, apperrors.New(apperrors.KindMissingRequiredClaim, "missing exp claim")
	}

	return mmodel.Claims{
		Subject:   claimSet.Subject,
		Issuer:    claimSet.Issuer,
		Audience:  firstAudience(claimSet.Audience),
		IssuedAt:  numericDateUnix(claimSet.IssuedAt),
		ExpiresAt: numericDateUnix(claimSet.ExpiresAt),
		Roles:     claimSet.Roles,
		ID:        claimSet.ID,
	}, nil
}

func classifyVerifyError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.KindExpired, "token expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.KindBadSignature, "signature invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return apperrors.Wrap(apperrors.KindWrongIssuer, "unexpected issuer", err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return apperrors.Wrap(apperrors.KindWrongAudience, "unexpected audience", err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return apperrors.Wrap(apperrors.KindMissingRequiredClaim, "required claim missing", err)
	default:
		return apperrors.Wrap(apperrors.KindMalformed, "malformed token", err)
	}
}

func newJTI() string {
	return uuid.NewString()
}

func firstAudience(aud jwt.ClaimStrings) string {
	if len(aud) == 0 {
		return ""
	}

	return aud[0]
}

func numericDateUnix(d *jwt.NumericDate) int64 {
	if d == nil {
		return 0
	}

	return d.Unix()
}

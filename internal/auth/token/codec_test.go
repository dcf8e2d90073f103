package token

import (
	"errors"
	"testing"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCodec(now func() time.Time) *Codec {
	return New(Config{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "idorder",
		Audience: "idorder-clients",
		Now:      now,
	})
}

func TestCodec_IssueAndVerify_RoundTrip(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	codec := newTestCodec(fixedClock(base))

	principal := mmodel.Principal{UserID: "user-1", Authorities: []string{"admin"}}

	tok, err := codec.Issue(principal, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "idorder", claims.Issuer)
	assert.Equal(t, "idorder-clients", claims.Audience)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.Equal(t, base.Unix(), claims.IssuedAt)
	assert.Equal(t, base.Add(time.Hour).Unix(), claims.ExpiresAt)
}

func TestCodec_Verify_Expired(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issueCodec := newTestCodec(fixedClock(base))

	tok, err := issueCodec.Issue(mmodel.Principal{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	verifyCodec := newTestCodec(fixedClock(base.Add(2 * time.Minute)))

	_, err = verifyCodec.Verify(tok)
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindExpired, appErr.Kind)
}

func TestCodec_Verify_WrongIssuer(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	issuerA := New(Config{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "issuer-a", Audience: "aud", Now: fixedClock(base)})
	issuerB := New(Config{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "issuer-b", Audience: "aud", Now: fixedClock(base)})

	tok, err := issuerA.Issue(mmodel.Principal{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = issuerB.Verify(tok)
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindWrongIssuer, appErr.Kind)
}

func TestCodec_Verify_WrongAudience(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	audA := New(Config{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "idorder", Audience: "aud-a", Now: fixedClock(base)})
	audB := New(Config{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "idorder", Audience: "aud-b", Now: fixedClock(base)})

	tok, err := audA.Issue(mmodel.Principal{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = audB.Verify(tok)
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindWrongAudience, appErr.Kind)
}

func TestCodec_Verify_BadSignature(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signer := newTestCodec(fixedClock(base))
	verifier := New(Config{Secret: []byte("different-secret-different-secre"), Issuer: "idorder", Audience: "idorder-clients", Now: fixedClock(base)})

	tok, err := signer.Issue(mmodel.Principal{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindBadSignature, appErr.Kind)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	codec := newTestCodec(fixedClock(time.Now()))

	_, err := codec.Verify("not-a-token")
	require.Error(t, err)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindMalformed, appErr.Kind)
}

func TestCodec_Verify_ToleratesConfiguredLeeway(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	signer := New(Config{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "idorder", Audience: "idorder-clients", Now: fixedClock(base)})
	tok, err := signer.Issue(mmodel.Principal{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	verifier := New(Config{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "idorder",
		Audience: "idorder-clients",
		Leeway:   5 * time.Minute,
		Now:      fixedClock(base.Add(2 * time.Minute)),
	})

	_, err = verifier.Verify(tok)
	assert.NoError(t, err)
}

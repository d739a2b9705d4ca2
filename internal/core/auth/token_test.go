package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
)

var testIdentity = domain.Identity{ID: "3f1f0c6e-8d1a-4a53-9d0e-5d6f7c2b1a90", Email: "ana@example.com", Role: domain.RoleSalesman}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, secret string, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService([]byte(secret), WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

func authKind(t *testing.T, err error) domain.AuthErrorKind {
	t.Helper()
	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr), "expected *domain.AuthError, got %T", err)
	return authErr.Kind
}

func TestNewTokenService_RejectsEmptySecret(t *testing.T) {
	_, err := NewTokenService(nil)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, "s3cret", clock)

	token, err := svc.Issue(testIdentity)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, got)
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	svc := newTestService(t, "s3cret", clock)

	token, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	clock.t = issued.Add(TokenTTL - time.Second)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	clock.t = issued.Add(TokenTTL)
	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.Equal(t, domain.AuthTokenExpired, authKind(t, err))

	clock.t = issued.Add(TokenTTL + time.Hour)
	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.Equal(t, domain.AuthTokenExpired, authKind(t, err))
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestService(t, "one-secret", clock)
	verifier := newTestService(t, "another-secret", clock)

	token, err := issuer.Issue(testIdentity)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.Equal(t, domain.AuthInvalidToken, authKind(t, err))
}

func TestTokenService_RejectsTampering(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, "s3cret", clock)

	token, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: testIdentity.ID, Email: testIdentity.Email, Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}).SignedString([]byte("attacker"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]
	_, err = svc.Verify(spliced)
	require.Error(t, err)
	assert.Equal(t, domain.AuthInvalidToken, authKind(t, err))
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, "s3cret", clock)

	claims := Claims{
		ID: testIdentity.ID, Role: testIdentity.Role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour))},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = svc.Verify(hs512)
	assert.Equal(t, domain.AuthInvalidToken, authKind(t, err))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.Equal(t, domain.AuthInvalidToken, authKind(t, err))
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := newTestService(t, "s3cret", &fakeClock{t: time.Now()})

	for _, token := range []string{"", "abc", "a.b.c", "not-a-token-at-all"} {
		_, err := svc.Verify(token)
		require.Error(t, err, token)
		assert.Equal(t, domain.AuthInvalidToken, authKind(t, err), token)
	}
}

func TestTokenService_RequiresExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, "s3cret", clock)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: testIdentity.ID, Role: testIdentity.Role,
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Equal(t, domain.AuthInvalidToken, authKind(t, err))
}

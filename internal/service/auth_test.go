package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/repository"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestAuth(t *testing.T, ttl time.Duration) (*AuthService, *UserService) {
	t.Helper()
	users := newTestUsers(repository.NewMemoryStore())
	return NewAuthService(users, testSecret, ttl, zap.NewNop()), users
}

func TestLoginAndAuthorize(t *testing.T) {
	auth, users := newTestAuth(t, time.Hour)
	user := createTestUser(t, users, "alice@example.com")

	token, err := auth.Login(context.Background(), "Alice@Example.com", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := auth.Authorize(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, "alice@example.com", identity.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth, users := newTestAuth(t, time.Hour)
	createTestUser(t, users, "alice@example.com")

	_, wrongPassword := auth.Login(context.Background(), "alice@example.com", "Wr0ng!!")
	_, unknownEmail := auth.Login(context.Background(), "bob@example.com", testPassword)

	require.ErrorIs(t, wrongPassword, core.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, core.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthorize_Expired(t *testing.T) {
	auth, users := newTestAuth(t, -time.Minute)
	createTestUser(t, users, "alice@example.com")

	token, err := auth.Login(context.Background(), "alice@example.com", testPassword)
	require.NoError(t, err)

	_, err = auth.Authorize(token)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestAuthorize_WrongSecret(t *testing.T) {
	auth, users := newTestAuth(t, time.Hour)
	createTestUser(t, users, "alice@example.com")

	token, err := auth.Login(context.Background(), "alice@example.com", testPassword)
	require.NoError(t, err)

	other := NewAuthService(users, "another-secret", time.Hour, zap.NewNop())
	_, err = other.Authorize(token)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestAuthorize_TamperedSignature(t *testing.T) {
	auth, users := newTestAuth(t, time.Hour)
	createTestUser(t, users, "alice@example.com")

	token, err := auth.Login(context.Background(), "alice@example.com", testPassword)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sig {
		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		tampered[i] ^= 0xff

		forged := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(tampered)
		_, err := auth.Authorize(forged)
		require.ErrorIs(t, err, core.ErrInvalidToken, "byte %d", i)
	}
}

func TestAuthorize_Malformed(t *testing.T) {
	auth, _ := newTestAuth(t, time.Hour)

	for _, token := range []string{"", "abc", "a.b.c", "Bearer x.y.z"} {
		_, err := auth.Authorize(token)
		require.ErrorIs(t, err, core.ErrInvalidToken, token)
	}
}

func TestAuthorize_RejectsNonHMAC(t *testing.T) {
	auth, _ := newTestAuth(t, time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.Authorize(token)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestAuthorize_RequiresExpiry(t *testing.T) {
	auth, _ := newTestAuth(t, time.Hour)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.Authorize(token)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

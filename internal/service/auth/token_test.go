package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trekora/trek-api/internal/config"
)

const testSecret = "test-secret-key-thats-longer-than-32-chars"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}
}

// newTestTokenService returns a service with a controllable clock.
func newTestTokenService(t *testing.T, now time.Time) *hmacTokenService {
	t.Helper()

	svc, err := NewTokenService(testAuthConfig())
	require.NoError(t, err)

	impl, ok := svc.(*hmacTokenService)
	require.True(t, ok)
	impl.timeFunc = func() time.Time { return now }
	return impl
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(config.AuthConfig{
		JWTSecret:            "too-short",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	svc := newTestTokenService(t, now)
	userID := uuid.New()

	token, expiresAt, err := svc.Generate(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	issued := time.Now().UTC().Add(-2 * time.Hour)
	svc := newTestTokenService(t, issued)

	token, _, err := svc.Generate(context.Background(), uuid.New())
	require.NoError(t, err)

	// Move the clock past expiry plus the allowed skew.
	svc.timeFunc = time.Now

	_, err = svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWithinClockSkew(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	svc := newTestTokenService(t, now)

	token, _, err := svc.Generate(context.Background(), uuid.New())
	require.NoError(t, err)

	// One minute past expiry is inside the two-minute leeway.
	svc.timeFunc = func() time.Time { return now.Add(61 * time.Minute) }

	_, err = svc.Validate(context.Background(), token)
	assert.NoError(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService(t, time.Now().UTC())

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not a jwt", "not-a-token"},
		{"wrong segment count", "a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	svc := newTestTokenService(t, now)

	token, _, err := svc.Generate(context.Background(), uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	prefix := "AAAA"
	if strings.HasPrefix(parts[2], prefix) {
		prefix = "BBBB"
	}
	tampered := parts[0] + "." + parts[1] + "." + prefix + parts[2][4:]

	_, err = svc.Validate(context.Background(), tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	svc := newTestTokenService(t, now)

	other := newTestTokenService(t, now)
	other.signingKey = []byte("another-secret-key-with-enough-length")

	token, _, err := other.Generate(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

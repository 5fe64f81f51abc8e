package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biolink/internal/platform/config"
	"biolink/internal/platform/store"
)

func newTestService() *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:       "test-secret",
		MagicLinkTTL: 15 * time.Minute,
		SessionTTL:   7 * 24 * time.Hour,
	})
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestService()

	token, expiresAt, err := svc.GenerateSessionToken("owner@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestTokenService_RejectsWrongPurpose(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateMagicLinkToken("owner@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token, PurposeSession)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}

func TestTokenService_MagicLinkExpires(t *testing.T) {
	svc := newTestService()
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateMagicLinkToken("owner@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = svc.ValidateToken(token, PurposeMagicLink)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	token, _, err := newTestService().GenerateSessionToken("owner@example.com")
	require.NoError(t, err)

	other := NewTokenService(config.JWTConfig{Secret: "other", SessionTTL: time.Hour})
	_, err = other.ValidateToken(token, PurposeSession)
	assert.Error(t, err)
}

func TestMagicLinkGuard_SingleUse(t *testing.T) {
	svc := newTestService()
	guard := NewMagicLinkGuard(store.NewMemoryStore())

	token, _, err := svc.GenerateMagicLinkToken("owner@example.com")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token, PurposeMagicLink)
	require.NoError(t, err)

	require.NoError(t, guard.Consume(context.Background(), claims))
	assert.ErrorIs(t, guard.Consume(context.Background(), claims), ErrTokenUsed)
}

func TestDigest_IsStable(t *testing.T) {
	assert.Equal(t, Digest("abc"), Digest("abc"))
	assert.Len(t, Digest("abc"), 64)
	assert.NotEqual(t, Digest("abc"), Digest("abd"))
}

package auth

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutme/sprout-server/internal/domain"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	svc, err := NewTokenService(key, 720*time.Hour)
	require.NoError(t, err)
	return svc
}

func testIdentity() (*domain.Session, *domain.User) {
	session := &domain.Session{
		ID:          "11111111-2222-3333-4444-555555555555",
		PhoneNumber: "+15551234567",
		PhoneHash:   "abc123",
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	user := &domain.User{
		PhoneNumber: "+15551234567",
		PhoneHash:   "abc123",
		Name:        "Alex",
	}
	return session, user
}

func TestNewTokenService_RejectsBadKeyLength(t *testing.T) {
	_, err := NewTokenService(make([]byte, 16), time.Hour)
	assert.Error(t, err)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	session, user := testIdentity()

	token, err := svc.GenerateSessionToken(session, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.VerifySessionToken(token)
	require.NoError(t, err)

	assert.Equal(t, session.ID, claims.SessionID)
	assert.Equal(t, "+15551234567", claims.PhoneNumber)
	assert.Equal(t, "abc123", claims.PhoneHash)
	assert.Equal(t, "Alex", claims.Name)
	assert.Equal(t, "abc123", claims.Subject)
}

func TestVerifySessionToken_RejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.VerifySessionToken("v4.local.not-a-real-token")
	assert.Error(t, err)
}

func TestVerifySessionToken_RejectsExpired(t *testing.T) {
	svc := newTestService(t)
	session, user := testIdentity()
	session.ExpiresAt = time.Now().Add(-time.Minute)

	token, err := svc.GenerateSessionToken(session, user)
	require.NoError(t, err)

	_, err = svc.VerifySessionToken(token)
	assert.Error(t, err)
}

func TestVerifySessionToken_RejectsForeignKey(t *testing.T) {
	svc := newTestService(t)
	other := newTestService(t)
	session, user := testIdentity()

	token, err := svc.GenerateSessionToken(session, user)
	require.NoError(t, err)

	_, err = other.VerifySessionToken(token)
	assert.Error(t, err)
}

func TestLoadOrGenerateKey_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	require.Len(t, first, 32)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/config"
)

const testSecret = "test-secret-key-thats-at-least-32-characters-long"

// signTestToken builds a token the way the external identity service does.
func signTestToken(t *testing.T, secret string, userID uuid.UUID, tokenType string, issuedAt, expiresAt time.Time) string {
	t.Helper()

	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestJWTService(t *testing.T) JWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "too-short"})
	assert.Error(t, err)
}

func TestValidateToken_ValidAccessToken(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()
	now := time.Now()

	tokenString := signTestToken(t, testSecret, userID, "access", now, now.Add(time.Hour))

	claims, err := svc.ValidateToken(context.Background(), tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(t)
	now := time.Now()

	// Expired beyond the configured clock skew.
	tokenString := signTestToken(t, testSecret, uuid.New(), "access",
		now.Add(-2*time.Hour), now.Add(-time.Hour))

	_, err := svc.ValidateToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSignature(t *testing.T) {
	svc := newTestJWTService(t)
	now := time.Now()

	otherSecret := "another-secret-key-also-32-characters-plus"
	tokenString := signTestToken(t, otherSecret, uuid.New(), "access", now, now.Add(time.Hour))

	_, err := svc.ValidateToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongTokenType(t *testing.T) {
	svc := newTestJWTService(t)
	now := time.Now()

	tokenString := signTestToken(t, testSecret, uuid.New(), "refresh", now, now.Add(time.Hour))

	_, err := svc.ValidateToken(context.Background(), tokenString)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestJWTService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

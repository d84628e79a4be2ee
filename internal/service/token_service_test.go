package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/models"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() models.JWTClaims {
	return models.JWTClaims{
		UserID:   "u1",
		Role:     "student",
		Username: "asha",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "college-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "college-idp"})

	claims, err := svc.ValidateToken(signToken(t, "secret", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestTokenServiceRejectsBadTokens(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "college-idp"})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "other"

	unknownRole := validClaims()
	unknownRole.Role = "PRINCIPAL"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"wrong secret": signToken(t, "other", validClaims()),
		"expired":      signToken(t, "secret", expired),
		"wrong issuer": signToken(t, "secret", wrongIssuer),
		"unknown role": signToken(t, "secret", unknownRole),
		"no expiry":    signToken(t, "secret", noExpiry),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
		})
	}
}

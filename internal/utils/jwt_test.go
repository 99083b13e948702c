package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangawi/coordination-core/internal/dto"
)

func TestGenerateAndValidateJWTRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateJWT(userID, "test-secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "correct-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "wrong-secret")
	assert.ErrorIs(t, err, dto.ErrInvalidToken)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "test-secret", -time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "test-secret")
	assert.ErrorIs(t, err, dto.ErrTokenExpired)
}

func TestValidateJWTRejectsMalformedToken(t *testing.T) {
	_, err := ValidateJWT("not-a-jwt", "test-secret")
	assert.ErrorIs(t, err, dto.ErrInvalidToken)
}

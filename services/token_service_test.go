package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	userID := uuid.NewString()

	pair, tokenID, err := tokens.GenerateTokenPair(userID, "pat@example.com", models.RolePatient)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	access, err := tokens.ValidateToken(pair.AccessToken, "access")
	assert.NoError(t, err)
	assert.Equal(t, userID, access["sub"])
	assert.Equal(t, "pat@example.com", access["email"])
	assert.Equal(t, models.RolePatient, access["role"])

	refresh, err := tokens.ValidateToken(pair.RefreshToken, "refresh")
	assert.NoError(t, err)
	assert.Equal(t, tokenID, refresh["jti"], "refresh token carries the persisted jti")
}

func TestValidateToken_TypeMismatch(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	pair, _, err := tokens.GenerateTokenPair(uuid.NewString(), "pat@example.com", models.RolePatient)
	assert.NoError(t, err)

	_, err = tokens.ValidateToken(pair.AccessToken, "refresh")
	assert.Error(t, err)
	_, err = tokens.ValidateToken(pair.RefreshToken, "access")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, _, err := services.NewTokenService("other-secret").GenerateTokenPair(uuid.NewString(), "pat@example.com", models.RolePatient)
	assert.NoError(t, err)

	_, err = services.NewTokenService("test-secret").ValidateToken(pair.AccessToken, "access")
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	_, err := tokens.ValidateToken("not-a-token", "access")
	assert.Error(t, err)
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	assert.Panics(t, func() { services.NewTokenService("") })
}

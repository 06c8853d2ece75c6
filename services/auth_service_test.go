package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/events"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

func newAuthService(users *mockUserRepo, bus *events.Bus) services.AuthService {
	return services.NewAuthService(users, services.NewTokenService("test-secret"), bus, testLogger())
}

func hashedPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestRegister_Success(t *testing.T) {
	users := &mockUserRepo{byEmailErr: gorm.ErrRecordNotFound}
	bus := events.NewBus(testLogger())

	var published []events.Event
	bus.Subscribe(events.UserRegistered, func(_ context.Context, ev events.Event) {
		published = append(published, ev)
	})

	svc := newAuthService(users, bus)
	user, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "pat@example.com",
		Password:  "Str0ngPass",
		FirstName: "Priya",
		LastName:  "Nair",
	})
	assert.Nil(t, svcErr)
	assert.Equal(t, models.RolePatient, user.Role)
	assert.True(t, user.NotifyEmail, "email notifications default on")
	assert.NotEqual(t, "Str0ngPass", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Str0ngPass")))

	if assert.Len(t, published, 1) {
		assert.Equal(t, user.ID, published[0].UserID)
		assert.Equal(t, "Priya", published[0].Extra)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{byEmail: &models.User{ID: uuid.New(), Email: "pat@example.com"}}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "pat@example.com",
		Password:  "Str0ngPass",
		FirstName: "Priya",
	})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Nil(t, users.created)
}

func TestRegister_DuplicateUnderRace(t *testing.T) {
	// The pre-check misses but the unique index on email catches the race.
	users := &mockUserRepo{byEmailErr: gorm.ErrRecordNotFound, createErr: gorm.ErrDuplicatedKey}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "pat@example.com",
		Password:  "Str0ngPass",
		FirstName: "Priya",
	})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
}

func TestRegister_WeakPassword(t *testing.T) {
	users := &mockUserRepo{byEmailErr: gorm.ErrRecordNotFound}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "pat@example.com",
		Password:  "short",
		FirstName: "Priya",
	})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Nil(t, users.created)
}

func TestRegister_ParsesDateOfBirth(t *testing.T) {
	users := &mockUserRepo{byEmailErr: gorm.ErrRecordNotFound}

	svc := newAuthService(users, events.NewBus(testLogger()))
	user, svcErr := svc.Register(context.Background(), &models.RegisterRequest{
		Email:       "pat@example.com",
		Password:    "Str0ngPass",
		FirstName:   "Priya",
		DateOfBirth: "1992-03-14",
	})
	assert.Nil(t, svcErr)
	if assert.NotNil(t, user.DateOfBirth) {
		assert.Equal(t, 1992, user.DateOfBirth.Year())
	}
}

func TestLogin_Success(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "pat@example.com",
		Password: hashedPassword(t, "Str0ngPass"),
		Role:     models.RolePatient,
	}
	users := &mockUserRepo{byEmail: user}

	svc := newAuthService(users, events.NewBus(testLogger()))
	pair, got, svcErr := svc.Login(context.Background(), "pat@example.com", "Str0ngPass")
	assert.Nil(t, svcErr)
	assert.Equal(t, user, got)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	tokens := services.NewTokenService("test-secret")
	claims, err := tokens.ValidateToken(pair.AccessToken, "access")
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, models.RolePatient, claims["role"])

	if assert.NotNil(t, users.savedToken) {
		assert.Equal(t, user.ID, users.savedToken.UserID)
		assert.WithinDuration(t, time.Now().Add(services.RefreshTokenTTL), users.savedToken.ExpiresAt, time.Minute)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	user := &models.User{ID: uuid.New(), Password: hashedPassword(t, "Str0ngPass")}
	users := &mockUserRepo{byEmail: user}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, _, svcErr := svc.Login(context.Background(), "pat@example.com", "WrongPass1")
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := &mockUserRepo{byEmailErr: gorm.ErrRecordNotFound}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, _, svcErr := svc.Login(context.Background(), "nobody@example.com", "Str0ngPass")
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestRefresh_RotatesToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "pat@example.com", Role: models.RolePatient}
	tokens := services.NewTokenService("test-secret")
	pair, tokenID, err := tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	assert.NoError(t, err)

	users := &mockUserRepo{
		user: user,
		storedToken: &models.RefreshToken{
			TokenID:   tokenID,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}

	svc := newAuthService(users, events.NewBus(testLogger()))
	newPair, svcErr := svc.Refresh(context.Background(), pair.RefreshToken)
	assert.Nil(t, svcErr)
	assert.NotEmpty(t, newPair.AccessToken)

	assert.Contains(t, users.revoked, tokenID, "the presented token is revoked on rotation")
	if assert.NotNil(t, users.savedToken) {
		assert.NotEqual(t, tokenID, users.savedToken.TokenID, "a fresh jti is persisted")
	}
}

func TestRefresh_RevokedToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "pat@example.com", Role: models.RolePatient}
	tokens := services.NewTokenService("test-secret")
	pair, tokenID, err := tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	assert.NoError(t, err)

	users := &mockUserRepo{
		user: user,
		storedToken: &models.RefreshToken{
			TokenID:   tokenID,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
			Revoked:   true,
		},
	}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, svcErr := svc.Refresh(context.Background(), pair.RefreshToken)
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestRefresh_ExpiredStoredToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "pat@example.com", Role: models.RolePatient}
	tokens := services.NewTokenService("test-secret")
	pair, tokenID, err := tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	assert.NoError(t, err)

	users := &mockUserRepo{
		user: user,
		storedToken: &models.RefreshToken{
			TokenID:   tokenID,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(-time.Hour),
		},
	}

	svc := newAuthService(users, events.NewBus(testLogger()))
	_, svcErr := svc.Refresh(context.Background(), pair.RefreshToken)
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "pat@example.com", Role: models.RolePatient}
	tokens := services.NewTokenService("test-secret")
	pair, _, err := tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	assert.NoError(t, err)

	svc := newAuthService(&mockUserRepo{}, events.NewBus(testLogger()))
	_, svcErr := svc.Refresh(context.Background(), pair.AccessToken)
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "pat@example.com", Role: models.RolePatient}
	tokens := services.NewTokenService("test-secret")
	pair, tokenID, err := tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	assert.NoError(t, err)

	users := &mockUserRepo{}
	svc := newAuthService(users, events.NewBus(testLogger()))
	assert.Nil(t, svc.Logout(context.Background(), pair.RefreshToken))
	assert.Contains(t, users.revoked, tokenID)
}

func TestUpdateProfile_TogglesNotificationChannels(t *testing.T) {
	user := &models.User{ID: uuid.New(), NotifyEmail: true}
	users := &mockUserRepo{user: user}

	sms := true
	phone := "+15550100"
	svc := newAuthService(users, events.NewBus(testLogger()))
	out, svcErr := svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{
		NotifySMS: &sms,
		Phone:     &phone,
	})
	assert.Nil(t, svcErr)
	assert.True(t, out.NotifySMS)
	assert.Equal(t, "+15550100", out.Phone)
	assert.True(t, out.NotifyEmail, "untouched preferences keep their values")
	assert.Equal(t, out, users.updated)
}

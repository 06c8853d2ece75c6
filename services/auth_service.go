package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/events"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *ServiceError)
	Login(ctx context.Context, email, password string) (*TokenPair, *models.User, *ServiceError)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, *ServiceError)
	Logout(ctx context.Context, refreshToken string) *ServiceError
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, *ServiceError)
}

type authServiceImpl struct {
	userRepo  repository.UserRepository
	tokens    *TokenService
	passwords *PasswordValidator
	bus       *events.Bus
	logger    *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *TokenService,
	bus *events.Bus,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:  userRepo,
		tokens:    tokens,
		passwords: NewPasswordValidator(),
		bus:       bus,
		logger:    logger,
	}
}

// Register creates a patient account. Doctor and admin accounts are created
// through the admin doctor endpoint and the seeder.
func (s *authServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *ServiceError) {
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Email already registered"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Register lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create account"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Register hash failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create account"}
	}

	user := &models.User{
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Gender:    req.Gender,
		City:      req.City,
		Role:      models.RolePatient,

		NotifyEmail: true,
	}
	if req.DateOfBirth != "" {
		if dob, perr := time.Parse("2006-01-02", req.DateOfBirth); perr == nil {
			user.DateOfBirth = &dob
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Email already registered"}
		}
		s.logger.Error("Register create failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create account"}
	}

	s.bus.Publish(ctx, events.Event{
		Name:      events.UserRegistered,
		UserID:    user.ID,
		Extra:     user.FirstName,
		Timestamp: time.Now().UTC(),
	})

	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, *ServiceError) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	pair, svcErr := s.issueTokens(ctx, user)
	if svcErr != nil {
		return nil, nil, svcErr
	}
	return pair, user, nil
}

// Refresh validates the refresh token against the stored jti and rotates it:
// the old token is revoked in the same call that issues the new pair.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *ServiceError) {
	claims, err := s.tokens.ValidateToken(refreshToken, "refresh")
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	stored, err := s.userRepo.FindRefreshToken(ctx, tokenID)
	if err != nil || stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Refresh token expired or revoked"}
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "User not found"}
	}

	if err := s.userRepo.RevokeRefreshToken(ctx, tokenID); err != nil {
		s.logger.Error("Refresh revoke failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to refresh tokens"}
	}

	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) *ServiceError {
	claims, err := s.tokens.ValidateToken(refreshToken, "refresh")
	if err != nil {
		return &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}
	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}
	if err := s.userRepo.RevokeRefreshToken(ctx, tokenID); err != nil {
		s.logger.Error("Logout revoke failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to log out"}
	}
	return nil
}

func (s *authServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "User not found"}
	}
	return user, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "User not found"}
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.NotifyEmail != nil {
		user.NotifyEmail = *req.NotifyEmail
	}
	if req.NotifySMS != nil {
		user.NotifySMS = *req.NotifySMS
	}
	if req.NotifyPush != nil {
		user.NotifyPush = *req.NotifyPush
	}
	if req.PushToken != nil {
		user.PushToken = *req.PushToken
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("UpdateProfile failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update profile"}
	}
	return user, nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*TokenPair, *ServiceError) {
	pair, tokenID, err := s.tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to issue tokens"}
	}

	err = s.userRepo.SaveRefreshToken(ctx, &models.RefreshToken{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	})
	if err != nil {
		s.logger.Error("Refresh token persist failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to issue tokens"}
	}
	return pair, nil
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// AuthController handles registration, login and profile endpoints.
type AuthController struct {
	authService services.AuthService
}

func NewAuthController(svc services.AuthService) *AuthController {
	return &AuthController{authService: svc}
}

// Register handles POST /api/v1/auth/register
func (ac *AuthController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, svcErr := ac.authService.Register(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	tokens, user, svcErr := ac.authService.Login(ctx.Request.Context(), req.Email, req.Password)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tokens": tokens, "user": user})
}

// Refresh handles POST /api/v1/auth/refresh
func (ac *AuthController) Refresh(ctx *gin.Context) {
	var req models.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	tokens, svcErr := ac.authService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout handles POST /api/v1/auth/logout
func (ac *AuthController) Logout(ctx *gin.Context) {
	var req models.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := ac.authService.Logout(ctx.Request.Context(), req.RefreshToken); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Profile handles GET /api/v1/users/me
func (ac *AuthController) Profile(ctx *gin.Context) {
	user, svcErr := ac.authService.Profile(ctx.Request.Context(), middleware.UserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PATCH /api/v1/users/me
func (ac *AuthController) UpdateProfile(ctx *gin.Context) {
	var req models.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, svcErr := ac.authService.UpdateProfile(ctx.Request.Context(), middleware.UserID(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

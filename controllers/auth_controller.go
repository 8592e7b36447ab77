package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/middleware"
	"github.com/Chandrasura25/Social-media-backend-case-study/services"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// AuthController handles registration, login and the caller's own account.
type AuthController struct {
	accounts *services.AccountService
}

// NewAuthController creates an AuthController.
func NewAuthController(accounts *services.AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, errInvalidPayload)
		return
	}

	user, err := a.accounts.Register(ctx.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, "User registered successfully", gin.H{"user": user})
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperror.NewValidation("Email and password are required", err))
		return
	}

	session, err := a.accounts.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, session)
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	id, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Fail(ctx, apperror.ErrUnauthenticated)
		return
	}
	a.accounts.Logout(id)
	utils.OK(ctx, "Logged out successfully")
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	profile, err := a.accounts.Profile(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, profile)
}

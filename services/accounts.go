package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// RegisterInput is a registration request after JSON binding.
type RegisterInput struct {
	Username string `validate:"required,min=3,max=64"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

var validate = validator.New()

// AccountService handles registration, login, logout and profile reads.
type AccountService struct {
	users    IdentityStore
	tokenTTL time.Duration
}

func NewAccountService(users IdentityStore, tokenTTL time.Duration) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AccountService{users: users, tokenTTL: tokenTTL}
}

// Register creates a user with a bcrypt password hash. A duplicate email
// yields ErrUserExists whether it is caught by the lookup or the unique index.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, apperror.NewValidation(registerMessage(err), err)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.ErrUserExists
	} else if !errors.Is(err, stores.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, stores.ErrDuplicateEmail) {
			return nil, apperror.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the credential and issues a signed token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, stores.ErrNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, apperror.ErrInvalidPassword
	}
	token, err := utils.GenerateToken(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: time.Now().Add(s.tokenTTL), User: user}, nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AccountService) Logout(id *utils.Identity) {
	if id == nil || id.TokenID == "" {
		return
	}
	expiresAt := id.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.tokenTTL)
	}
	utils.BlacklistToken(id.TokenID, expiresAt)
}

// Profile returns userID with follower and following counts.
func (s *AccountService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	followers, following, err := s.users.FollowCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count follows for %d: %w", userID, err)
	}
	return &Profile{User: user, Followers: followers, Following: following}, nil
}

func registerMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid registration data"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Invalid email address"
	case "Username":
		if fe.Tag() == "required" {
			return "Username is required"
		}
		return "Username must be between 3 and 64 characters"
	case "Password":
		if fe.Tag() == "required" {
			return "Password is required"
		}
		return "Password must be between 6 and 72 characters"
	}
	return "Invalid registration data"
}

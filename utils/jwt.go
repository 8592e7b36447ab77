package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/config"
)

// Claims defines JWT claims used in the application.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request.
// Following is nil until something materializes it.
type Identity struct {
	UserID    uint
	Following []uint
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// Public outcomes of Authenticate. The wrapped cause tells operators why.
var (
	ErrMissingCredential = apperror.NewUnauthenticated("Access denied, token is required", nil)
	ErrInvalidCredential = apperror.NewForbidden("Invalid token", nil)

	errTokenRevoked = errors.New("token revoked")
	errNoSubject    = errors.New("token has no user id")
	errNoTokenID    = errors.New("token has no id")
)

// GenerateToken issues a JWT for the specified user.
func GenerateToken(userID uint, duration time.Duration) (string, error) {
	cfg := config.Get()
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// unique per issue so a revoked token never matches a later login
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// TokenFromHeader extracts the raw token from an Authorization header value.
// Both "Bearer <token>" and a bare token are accepted.
func TokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}

// Authenticate verifies rawToken and returns the identity it carries.
// Errors match ErrMissingCredential or ErrInvalidCredential under errors.Is.
func Authenticate(rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingCredential
	}
	claims, err := ParseToken(rawToken)
	if err != nil {
		return nil, apperror.NewForbidden(ErrInvalidCredential.Message, err)
	}
	if claims.UserID == 0 {
		return nil, apperror.NewForbidden(ErrInvalidCredential.Message, errNoSubject)
	}
	if claims.ID == "" {
		return nil, apperror.NewForbidden(ErrInvalidCredential.Message, errNoTokenID)
	}
	if IsTokenBlacklisted(claims.ID) {
		return nil, apperror.NewForbidden(ErrInvalidCredential.Message, errTokenRevoked)
	}
	id := &Identity{UserID: claims.UserID, Token: rawToken, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

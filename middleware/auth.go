package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextIdentityKey stores the full *utils.Identity.
	ContextIdentityKey = "identity"
)

// AuthRequired ensures the request carries a valid bearer token. A missing
// token answers 401 and an unverifiable or revoked one answers 403.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := utils.Authenticate(utils.TokenFromHeader(ctx.GetHeader("Authorization")))
		if err != nil {
			utils.Sugar.Debugw("authentication rejected",
				"request_id", ctx.GetString(utils.RequestIDKey),
				"path", ctx.Request.URL.Path,
				"reason", err,
			)
			utils.Fail(ctx, err)
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, id.UserID)
		ctx.Set(ContextIdentityKey, id)
		ctx.Next()
	}
}

// CurrentIdentity returns the identity AuthRequired attached, if any.
func CurrentIdentity(ctx *gin.Context) (*utils.Identity, bool) {
	v, ok := ctx.Get(ContextIdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*utils.Identity)
	return id, ok && id != nil
}

// CurrentUserID returns the authenticated user id, or 0.
func CurrentUserID(ctx *gin.Context) uint {
	if id, ok := CurrentIdentity(ctx); ok {
		return id.UserID
	}
	return 0
}

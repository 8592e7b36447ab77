package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's X-Request-ID
// when it sent one. The id is echoed back and included in error logs.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > 64 {
			rid = uuid.New().String()
		}
		ctx.Set(utils.RequestIDKey, rid)
		ctx.Header(requestIDHeader, rid)
		ctx.Next()
	}
}

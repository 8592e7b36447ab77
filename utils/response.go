package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// OK returns a 200 with a human readable message and no payload.
func OK(ctx *gin.Context, message string) {
	Respond(ctx, http.StatusOK, 0, message, nil)
}

// Created returns a 201 with a message and optional payload.
func Created(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, http.StatusCreated, 0, message, data)
}

// Error returns a standard error response; the status doubles as the code.
func Error(ctx *gin.Context, status int, message string) {
	Respond(ctx, status, status, message, nil)
}

// Fail maps err onto the public error taxonomy. Internal causes are logged,
// never returned.
func Fail(ctx *gin.Context, err error) {
	appErr := apperror.Normalize(err)
	if appErr.Type == apperror.InternalError {
		Sugar.Errorw("request failed",
			"request_id", ctx.GetString(RequestIDKey),
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"error", err,
		)
	}
	Error(ctx, appErr.StatusCode(), appErr.PublicMessage())
}

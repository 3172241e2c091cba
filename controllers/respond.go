package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/middleware"
	"github.com/Matheus-Salgado02/cinelist/services"
)

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindBadRequest:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"message": ...} with the status for err's kind.
// Internal errors are logged and answered with fallback.
func respondError(ctx *gin.Context, err error, fallback string) {
	writeError(ctx, "message", err, fallback)
}

// respondLegacyError is respondError for the endpoints that answer {"error": ...}.
func respondLegacyError(ctx *gin.Context, err error, fallback string) {
	writeError(ctx, "error", err, fallback)
}

func writeError(ctx *gin.Context, field string, err error, fallback string) {
	kind := services.KindOf(err)
	status := statusFor(kind)
	msg := services.MessageOf(err, fallback)
	if kind == services.KindInternal {
		logging.Ctx(ctx.Request.Context()).Error().Err(err).Str("path", ctx.FullPath()).Msg(msg)
	}
	_ = ctx.Error(err)
	ctx.JSON(status, gin.H{field: msg})
}

// bindingMessage reports the first failing field of a ShouldBindJSON error.
func bindingMessage(err error, fallback string) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fallback
	}
	for _, e := range ve {
		switch e.Field() {
		case "Email":
			return "Please provide a valid email address"
		default:
			return fallback
		}
	}
	return fallback
}

// currentUser reads the id set by the auth middleware.
func currentUser(ctx *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return "", false
	}
	return userID, true
}

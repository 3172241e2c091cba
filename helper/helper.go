package helper

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Matheus-Salgado02/cinelist/models"
)

// CleanString trims s and treats whitespace-only input as absent.
func CleanString(s string) string {
	return strings.TrimSpace(s)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// MovieIDParam reads a path parameter and converts it to the canonical movie id.
func MovieIDParam(ctx *gin.Context, name string) (models.MovieID, error) {
	return models.ParseMovieID(ctx.Param(name))
}

// MaskEmail keeps enough of an address to correlate log lines without logging it.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request models.
// "trimmed_email" checks the address after surrounding whitespace is removed,
// matching how the services store it.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("trimmed_email", func(fl validator.FieldLevel) bool {
			email := CleanString(fl.Field().String())
			return email == "" || v.Var(email, "email") == nil
		})
	})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/models"
	"github.com/Matheus-Salgado02/cinelist/services"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

const credentialsRequired = "email/username and password required"

func (c *AuthController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err, credentialsRequired)})
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err, "Could not register")
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err, credentialsRequired)})
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err, "Could not login")
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Me answers GET /auth/me. The bearer token is optional; without a valid
// one the JSON body may carry email/username and password instead.
func (c *AuthController) Me(ctx *gin.Context) {
	token, _ := helper.BearerToken(ctx.GetHeader("Authorization"))

	var creds *models.LoginRequest
	if ctx.Request.Body != nil && ctx.Request.ContentLength != 0 {
		var body models.LoginRequest
		if err := json.NewDecoder(ctx.Request.Body).Decode(&body); err == nil {
			creds = &body
		}
	}

	user, err := c.authService.WhoAmI(ctx.Request.Context(), token, creds)
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.UserResponse{User: user})
}

func (c *AuthController) UpdateMe(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err, "Invalid request format")})
		return
	}

	user, err := c.authService.UpdateProfile(ctx.Request.Context(), userID, &update)
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.UserResponse{User: user})
}


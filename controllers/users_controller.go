package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Matheus-Salgado02/cinelist/models"
	"github.com/Matheus-Salgado02/cinelist/services"
)

// UsersController serves the legacy /users directory, which answers errors
// as {"error": ...}.
type UsersController struct {
	directory *services.UserDirectory
}

func NewUsersController(directory *services.UserDirectory) *UsersController {
	return &UsersController{directory: directory}
}

func (c *UsersController) List(ctx *gin.Context) {
	users, err := c.directory.List(ctx.Request.Context())
	if err != nil {
		respondLegacyError(ctx, err, "Internal server error")
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (c *UsersController) Create(ctx *gin.Context) {
	var req models.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	created, err := c.directory.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondLegacyError(ctx, err, "Could not create user")
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

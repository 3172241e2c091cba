package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/models"
	"github.com/Matheus-Salgado02/cinelist/services"
)

type WatchlistController struct {
	watchlistService *services.WatchlistService
}

func NewWatchlistController(watchlistService *services.WatchlistService) *WatchlistController {
	return &WatchlistController{
		watchlistService: watchlistService,
	}
}

func (c *WatchlistController) Add(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req models.WatchlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.MovieID == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "movieId required"})
		return
	}

	user, err := c.watchlistService.Add(ctx.Request.Context(), userID, *req.MovieID)
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.UserResponse{User: user})
}

func (c *WatchlistController) Remove(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	movieID, err := helper.MovieIDParam(ctx, "movieId")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "movieId required"})
		return
	}

	user, err := c.watchlistService.Remove(ctx.Request.Context(), userID, movieID)
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.UserResponse{User: user})
}

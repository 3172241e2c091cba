package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/models"
	"github.com/Matheus-Salgado02/cinelist/services"
)

type ReviewController struct {
	reviewService *services.ReviewService
}

func NewReviewController(reviewService *services.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

func (c *ReviewController) Upsert(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req models.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.MovieID == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "movieId and rating required"})
		return
	}

	user, review, err := c.reviewService.Upsert(ctx.Request.Context(), userID, *req.MovieID, req.Rating, req.Text)
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.ReviewResponse{User: user, Review: review.Summary()})
}

func (c *ReviewController) Delete(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	user, err := c.reviewService.Delete(ctx.Request.Context(), userID, ctx.Param("reviewId"))
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.UserResponse{User: user})
}

func (c *ReviewController) ListForMovie(ctx *gin.Context) {
	movieID, err := helper.MovieIDParam(ctx, "movieId")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "movieId required"})
		return
	}

	reviews, err := c.reviewService.ListForMovie(ctx.Request.Context(), movieID)
	if err != nil {
		respondError(ctx, err, "Server error")
		return
	}
	ctx.JSON(http.StatusOK, models.ReviewListResponse{Reviews: reviews})
}

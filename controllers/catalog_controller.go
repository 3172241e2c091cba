package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/services"
)

// CatalogController proxies /tmdb/* to the catalog gateway. Failures use the
// {"error": ...} body.
type CatalogController struct {
	catalogService *services.CatalogService
}

func NewCatalogController(catalogService *services.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

func pageQuery(ctx *gin.Context) int {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func passThrough(ctx *gin.Context, body json.RawMessage, err error, fallback string) {
	if err != nil {
		respondLegacyError(ctx, err, fallback)
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (c *CatalogController) Search(ctx *gin.Context) {
	body, err := c.catalogService.Search(ctx.Request.Context(), ctx.Query("q"), pageQuery(ctx))
	passThrough(ctx, body, err, "TMDB search error")
}

func (c *CatalogController) Movie(ctx *gin.Context) {
	id, err := helper.MovieIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}
	body, err := c.catalogService.Movie(ctx.Request.Context(), id)
	passThrough(ctx, body, err, "TMDB movie error")
}

func (c *CatalogController) Trending(ctx *gin.Context) {
	body, err := c.catalogService.Trending(ctx.Request.Context(), ctx.Param("window"), pageQuery(ctx))
	passThrough(ctx, body, err, "TMDB trending error")
}

func (c *CatalogController) Popular(ctx *gin.Context) {
	body, err := c.catalogService.Popular(ctx.Request.Context(), pageQuery(ctx))
	passThrough(ctx, body, err, "TMDB popular error")
}

func (c *CatalogController) NowPlaying(ctx *gin.Context) {
	body, err := c.catalogService.NowPlaying(ctx.Request.Context(), pageQuery(ctx))
	passThrough(ctx, body, err, "TMDB now playing error")
}

func (c *CatalogController) TopRated(ctx *gin.Context) {
	body, err := c.catalogService.TopRated(ctx.Request.Context(), pageQuery(ctx))
	passThrough(ctx, body, err, "TMDB top rated error")
}

func (c *CatalogController) Discover(ctx *gin.Context) {
	body, err := c.catalogService.Discover(ctx.Request.Context(), ctx.Query("genre"), pageQuery(ctx))
	passThrough(ctx, body, err, "TMDB discover error")
}

func (c *CatalogController) Genres(ctx *gin.Context) {
	body, err := c.catalogService.Genres(ctx.Request.Context())
	passThrough(ctx, body, err, "TMDB genres error")
}

func (c *CatalogController) Configuration(ctx *gin.Context) {
	body, err := c.catalogService.Configuration(ctx.Request.Context())
	passThrough(ctx, body, err, "TMDB configuration error")
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/controllers"
	"github.com/Matheus-Salgado02/cinelist/helper"
	"github.com/Matheus-Salgado02/cinelist/middleware"
	"github.com/Matheus-Salgado02/cinelist/services"
)

// Deps are the services the router wires into controllers.
type Deps struct {
	Auth      *services.AuthService
	Watchlist *services.WatchlistService
	Reviews   *services.ReviewService
	Catalog   *services.CatalogService
	Directory *services.UserDirectory
	Health    services.Health
	RateLimit config.RateLimitConfig
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	helper.RegisterValidators()

	authController := controllers.NewAuthController(d.Auth)
	watchlistController := controllers.NewWatchlistController(d.Watchlist)
	reviewController := controllers.NewReviewController(d.Reviews)
	catalogController := controllers.NewCatalogController(d.Catalog)
	usersController := controllers.NewUsersController(d.Directory)
	healthController := controllers.NewHealthController(d.Health)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery())

	r.GET("/health", healthController.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/users", usersController.List)
	r.POST("/users", usersController.Create)

	protected := []gin.HandlerFunc{middleware.AuthMiddleware(d.Auth)}
	if !d.RateLimit.Disabled {
		protected = append(protected, middleware.RateLimit(d.RateLimit.Requests, d.RateLimit.Window))
	}
	withAuth := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, protected...), h)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authController.Me)
		auth.PUT("/me", withAuth(authController.UpdateMe)...)
	}

	watchlist := r.Group("/watchlist", protected...)
	{
		watchlist.POST("", watchlistController.Add)
		watchlist.DELETE("/:movieId", watchlistController.Remove)
	}

	reviews := r.Group("/reviews")
	{
		reviews.GET("/movie/:movieId", reviewController.ListForMovie)
		reviews.POST("", withAuth(reviewController.Upsert)...)
		reviews.DELETE("/:reviewId", withAuth(reviewController.Delete)...)
	}

	tmdb := r.Group("/tmdb")
	{
		tmdb.GET("/search", catalogController.Search)
		tmdb.GET("/movie/:id", catalogController.Movie)
		tmdb.GET("/trending/:window", catalogController.Trending)
		tmdb.GET("/popular", catalogController.Popular)
		tmdb.GET("/now-playing", catalogController.NowPlaying)
		tmdb.GET("/top-rated", catalogController.TopRated)
		tmdb.GET("/discover", catalogController.Discover)
		tmdb.GET("/genres", catalogController.Genres)
		tmdb.GET("/configuration", catalogController.Configuration)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return r
}

// Handler wraps the engine with CORS. Preflight requests are answered
// before they reach gin.
func Handler(engine http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(engine)
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thejerf/suture/v4"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/services"
)

// App is a fully wired server: the HTTP handler plus the background services
// the supervisor must run next to it.
type App struct {
	Handler    http.Handler
	Background []suture.Service
	close      func(context.Context) error
}

func (a *App) Close(ctx context.Context) error {
	if a.close == nil {
		return nil
	}
	return a.close(ctx)
}

// Build wires storage, services and routes from cfg.
func Build(cfg *config.Config) (*App, error) {
	var (
		store      services.UserStore
		health     services.Health
		background []suture.Service
		closeFn    func(context.Context) error
	)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		mem := data_access.NewMemoryStore()
		store, health = mem, mem
		logging.Warn().Msg("using in-memory user store, data is lost on restart")
	default:
		mongodb, err := data_access.NewMongoDB(cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
		}
		store, health = data_access.NewUserRepository(mongodb), mongodb
		background = append(background, mongodb)
		closeFn = mongodb.Close
	}

	tokens := services.NewTokenService(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	hasher := services.NewPasswordHasher(cfg.Security.BcryptCost)

	engine := NewRouter(Deps{
		Auth:      services.NewAuthService(store, health, tokens, hasher),
		Watchlist: services.NewWatchlistService(store, health),
		Reviews:   services.NewReviewService(store, health),
		Catalog:   services.NewCatalogService(data_access.NewTMDBClient(cfg.TMDB)),
		Directory: services.NewUserDirectory(store, health, hasher),
		Health:    health,
		RateLimit: cfg.RateLimit,
	})

	return &App{
		Handler:    Handler(engine, cfg.Server.CORSOrigins),
		Background: background,
		close:      closeFn,
	}, nil
}

// Run serves the app until ctx is cancelled. The Mongo connector and the
// HTTP server run as siblings under one supervisor, so the server accepts
// requests (answering 503 on storage routes) while the store is still
// connecting.
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logging.Warn().Err(err).Msg("error closing store")
		}
	}()

	sup := suture.New("cinelist", suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          cfg.Server.ShutdownTimeout,
	})
	for _, svc := range app.Background {
		sup.Add(svc)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	sup.Add(NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", httpServer.Addr).Str("env", cfg.Server.Env).Str("store", cfg.Store.Driver).Msg("Server starting")
	err = sup.Serve(ctx)
	if ctx.Err() != nil {
		logging.Info().Msg("Server stopped")
		return nil
	}
	return err
}

func eventHook(ev suture.Event) {
	e := logging.Warn()
	if ev.Type() == suture.EventTypeServicePanic {
		e = logging.Error()
	}
	e.Fields(ev.Map()).Msg(ev.String())
}

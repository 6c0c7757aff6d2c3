package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/config"
	"github.com/Andessonreis/corre-aqui-dash/internal/database"
	"github.com/Andessonreis/corre-aqui-dash/internal/geo"
	"github.com/Andessonreis/corre-aqui-dash/internal/handlers"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/auth"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/lookup"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/media"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/offers"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/onboarding"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/profile"
	"github.com/Andessonreis/corre-aqui-dash/internal/storage"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

const startupTimeout = 15 * time.Second

func main() {
	app := fx.New(
		fx.NopLogger,
		fx.StartTimeout(startupTimeout),
		fx.Provide(
			config.Load,
			provideLogger,
			provideDatabase,
			provideRedis,
			provideStorage,
			provideTokens,
			provideSessions,
			provideGeo,

			// Repositories
			provideUserRepository,
			provideStoreRepository,
			provideCategoryRepository,
			provideOfferRepository,
			provideOnboardingRepository,

			// Services
			provideMediaService,
			provideAuthService,
			provideOffersService,
			provideOnboardingService,
			provideLookupService,
			provideProfileService,

			// Handlers
			handlers.NewAuthHandler,
			handlers.NewOnboardingHandler,
			handlers.NewOfferHandler,
			handlers.NewLookupHandler,
			handlers.NewProfileHandler,
			handlers.NewUploadHandler,
			provideHealthHandler,
			provideRouter,
		),
		fx.Invoke(runHTTPServer),
	)

	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build application: %v\n", err)
		os.Exit(1)
	}

	app.Run()
}

func provideLogger(cfg *config.Config) zerolog.Logger {
	logger := logging.New(cfg.IsProduction(), cfg.App.LogLevel, "api")
	zerolog.DefaultContextLogger = &logger
	return logger
}

// provideDatabase opens the pool and applies the schema before anything uses it
func provideDatabase(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*database.Manager, error) {
	manager := database.NewManager(&cfg.Database, logger)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := manager.InitPool(ctx); err != nil {
		return nil, err
	}
	if err := manager.Migrate(ctx); err != nil {
		manager.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			manager.Close()
			return nil
		},
	})
	return manager, nil
}

func provideRedis(lc fx.Lifecycle, cfg *config.Config) (*cache.Client, error) {
	client, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideStorage(cfg *config.Config, logger zerolog.Logger) (storage.Driver, error) {
	driver, err := storage.NewDriver(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("driver", driver.Name()).Msg("storage initialized")
	return driver, nil
}

func provideTokens(cfg *config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
}

func provideSessions(cfg *config.Config) *middleware.SessionManager {
	return middleware.NewSessionManager(&cfg.Session)
}

func provideGeo(cfg *config.Config) *geo.Client {
	return geo.NewClient(&cfg.Geo)
}

func provideUserRepository(db *database.Manager) *repository.UserRepository {
	return repository.NewUserRepository(db.Pool())
}

func provideStoreRepository(db *database.Manager) *repository.StoreRepository {
	return repository.NewStoreRepository(db.Pool())
}

func provideCategoryRepository(db *database.Manager) *repository.CategoryRepository {
	return repository.NewCategoryRepository(db.Pool())
}

func provideOfferRepository(db *database.Manager) *repository.OfferRepository {
	return repository.NewOfferRepository(db.Pool())
}

func provideOnboardingRepository(db *database.Manager) *repository.OnboardingRepository {
	return repository.NewOnboardingRepository(db.Pool())
}

func provideMediaService(driver storage.Driver, redis *cache.Client, logger zerolog.Logger) *media.Service {
	return media.NewService(driver, redis, logger)
}

func provideAuthService(users *repository.UserRepository, stores *repository.StoreRepository, tokens *utils.TokenIssuer, logger zerolog.Logger) *auth.Service {
	return auth.NewService(users, stores, tokens, logger)
}

func provideOffersService(repo *repository.OfferRepository, categories *repository.CategoryRepository, logger zerolog.Logger) *offers.Service {
	return offers.NewService(repo, categories, logger)
}

func provideOnboardingService(
	cfg *config.Config,
	redis *cache.Client,
	geocoder *geo.Client,
	writer *repository.OnboardingRepository,
	stores *repository.StoreRepository,
	users *repository.UserRepository,
	logger zerolog.Logger,
) *onboarding.Service {
	return onboarding.NewService(onboarding.Options{
		States:   onboarding.NewRedisStateStore(redis, cfg.Onboarding.StateTTL),
		Locker:   redis,
		Geocoder: geocoder,
		Writer:   writer,
		Stores:   stores,
		Profiles: users,
		Variant:  onboarding.Variant(cfg.Onboarding.Variant),
		LockTTL:  cfg.Onboarding.LockTTL,
		Logger:   logger,
	})
}

func provideLookupService(cfg *config.Config, redis *cache.Client, categories *repository.CategoryRepository, geocoder *geo.Client, logger zerolog.Logger) *lookup.Service {
	return lookup.NewService(redis, categories, geocoder, cfg.Geo.PostalCacheTTL, logger)
}

func provideProfileService(
	users *repository.UserRepository,
	stores *repository.StoreRepository,
	offerService *offers.Service,
	mediaService *media.Service,
	logger zerolog.Logger,
) *profile.Service {
	return profile.NewService(users, stores, offerService, mediaService, logger)
}

func provideHealthHandler(db *database.Manager, redis *cache.Client) *handlers.HealthHandler {
	return handlers.NewHealthHandler(map[string]handlers.Check{
		"postgres": func(ctx context.Context) error { return db.Pool().Ping(ctx) },
		"redis":    func(ctx context.Context) error { return redis.Client.Ping(ctx).Err() },
	})
}

type routerParams struct {
	fx.In

	Config     *config.Config
	Logger     zerolog.Logger
	Tokens     *utils.TokenIssuer
	Sessions   *middleware.SessionManager
	Redis      *cache.Client
	Stores     *repository.StoreRepository
	Storage    storage.Driver
	Auth       *handlers.AuthHandler
	Onboarding *handlers.OnboardingHandler
	Offers     *handlers.OfferHandler
	Lookup     *handlers.LookupHandler
	Profile    *handlers.ProfileHandler
	Uploads    *handlers.UploadHandler
	Health     *handlers.HealthHandler
}

func provideRouter(p routerParams) *gin.Engine {
	gin.SetMode(p.Config.Server.GinMode)

	// Arquivos locais são servidos pela própria API
	var uploadsPath string
	if local, ok := p.Storage.(*storage.LocalStorage); ok {
		uploadsPath = local.BasePath()
	}

	return handlers.NewRouter(handlers.RouterConfig{
		Logger:      p.Logger,
		Tokens:      p.Tokens,
		Sessions:    p.Sessions,
		StoreCache:  p.Redis,
		Stores:      p.Stores,
		UploadsPath: uploadsPath,
		Auth:        p.Auth,
		Onboarding:  p.Onboarding,
		Offers:      p.Offers,
		Lookup:      p.Lookup,
		Profile:     p.Profile,
		Uploads:     p.Uploads,
		Health:      p.Health,
	})
}

func runHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, logger zerolog.Logger, shutdowner fx.Shutdowner) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("starting server")
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("server stopped unexpectedly")
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}

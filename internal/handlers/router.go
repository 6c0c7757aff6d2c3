package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/middleware"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

// RouterConfig collects what the router needs
type RouterConfig struct {
	Logger     zerolog.Logger
	Tokens     *utils.TokenIssuer
	Sessions   *middleware.SessionManager
	StoreCache middleware.StoreCache
	Stores     middleware.StoreLookup

	// UploadsPath is served under /uploads when images are stored on disk
	UploadsPath string

	Auth       *AuthHandler
	Onboarding *OnboardingHandler
	Offers     *OfferHandler
	Lookup     *LookupHandler
	Profile    *ProfileHandler
	Uploads    *UploadHandler
	Health     *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.RouteGuard(cfg.Tokens, cfg.Sessions))

	router.NoRoute(func(c *gin.Context) {
		middleware.RespondError(c, apperr.NotFound("route not found"))
	})

	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Health)
	}
	if cfg.UploadsPath != "" {
		router.Static("/uploads", cfg.UploadsPath)
	}

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.POST("/auth/signup", cfg.Auth.SignUp)
		public.POST("/auth/signin", cfg.Auth.SignIn)
		public.POST("/auth/signout", cfg.Auth.SignOut)
		public.GET("/categories", cfg.Lookup.Categories)
		public.GET("/postal-codes/:cep", cfg.Lookup.PostalCode)
	}

	// Protected routes (authentication required)
	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(cfg.Tokens, cfg.Sessions))
	protected.Use(middleware.RequireRole(models.RoleCompany))
	{
		protected.GET("/auth/session", cfg.Auth.Session)

		protected.GET("/me", cfg.Profile.GetMe)
		protected.PUT("/me", cfg.Profile.UpdateMe)
		protected.POST("/me/avatar", cfg.Profile.UploadAvatar)
		protected.GET("/dashboard", cfg.Profile.Dashboard)

		protected.POST("/uploads/:kind", cfg.Uploads.Upload)

		onboarding := protected.Group("/onboarding")
		{
			onboarding.GET("", cfg.Onboarding.Current)
			onboarding.POST("/start", cfg.Onboarding.Start)
			onboarding.POST("/steps/:step", cfg.Onboarding.Submit)
			onboarding.POST("/back", cfg.Onboarding.Back)
			onboarding.POST("/goto/:step", cfg.Onboarding.Goto)
		}
	}

	// Store-scoped routes (authentication + completed onboarding)
	store := router.Group("/api/v1/offers")
	store.Use(middleware.AuthMiddleware(cfg.Tokens, cfg.Sessions))
	store.Use(middleware.RequireRole(models.RoleCompany))
	store.Use(middleware.StoreMiddleware(cfg.StoreCache, cfg.Stores))
	{
		store.GET("", cfg.Offers.List)
		store.POST("", cfg.Offers.Create)
		store.POST("/images", cfg.Offers.UploadImage)
		store.GET("/:id", cfg.Offers.GetByID)
		store.PUT("/:id", cfg.Offers.Update)
		store.DELETE("/:id", cfg.Offers.Delete)
	}

	return router
}

package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
)

const storeIDCacheTTL = 24 * time.Hour

type StoreCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type StoreLookup interface {
	GetStoreByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

// StoreMiddleware resolves the store of the authenticated merchant and injects
// its id. Merchants without a store get 403 until onboarding is complete.
func StoreMiddleware(storeCache StoreCache, stores StoreLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			AbortWithError(c, apperr.Unauthorized("user not authenticated"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		logger := zerolog.Ctx(c.Request.Context())

		// Step 1: try the cached store id
		key := cache.StoreIDKey(userID)
		cached, err := storeCache.Get(ctx, key)
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			logger.Warn().Err(err).Msg("store cache read failed")
		}
		if storeID, parseErr := uuid.Parse(cached); err == nil && parseErr == nil {
			c.Set(ctxStoreID, storeID)
			c.Next()
			return
		}

		// Step 2: query the database and cache the result
		store, err := stores.GetStoreByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				AbortWithError(c, apperr.Forbidden("store setup not completed"))
				return
			}
			AbortWithError(c, apperr.Internal(err, "failed to resolve store"))
			return
		}

		if err := storeCache.Set(ctx, key, store.ID.String(), storeIDCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to cache store id")
		}

		c.Set(ctxStoreID, store.ID)
		c.Next()
	}
}

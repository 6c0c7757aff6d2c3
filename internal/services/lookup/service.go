// Package lookup serves the reference data the forms need: categories and
// postal code autocompletion. Both are cached in Redis.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

const categoriesTTL = time.Hour

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

type PostalLookup interface {
	LookupPostalCode(ctx context.Context, cep string) (*models.PostalAddress, error)
}

type Service struct {
	cache      Cache
	categories CategoryLister
	postal     PostalLookup
	postalTTL  time.Duration
	logger     zerolog.Logger
}

func NewService(c Cache, categories CategoryLister, postal PostalLookup, postalTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		cache:      c,
		categories: categories,
		postal:     postal,
		postalTTL:  postalTTL,
		logger:     logging.Component(logger, "lookup"),
	}
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.fromCache(ctx, cache.CategoriesKey, &cached) {
		return cached, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list categories")
	}

	s.toCache(ctx, cache.CategoriesKey, categories, categoriesTTL)
	return categories, nil
}

// PostalCode resolves a CEP, masked or not
func (s *Service) PostalCode(ctx context.Context, cep string) (*models.PostalAddress, error) {
	digits := utils.OnlyDigits(cep)
	if !utils.ValidCEP(digits) {
		return nil, apperr.Validation("invalid postal code", map[string]string{
			"postal_code": "must have 8 digits",
		})
	}

	var cached models.PostalAddress
	if s.fromCache(ctx, cache.PostalCodeKey(digits), &cached) {
		cached.PostalCodeDisplay = utils.FormatCEP(cached.PostalCode)
		return &cached, nil
	}

	addr, err := s.postal.LookupPostalCode(ctx, digits)
	if err != nil {
		return nil, err
	}
	addr.PostalCodeDisplay = utils.FormatCEP(addr.PostalCode)

	s.toCache(ctx, cache.PostalCodeKey(digits), addr, s.postalTTL)
	return addr, nil
}

// cache trouble only costs latency, so it is logged and ignored
func (s *Service) fromCache(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry unreadable")
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

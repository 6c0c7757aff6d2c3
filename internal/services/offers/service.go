// Package offers manages a store's promotional offers and the filter/sort
// logic of the offers table.
package offers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
)

type Repository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Offer, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*models.Offer, error)
	Create(ctx context.Context, storeID uuid.UUID, req *models.OfferRequest) (uuid.UUID, error)
	Update(ctx context.Context, storeID, id uuid.UUID, req *models.OfferRequest) error
	Deactivate(ctx context.Context, storeID, id uuid.UUID) error
}

type CategoryChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo       Repository
	categories CategoryChecker
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryChecker, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logging.Component(logger, "offers"),
		now:        time.Now,
	}
}

// List returns the filtered offers. Facets are computed over the whole store
// so the dropdowns do not shrink while filtering.
func (s *Service) List(ctx context.Context, storeID uuid.UUID, f Filter) (*models.OfferListResponse, error) {
	all, err := s.listDecorated(ctx, storeID)
	if err != nil {
		return nil, err
	}

	filtered := Apply(all, f)
	categories, statuses := Facets(all)

	return &models.OfferListResponse{
		Offers:     filtered,
		TotalCount: len(filtered),
		Categories: categories,
		Statuses:   statuses,
	}, nil
}

// CountByStatus counts every offer of the store per derived status
func (s *Service) CountByStatus(ctx context.Context, storeID uuid.UUID) (map[string]int, error) {
	all, err := s.listDecorated(ctx, storeID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{
		string(models.OfferStatusActive):    0,
		string(models.OfferStatusScheduled): 0,
		string(models.OfferStatusExpired):   0,
		string(models.OfferStatusInactive):  0,
	}
	for _, o := range all {
		counts[string(o.Status)]++
	}
	return counts, nil
}

func (s *Service) listDecorated(ctx context.Context, storeID uuid.UUID) ([]models.Offer, error) {
	all, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list offers")
	}

	now := s.now()
	for i := range all {
		all[i].Decorate(now)
	}
	return all, nil
}

func (s *Service) Get(ctx context.Context, storeID, id uuid.UUID) (*models.Offer, error) {
	offer, err := s.repo.GetByID(ctx, storeID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("offer not found")
		}
		return nil, apperr.Internal(err, "failed to get offer")
	}
	offer.Decorate(s.now())
	return offer, nil
}

func (s *Service) Create(ctx context.Context, storeID uuid.UUID, req *models.OfferRequest) (*models.Offer, error) {
	if err := s.validate(ctx, req, true); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, storeID, req)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("store not found")
		}
		return nil, apperr.Internal(err, "failed to create offer")
	}

	s.logger.Info().Str("store_id", storeID.String()).Str("offer_id", id.String()).Msg("offer created")
	return s.Get(ctx, storeID, id)
}

// Update applies the fields present in req. The merged offer must still be valid.
func (s *Service) Update(ctx context.Context, storeID, id uuid.UUID, req *models.OfferRequest) (*models.Offer, error) {
	current, err := s.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, overlay(current, req), req.CategoryID != nil); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, storeID, id, req); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("offer not found")
		}
		return nil, apperr.Internal(err, "failed to update offer")
	}

	return s.Get(ctx, storeID, id)
}

// Deactivate is the delete action of the offers table
func (s *Service) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, storeID, id); err != nil {
		if repository.IsNotFound(err) {
			return apperr.NotFound("offer not found")
		}
		return apperr.Internal(err, "failed to deactivate offer")
	}
	s.logger.Info().Str("store_id", storeID.String()).Str("offer_id", id.String()).Msg("offer deactivated")
	return nil
}

// overlay returns the request as it would look after applying req to current
func overlay(current *models.Offer, req *models.OfferRequest) *models.OfferRequest {
	merged := &models.OfferRequest{
		CategoryID:    &current.CategoryID,
		Name:          &current.Name,
		Code:          &current.Code,
		Description:   &current.Description,
		OriginalPrice: &current.OriginalPrice,
		OfferPrice:    &current.OfferPrice,
		ImageURL:      &current.ImageURL,
		StartDate:     &current.StartDate,
		EndDate:       &current.EndDate,
		IsActive:      &current.IsActive,
	}
	if req.CategoryID != nil {
		merged.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		merged.Name = req.Name
	}
	if req.Code != nil {
		merged.Code = req.Code
	}
	if req.Description != nil {
		merged.Description = req.Description
	}
	if req.OriginalPrice != nil {
		merged.OriginalPrice = req.OriginalPrice
	}
	if req.OfferPrice != nil {
		merged.OfferPrice = req.OfferPrice
	}
	if req.ImageURL != nil {
		merged.ImageURL = req.ImageURL
	}
	if req.StartDate != nil {
		merged.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		merged.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		merged.IsActive = req.IsActive
	}
	return merged
}

func (s *Service) validate(ctx context.Context, req *models.OfferRequest, checkCategory bool) error {
	fields := map[string]string{}

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fields["name"] = "name is required"
	}
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		fields["description"] = "description is required"
	}
	if req.CategoryID == nil || *req.CategoryID == uuid.Nil {
		fields["category_id"] = "category is required"
	}

	if req.OriginalPrice == nil || *req.OriginalPrice <= 0 {
		fields["original_price"] = "original price must be greater than zero"
	}
	if req.OfferPrice == nil || *req.OfferPrice <= 0 {
		fields["offer_price"] = "offer price must be greater than zero"
	} else if req.OriginalPrice != nil && *req.OfferPrice >= *req.OriginalPrice {
		fields["offer_price"] = "offer price must be lower than the original price"
	}

	if req.StartDate == nil {
		fields["start_date"] = "start date is required"
	}
	if req.EndDate == nil {
		fields["end_date"] = "end date is required"
	} else if req.StartDate != nil && req.EndDate.Before(*req.StartDate) {
		fields["end_date"] = "end date must not be before the start date"
	}

	if len(fields) > 0 {
		return apperr.Validation("invalid offer", fields)
	}

	// an untouched category on edit was valid when it was stored
	if checkCategory {
		exists, err := s.categories.Exists(ctx, *req.CategoryID)
		if err != nil {
			return apperr.Internal(err, "failed to check category")
		}
		if !exists {
			return apperr.Validation("invalid offer", map[string]string{"category_id": "unknown category"})
		}
	}

	return nil
}

// Package profile backs the dashboard shell: the signed-in merchant, their
// store summary, settings updates and the navigation payload.
package profile

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/database"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/media"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

// Navigation is the dashboard sidebar
var Navigation = []models.NavItem{
	{Title: "Dashboard", Route: "/dashboard"},
	{Title: "Ofertas", Route: "/dashboard/offers"},
	{Title: "Configurações", Route: "/dashboard/settings"},
}

type Profiles interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, email, phone *string) (*models.Profile, error)
	UpdateProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) error
}

type Stores interface {
	GetStoreByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

type OfferCounter interface {
	CountByStatus(ctx context.Context, storeID uuid.UUID) (map[string]int, error)
}

type Uploader interface {
	Upload(ctx context.Context, userID uuid.UUID, kind media.Kind, filename string, size int64, src io.Reader) (*media.Upload, error)
	Remove(ctx context.Context, userID uuid.UUID, publicURL string) error
}

type Service struct {
	profiles Profiles
	stores   Stores
	offers   OfferCounter
	uploader Uploader
	logger   zerolog.Logger
}

func NewService(profiles Profiles, stores Stores, offers OfferCounter, uploader Uploader, logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		stores:   stores,
		offers:   offers,
		uploader: uploader,
		logger:   logging.Component(logger, "profile"),
	}
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.MeResponse, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.MeResponse{Profile: profile, Store: summarize(store)}, nil
}

func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (*models.DashboardResponse, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.DashboardResponse{
		Profile:      profile,
		Store:        summarize(store),
		OfferCounts:  map[string]int{},
		Navigation:   Navigation,
		SetupPending: store == nil,
	}

	if store != nil {
		counts, err := s.offers.CountByStatus(ctx, store.ID)
		if err != nil {
			return nil, err
		}
		resp.OfferCounts = counts
	}

	return resp, nil
}

// Update changes the "My details" fields present in req
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.Profile, error) {
	fields := map[string]string{}
	var name, email, phone *string

	if req.Name != nil {
		v := strings.TrimSpace(*req.Name)
		if v == "" {
			fields["name"] = "name is required"
		}
		name = &v
	}
	if req.Email != nil {
		v := utils.NormalizeEmail(*req.Email)
		if !utils.ValidEmail(v) {
			fields["email"] = "invalid email"
		}
		email = &v
	}
	if req.Phone != nil {
		v := utils.OnlyDigits(*req.Phone)
		if !utils.ValidPhone(v) {
			fields["phone"] = "phone must have 10 or 11 digits"
		}
		phone = &v
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid profile data", fields)
	}

	profile, err := s.profiles.UpdateProfile(ctx, userID, name, email, phone)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return nil, apperr.Conflict("email already registered")
		}
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal(err, "failed to update profile")
	}
	return profile.Masked(), nil
}

// UploadAvatar stores a new profile photo, points the profile at it and
// removes the photo it replaced
func (s *Service) UploadAvatar(ctx context.Context, userID uuid.UUID, filename string, size int64, src io.Reader) (*media.Upload, error) {
	current, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	up, err := s.uploader.Upload(ctx, userID, media.KindAvatar, filename, size, src)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.UpdateProfileImage(ctx, userID, up.PublicURL); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal(err, "failed to update profile image")
	}

	if previous := current.ImageURL; previous != "" && previous != up.PublicURL {
		// the new avatar is already live, a leftover file is only logged
		if err := s.uploader.Remove(ctx, userID, previous); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to remove previous avatar")
		}
	}
	return up, nil
}

func (s *Service) profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal(err, "failed to load profile")
	}
	return profile.Masked(), nil
}

// store returns nil while the merchant has not finished onboarding
func (s *Service) store(ctx context.Context, userID uuid.UUID) (*models.Store, error) {
	store, err := s.stores.GetStoreByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Internal(err, "failed to load store")
	}
	return store, nil
}

func summarize(store *models.Store) *models.StoreSummary {
	if store == nil {
		return nil
	}
	return &models.StoreSummary{
		ID:             store.ID,
		Name:           store.Name,
		ImageURL:       store.ImageURL,
		BannerImageURL: store.BannerImageURL,
	}
}

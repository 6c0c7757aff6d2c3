// Package auth implements sign-up and sign-in for merchants and decides which
// client route a signed-in merchant lands on.
package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/database"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

const (
	RouteDashboard    = "/dashboard"
	RouteProfileSetup = "/profile-setup"
)

const minPasswordLength = 6

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike
var ErrInvalidCredentials = apperr.Unauthorized("invalid login credentials")

type Users interface {
	CreateAccount(ctx context.Context, email, passwordHash, name, phone string) (*models.Profile, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type Stores interface {
	GetStoreByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

type Service struct {
	users  Users
	stores Stores
	tokens *utils.TokenIssuer
	logger zerolog.Logger
}

func NewService(users Users, stores Stores, tokens *utils.TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		users:  users,
		stores: stores,
		tokens: tokens,
		logger: logging.Component(logger, "auth"),
	}
}

// ValidateSignUp checks the form before any store access
func ValidateSignUp(req *models.SignUpRequest) map[string]string {
	fields := map[string]string{}

	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}
	if !utils.ValidEmail(utils.NormalizeEmail(req.Email)) {
		fields["email"] = "invalid email"
	}
	if !utils.ValidPhone(utils.OnlyDigits(req.Phone)) {
		fields["phone"] = "phone must have 10 or 11 digits"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "password must have at least 6 characters"
	}

	return fields
}

func ValidateSignIn(req *models.SignInRequest) map[string]string {
	fields := map[string]string{}

	if !utils.ValidEmail(utils.NormalizeEmail(req.Email)) {
		fields["email"] = "invalid email"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "password must have at least 6 characters"
	}

	return fields
}

// SignUp creates the account with a company profile. New merchants always
// continue to the store setup.
func (s *Service) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error) {
	if fields := ValidateSignUp(req); len(fields) > 0 {
		return nil, apperr.Validation("invalid sign-up data", fields)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	email := utils.NormalizeEmail(req.Email)
	profile, err := s.users.CreateAccount(ctx, email, hash, strings.TrimSpace(req.Name), utils.OnlyDigits(req.Phone))
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal(err, "failed to create account")
	}

	s.logger.Info().Str("user_id", profile.ID.String()).Msg("account created")

	return s.respond(profile, RouteProfileSetup)
}

// SignIn checks the credentials and picks the landing route
func (s *Service) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error) {
	if fields := ValidateSignIn(req); len(fields) > 0 {
		return nil, apperr.Validation("invalid sign-in data", fields)
	}

	user, err := s.users.GetUserByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err, "failed to sign in")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load profile")
	}

	route, err := s.RouteFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.respond(profile, route)
}

// Session returns the profile and landing route of an authenticated user
func (s *Service) Session(ctx context.Context, userID uuid.UUID) (*models.Profile, string, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", apperr.Unauthorized("session no longer valid")
		}
		return nil, "", apperr.Internal(err, "failed to load profile")
	}

	route, err := s.RouteFor(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return profile.Masked(), route, nil
}

// RouteFor sends merchants with a store to the dashboard and the rest to setup
func (s *Service) RouteFor(ctx context.Context, userID uuid.UUID) (string, error) {
	_, err := s.stores.GetStoreByUserID(ctx, userID)
	if err == nil {
		return RouteDashboard, nil
	}
	if repository.IsNotFound(err) {
		return RouteProfileSetup, nil
	}
	return "", apperr.Internal(err, "failed to look up store")
}

func (s *Service) respond(profile *models.Profile, route string) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Generate(profile.ID, profile.Role)
	if err != nil {
		return nil, apperr.Internal(err, "failed to generate token")
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   profile.Masked(),
		Redirect:  route,
	}, nil
}

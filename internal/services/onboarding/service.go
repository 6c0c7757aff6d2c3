package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/database"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
)

// DashboardRoute is where the client goes once the store exists
const DashboardRoute = "/dashboard"

// ErrAlreadyOnboarded is returned to merchants that already own a store
var ErrAlreadyOnboarded = apperr.Conflict("store already registered").WithRedirect(DashboardRoute)

type StateStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*State, error)
	Save(ctx context.Context, userID uuid.UUID, state *State) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), ok bool, err error)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

type Writer interface {
	WithTx(ctx context.Context, fn func(w repository.StoreWriter) error) error
}

type StoreChecker interface {
	CNPJExists(ctx context.Context, cnpj string) (bool, error)
	GetStoreByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type Service struct {
	states   StateStore
	locker   Locker
	geocoder Geocoder
	writer   Writer
	stores   StoreChecker
	profiles ProfileReader
	variant  Variant
	lockTTL  time.Duration
	logger   zerolog.Logger
}

type Options struct {
	States   StateStore
	Locker   Locker
	Geocoder Geocoder
	Writer   Writer
	Stores   StoreChecker
	Profiles ProfileReader
	// Variant is used when the client does not pick one
	Variant Variant
	LockTTL time.Duration
	Logger  zerolog.Logger
}

func NewService(opts Options) *Service {
	variant := opts.Variant
	if _, ok := variantSteps[variant]; !ok {
		variant = VariantThreeStep
	}
	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	return &Service{
		states:   opts.States,
		locker:   opts.Locker,
		geocoder: opts.Geocoder,
		writer:   opts.Writer,
		stores:   opts.Stores,
		profiles: opts.Profiles,
		variant:  variant,
		lockTTL:  lockTTL,
		logger:   logging.Component(opts.Logger, "onboarding"),
	}
}

// StepView is one wizard tab as the client renders it
type StepView struct {
	Name      Step `json:"name"`
	Completed bool `json:"completed"`
	Unlocked  bool `json:"unlocked"`
}

type View struct {
	Variant  Variant    `json:"variant"`
	Active   Step       `json:"active_step"`
	Steps    []StepView `json:"steps"`
	Progress Progress   `json:"progress"`
	Data     Data       `json:"data"`
	Display  Display    `json:"display"`
}

// Result is returned by Submit. Done is set once the store has been written.
type Result struct {
	View     *View      `json:"wizard,omitempty"`
	Done     bool       `json:"done"`
	StoreID  *uuid.UUID `json:"store_id,omitempty"`
	Redirect string     `json:"redirect,omitempty"`
}

func newView(s *State) *View {
	view := &View{
		Variant:  s.Variant,
		Active:   s.Active,
		Progress: s.Progress(),
		Data:     s.Data,
		Display:  s.Data.Display(),
	}
	for _, step := range s.Steps() {
		view.Steps = append(view.Steps, StepView{
			Name:      step,
			Completed: s.isCompleted(step),
			Unlocked:  s.Unlocked(step),
		})
	}
	return view
}

// Start discards any wizard in progress and begins a new one
func (s *Service) Start(ctx context.Context, userID uuid.UUID, variantName string) (*View, error) {
	variant, err := ParseVariant(variantName, s.variant)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoStore(ctx, userID); err != nil {
		return nil, err
	}

	state, err := s.fresh(ctx, userID, variant)
	if err != nil {
		return nil, err
	}

	if err := s.states.Save(ctx, userID, state); err != nil {
		return nil, apperr.Internal(err, "failed to start onboarding")
	}

	return newView(state), nil
}

// Current returns the wizard in progress, starting the default one if needed
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*View, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newView(state), nil
}

// Submit completes the active step. Submitting the final step writes owner,
// store and address and clears the wizard.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, step Step, in Data) (*Result, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if stepKinds[step] == kindCompany && state.Active == step {
		if err := s.checkCNPJ(ctx, in.CNPJ); err != nil {
			return nil, err
		}
	}

	final, err := state.Submit(step, in)
	if err != nil {
		return nil, err
	}

	if !final {
		if err := s.states.Save(ctx, userID, state); err != nil {
			return nil, apperr.Internal(err, "failed to save onboarding progress")
		}
		return &Result{View: newView(state)}, nil
	}

	storeID, err := s.complete(ctx, userID, state)
	if err != nil {
		return nil, err
	}

	return &Result{Done: true, StoreID: &storeID, Redirect: DashboardRoute}, nil
}

// Back returns to the previous step
func (s *Service) Back(ctx context.Context, userID uuid.UUID) (*View, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := state.Back(); err != nil {
		return nil, err
	}
	if err := s.states.Save(ctx, userID, state); err != nil {
		return nil, apperr.Internal(err, "failed to save onboarding progress")
	}
	return newView(state), nil
}

// Goto activates an unlocked step
func (s *Service) Goto(ctx context.Context, userID uuid.UUID, step Step) (*View, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := state.Goto(step); err != nil {
		return nil, err
	}
	if err := s.states.Save(ctx, userID, state); err != nil {
		return nil, apperr.Internal(err, "failed to save onboarding progress")
	}
	return newView(state), nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*State, error) {
	if err := s.ensureNoStore(ctx, userID); err != nil {
		return nil, err
	}

	state, err := s.states.Load(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load onboarding")
	}
	if state != nil {
		return state, nil
	}

	state, err = s.fresh(ctx, userID, s.variant)
	if err != nil {
		return nil, err
	}
	if err := s.states.Save(ctx, userID, state); err != nil {
		return nil, apperr.Internal(err, "failed to start onboarding")
	}
	return state, nil
}

// fresh builds a new state with the store name taken from the profile
func (s *Service) fresh(ctx context.Context, userID uuid.UUID, variant Variant) (*State, error) {
	state, err := NewState(variant)
	if err != nil {
		return nil, apperr.Internal(err, "failed to start onboarding")
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal(err, "failed to load profile")
	}
	state.Data.Name = profile.Name

	return state, nil
}

// ensureNoStore rejects every wizard operation once the merchant has a store
func (s *Service) ensureNoStore(ctx context.Context, userID uuid.UUID) error {
	_, err := s.stores.GetStoreByUserID(ctx, userID)
	if err == nil {
		return ErrAlreadyOnboarded
	}
	if repository.IsNotFound(err) {
		return nil
	}
	return apperr.Internal(err, "failed to look up store")
}

func (s *Service) checkCNPJ(ctx context.Context, cnpj string) error {
	digits := cnpjDigits(cnpj)
	if digits == "" {
		// malformed, reported by step validation
		return nil
	}
	exists, err := s.stores.CNPJExists(ctx, digits)
	if err != nil {
		return apperr.Internal(err, "failed to check CNPJ")
	}
	if exists {
		return apperr.Conflict("a store with this CNPJ is already registered")
	}
	return nil
}

// complete performs the terminal write under a per-user lock
func (s *Service) complete(ctx context.Context, userID uuid.UUID, state *State) (uuid.UUID, error) {
	release, ok, err := s.locker.Acquire(ctx, cache.SubmitLockKey(userID), s.lockTTL)
	if err != nil {
		return uuid.Nil, apperr.Internal(err, "failed to lock onboarding submission")
	}
	if !ok {
		return uuid.Nil, apperr.Conflict("submission already in progress")
	}
	defer release(context.WithoutCancel(ctx))

	// a parallel wizard may have finished before we took the lock
	if err := s.ensureNoStore(ctx, userID); err != nil {
		return uuid.Nil, err
	}

	data := state.Data

	coords, err := s.geocoder.Geocode(ctx, data.AddressLine())
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return uuid.Nil, appErr
		}
		return uuid.Nil, apperr.Upstream(err, "failed to geocode address")
	}

	categoryID, err := uuid.Parse(data.CategoryID)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid step data", map[string]string{"category_id": "invalid category"})
	}

	var storeID uuid.UUID
	err = s.writer.WithTx(ctx, func(w repository.StoreWriter) error {
		ownerID, err := w.UpsertOwner(ctx, userID, data.CPF)
		if err != nil {
			return err
		}

		storeID, err = w.InsertStore(ctx, &models.Store{
			OwnerID:        ownerID,
			Name:           data.Name,
			CNPJ:           data.CNPJ,
			Description:    data.Description,
			CategoryID:     categoryID,
			ImageURL:       data.ImageURL,
			BannerImageURL: data.BannerURL,
			Latitude:       coords.Latitude,
			Longitude:      coords.Longitude,
		})
		if err != nil {
			return err
		}

		return w.InsertAddress(ctx, &models.Address{
			StoreID:      storeID,
			ProfileID:    userID,
			Street:       data.Street,
			Number:       data.Number,
			Neighborhood: data.Neighborhood,
			City:         data.City,
			State:        data.State,
			PostalCode:   data.PostalCode,
			Country:      Country,
			Latitude:     coords.Latitude,
			Longitude:    coords.Longitude,
		})
	})
	if err != nil {
		if database.IsUniqueViolation(err, "stores_cnpj_key") {
			return uuid.Nil, apperr.Conflict("a store with this CNPJ is already registered")
		}
		if database.IsUniqueViolation(err, "stores_owner_id_key") {
			return uuid.Nil, ErrAlreadyOnboarded
		}
		return uuid.Nil, apperr.Internal(err, "failed to register store")
	}

	if err := s.states.Delete(ctx, userID); err != nil {
		// the store exists; a stale wizard is harmless
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to clear wizard state")
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("store_id", storeID.String()).
		Str("variant", string(state.Variant)).
		Msg("store onboarding completed")

	return storeID, nil
}

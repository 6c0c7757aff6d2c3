package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
)

type memStates struct {
	mu     sync.Mutex
	states map[uuid.UUID]State
}

func newMemStates() *memStates {
	return &memStates{states: map[uuid.UUID]State{}}
}

func (m *memStates) Load(_ context.Context, userID uuid.UUID) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	s.Completed = append([]Step(nil), s.Completed...)
	return &s, nil
}

func (m *memStates) Save(_ context.Context, userID uuid.UUID, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.Completed = append([]Step(nil), s.Completed...)
	m.states[userID] = cp
	return nil
}

func (m *memStates) Delete(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, true, nil
}

type fakeGeocoder struct {
	err     error
	calls   int
	mu      sync.Mutex
	started chan struct{}
	proceed chan struct{}
}

func (g *fakeGeocoder) Geocode(context.Context, string) (*models.Coordinates, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.started != nil {
		close(g.started)
		<-g.proceed
	}
	if g.err != nil {
		return nil, g.err
	}
	return &models.Coordinates{Latitude: -5.08, Longitude: -42.8}, nil
}

// fakeDB records writes and keeps them only when the transaction commits
type fakeDB struct {
	failOn    string
	failErr   error
	calls     []string
	committed []string
	stores    []models.Store
	owners    map[uuid.UUID]bool
}

func (d *fakeDB) WithTx(ctx context.Context, fn func(w repository.StoreWriter) error) error {
	tx := &fakeTx{db: d}
	if err := fn(tx); err != nil {
		return err
	}
	d.committed = append(d.committed, tx.pending...)
	d.stores = append(d.stores, tx.stores...)
	if len(tx.stores) > 0 {
		if d.owners == nil {
			d.owners = map[uuid.UUID]bool{}
		}
		d.owners[tx.owner] = true
	}
	return nil
}

type fakeTx struct {
	db      *fakeDB
	owner   uuid.UUID
	pending []string
	stores  []models.Store
}

func (t *fakeTx) record(op string) error {
	t.db.calls = append(t.db.calls, op)
	if t.db.failOn == op {
		if t.db.failErr != nil {
			return t.db.failErr
		}
		return errors.New(op + " failed")
	}
	t.pending = append(t.pending, op)
	return nil
}

func (t *fakeTx) UpsertOwner(_ context.Context, userID uuid.UUID, _ string) (uuid.UUID, error) {
	t.owner = userID
	return uuid.New(), t.record("owner")
}

func (t *fakeTx) InsertStore(_ context.Context, s *models.Store) (uuid.UUID, error) {
	if err := t.record("store"); err != nil {
		return uuid.Nil, err
	}
	t.stores = append(t.stores, *s)
	return uuid.New(), nil
}

func (t *fakeTx) InsertAddress(context.Context, *models.Address) error {
	return t.record("address")
}

// fakeStores answers store lookups from what fakeDB committed
type fakeStores struct {
	exists bool
	db     *fakeDB
}

func (f fakeStores) CNPJExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f fakeStores) GetStoreByUserID(_ context.Context, userID uuid.UUID) (*models.Store, error) {
	if f.db != nil && f.db.owners[userID] {
		return &models.Store{ID: uuid.New()}, nil
	}
	return nil, repository.ErrNotFound
}

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	return &models.Profile{ID: id, Name: "Mercadinho Central"}, nil
}

type fixture struct {
	svc    *Service
	states *memStates
	geo    *fakeGeocoder
	db     *fakeDB
}

func newFixture(stores fakeStores) *fixture {
	f := &fixture{
		states: newMemStates(),
		geo:    &fakeGeocoder{},
		db:     &fakeDB{},
	}
	stores.db = f.db
	f.svc = NewService(Options{
		States:   f.states,
		Locker:   &memLocker{},
		Geocoder: f.geo,
		Writer:   f.db,
		Stores:   stores,
		Profiles: fakeProfiles{},
		Variant:  VariantThreeStep,
		Logger:   zerolog.Nop(),
	})
	return f
}

// reachFinalStep completes store and image steps
func (f *fixture) reachFinalStep(t *testing.T, userID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.Submit(ctx, userID, StepStore, companyData()); err != nil {
		t.Fatalf("Submit(store) error = %v", err)
	}
	if _, err := f.svc.Submit(ctx, userID, StepImage, imageData()); err != nil {
		t.Fatalf("Submit(image) error = %v", err)
	}
}

func TestServiceCompletesInOrder(t *testing.T) {
	f := newFixture(fakeStores{})
	userID := uuid.New()
	f.reachFinalStep(t, userID)

	res, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
	if err != nil {
		t.Fatalf("Submit(location) error = %v", err)
	}
	if !res.Done || res.Redirect != "/dashboard" || res.StoreID == nil {
		t.Errorf("Submit() = %+v", res)
	}

	want := []string{"owner", "store", "address"}
	if len(f.db.committed) != len(want) {
		t.Fatalf("committed = %v, want %v", f.db.committed, want)
	}
	for i := range want {
		if f.db.committed[i] != want[i] {
			t.Errorf("committed = %v, want %v", f.db.committed, want)
		}
	}

	store := f.db.stores[0]
	if store.Name != "Mercadinho Central" || store.CNPJ != "11222333000181" || store.Latitude != -5.08 {
		t.Errorf("store = %+v", store)
	}

	if s, _ := f.states.Load(context.Background(), userID); s != nil {
		t.Error("wizard state should be cleared after completion")
	}
}

func TestServiceRollsBackOnAddressFailure(t *testing.T) {
	f := newFixture(fakeStores{})
	f.db.failOn = "address"
	userID := uuid.New()
	f.reachFinalStep(t, userID)

	_, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("Submit() error = %v, want internal", err)
	}
	if len(f.db.committed) != 0 || len(f.db.stores) != 0 {
		t.Errorf("nothing should be committed, got %v", f.db.committed)
	}

	// state stays at the final step so the merchant can retry
	s, _ := f.states.Load(context.Background(), userID)
	if s == nil || s.Active != StepLocation {
		t.Fatalf("state = %+v, want active location", s)
	}

	f.db.failOn = ""
	if _, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData()); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if len(f.db.stores) != 1 {
		t.Errorf("stores = %d, want 1", len(f.db.stores))
	}
}

func TestServiceGeocodeFailureKeepsState(t *testing.T) {
	f := newFixture(fakeStores{})
	f.geo.err = apperr.Upstream(errors.New("timeout"), "failed to geocode address")
	userID := uuid.New()
	f.reachFinalStep(t, userID)

	_, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("Submit() error = %v, want upstream", err)
	}
	if len(f.db.calls) != 0 {
		t.Errorf("no write expected, got %v", f.db.calls)
	}

	s, _ := f.states.Load(context.Background(), userID)
	if s == nil || s.Active != StepLocation {
		t.Errorf("state = %+v", s)
	}
}

func TestServiceCNPJConflict(t *testing.T) {
	f := newFixture(fakeStores{exists: true})

	_, err := f.svc.Submit(context.Background(), uuid.New(), StepStore, companyData())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Submit() error = %v, want conflict", err)
	}
}

func TestServiceUniqueViolationIsConflict(t *testing.T) {
	f := newFixture(fakeStores{})
	f.db.failOn = "store"
	f.db.failErr = &pgconn.PgError{Code: "23505", ConstraintName: "stores_cnpj_key"}
	userID := uuid.New()
	f.reachFinalStep(t, userID)

	_, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Submit() error = %v, want conflict", err)
	}
}

func TestServiceConcurrentSubmitConflicts(t *testing.T) {
	f := newFixture(fakeStores{})
	userID := uuid.New()
	f.reachFinalStep(t, userID)

	f.geo.started = make(chan struct{})
	f.geo.proceed = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
		done <- err
	}()

	<-f.geo.started
	f.geo.started = nil

	_, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second Submit() error = %v, want conflict", err)
	}

	close(f.geo.proceed)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if len(f.db.stores) != 1 {
		t.Errorf("stores = %d, want 1", len(f.db.stores))
	}
}

func TestServiceStartVariant(t *testing.T) {
	f := newFixture(fakeStores{})
	userID := uuid.New()

	view, err := f.svc.Start(context.Background(), userID, "four-step")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if view.Active != StepInfo || len(view.Steps) != 4 || view.Progress.Label != "Etapa 1/4" {
		t.Errorf("Start() = %+v", view)
	}
	if view.Steps[1].Unlocked {
		t.Error("visual step must be locked")
	}
	if view.Data.Name != "Mercadinho Central" {
		t.Errorf("name = %q", view.Data.Name)
	}

	if _, err := f.svc.Start(context.Background(), userID, "ten-step"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Start(ten-step) error = %v, want validation", err)
	}
}

func TestServiceBackAndGoto(t *testing.T) {
	f := newFixture(fakeStores{})
	userID := uuid.New()
	ctx := context.Background()

	if _, err := f.svc.Back(ctx, userID); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Back() at start error = %v", err)
	}
	if _, err := f.svc.Goto(ctx, userID, StepLocation); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("Goto(location) error = %v", err)
	}

	f.reachFinalStep(t, userID)

	view, err := f.svc.Back(ctx, userID)
	if err != nil || view.Active != StepImage {
		t.Fatalf("Back() = %+v, %v", view, err)
	}

	view, err = f.svc.Goto(ctx, userID, StepLocation)
	if err != nil || view.Active != StepLocation {
		t.Fatalf("Goto(location) = %+v, %v", view, err)
	}
	if view.Data.ImageURL == "" {
		t.Error("accumulator lost after navigation")
	}
}

func TestServiceRejectsSecondOnboarding(t *testing.T) {
	f := newFixture(fakeStores{})
	userID := uuid.New()
	ctx := context.Background()

	f.reachFinalStep(t, userID)
	if _, err := f.svc.Submit(ctx, userID, StepLocation, locationData()); err != nil {
		t.Fatalf("Submit(location) error = %v", err)
	}

	_, err := f.svc.Start(ctx, userID, "")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Start() after completion error = %v, want conflict", err)
	}
	if appErr := apperr.As(err); appErr.Redirect != DashboardRoute {
		t.Errorf("redirect = %q, want %q", appErr.Redirect, DashboardRoute)
	}

	for _, step := range []Step{StepStore, StepImage, StepLocation} {
		if _, err := f.svc.Submit(ctx, userID, step, companyData()); !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("Submit(%s) error = %v, want conflict", step, err)
		}
	}
	if _, err := f.svc.Current(ctx, userID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Current() error = %v, want conflict", err)
	}

	if len(f.db.stores) != 1 {
		t.Errorf("stores written = %d, want 1", len(f.db.stores))
	}
	if s, _ := f.states.Load(ctx, userID); s != nil {
		t.Error("no wizard state should be created for an onboarded merchant")
	}
}

func TestServiceStoreCreatedByParallelWizard(t *testing.T) {
	f := newFixture(fakeStores{})
	userID := uuid.New()
	f.reachFinalStep(t, userID)

	// the owner index fires when another wizard committed first
	f.db.failOn = "store"
	f.db.failErr = &pgconn.PgError{Code: "23505", ConstraintName: "stores_owner_id_key"}

	_, err := f.svc.Submit(context.Background(), userID, StepLocation, locationData())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Submit() error = %v, want conflict", err)
	}
	if apperr.As(err).Redirect != DashboardRoute {
		t.Errorf("redirect = %q", apperr.As(err).Redirect)
	}
}

package profile

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/repository"
	"github.com/Andessonreis/corre-aqui-dash/internal/services/media"
)

type memProfiles struct {
	profile *models.Profile
	image   string
}

func (m *memProfiles) GetProfile(context.Context, uuid.UUID) (*models.Profile, error) {
	if m.profile == nil {
		return nil, repository.ErrNotFound
	}
	return m.profile, nil
}

func (m *memProfiles) UpdateProfile(_ context.Context, _ uuid.UUID, name, email, phone *string) (*models.Profile, error) {
	if name != nil {
		m.profile.Name = *name
	}
	if email != nil {
		m.profile.Email = *email
	}
	if phone != nil {
		m.profile.Phone = *phone
	}
	return m.profile, nil
}

func (m *memProfiles) UpdateProfileImage(_ context.Context, _ uuid.UUID, url string) error {
	m.image = url
	return nil
}

type oneStore struct{ store *models.Store }

func (o oneStore) GetStoreByUserID(context.Context, uuid.UUID) (*models.Store, error) {
	if o.store == nil {
		return nil, repository.ErrNotFound
	}
	return o.store, nil
}

type fixedCounts map[string]int

func (f fixedCounts) CountByStatus(context.Context, uuid.UUID) (map[string]int, error) { return f, nil }

type stubUploader struct {
	removed []string
}

func (u *stubUploader) Upload(_ context.Context, userID uuid.UUID, kind media.Kind, _ string, _ int64, _ io.Reader) (*media.Upload, error) {
	key := "profiles/" + userID.String() + "/avatar-1.png"
	return &media.Upload{Kind: kind, Key: key, PublicURL: "/uploads/" + key}, nil
}

func (u *stubUploader) Remove(_ context.Context, _ uuid.UUID, publicURL string) error {
	u.removed = append(u.removed, publicURL)
	return nil
}

func TestDashboardWithoutStore(t *testing.T) {
	svc := NewService(&memProfiles{profile: &models.Profile{Name: "Maria"}}, oneStore{}, fixedCounts{}, &stubUploader{}, zerolog.Nop())

	resp, err := svc.Dashboard(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if !resp.SetupPending || resp.Store != nil {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Navigation) != 3 || resp.Navigation[1].Route != "/dashboard/offers" {
		t.Errorf("navigation = %+v", resp.Navigation)
	}
}

func TestDashboardWithStore(t *testing.T) {
	store := &models.Store{ID: uuid.New(), Name: "Mercadinho", ImageURL: "/uploads/logo.png"}
	svc := NewService(&memProfiles{profile: &models.Profile{Name: "Maria"}}, oneStore{store}, fixedCounts{"active": 2}, &stubUploader{}, zerolog.Nop())

	resp, err := svc.Dashboard(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if resp.SetupPending || resp.Store.Name != "Mercadinho" || resp.OfferCounts["active"] != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUpdateValidates(t *testing.T) {
	profiles := &memProfiles{profile: &models.Profile{Name: "Maria", Phone: "86999991234"}}
	svc := NewService(profiles, oneStore{}, fixedCounts{}, &stubUploader{}, zerolog.Nop())

	bad := "12"
	if _, err := svc.Update(context.Background(), uuid.New(), &models.UpdateProfileRequest{Phone: &bad}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Update(phone=12) error = %v", err)
	}

	name := "  Maria Souza "
	email := "MARIA@example.com"
	p, err := svc.Update(context.Background(), uuid.New(), &models.UpdateProfileRequest{Name: &name, Email: &email})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Maria Souza" || p.Email != "maria@example.com" || p.Phone != "86999991234" {
		t.Errorf("profile = %+v", p)
	}
}

func TestUploadAvatarUpdatesProfile(t *testing.T) {
	profiles := &memProfiles{profile: &models.Profile{ImageURL: "/uploads/profiles/old/avatar-0.png"}}
	uploader := &stubUploader{}
	svc := NewService(profiles, oneStore{}, fixedCounts{}, uploader, zerolog.Nop())

	up, err := svc.UploadAvatar(context.Background(), uuid.New(), "me.png", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if profiles.image != up.PublicURL {
		t.Errorf("image = %q, want %q", profiles.image, up.PublicURL)
	}
	if len(uploader.removed) != 1 || uploader.removed[0] != "/uploads/profiles/old/avatar-0.png" {
		t.Errorf("removed = %v, want the previous avatar", uploader.removed)
	}
}

func TestUploadAvatarUnknownProfile(t *testing.T) {
	uploader := &stubUploader{}
	svc := NewService(&memProfiles{}, oneStore{}, fixedCounts{}, uploader, zerolog.Nop())

	if _, err := svc.UploadAvatar(context.Background(), uuid.New(), "me.png", 10, nil); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("UploadAvatar() error = %v", err)
	}
	if len(uploader.removed) != 0 {
		t.Errorf("removed = %v", uploader.removed)
	}
}

func TestMeUnknownProfile(t *testing.T) {
	svc := NewService(&memProfiles{}, oneStore{}, fixedCounts{}, &stubUploader{}, zerolog.Nop())
	if _, err := svc.Me(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Me() error = %v", err)
	}
}

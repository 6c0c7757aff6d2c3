package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

type memCache struct {
	data map[string]string
	ttls map[string]time.Duration
	down bool
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	if m.down {
		return "", errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.down {
		return errors.New("connection refused")
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = ttl
	return nil
}

type countingCategories struct{ calls int }

func (c *countingCategories) List(context.Context) ([]models.Category, error) {
	c.calls++
	return []models.Category{{ID: uuid.New(), Name: "Alimentação"}}, nil
}

type countingPostal struct{ calls int }

func (p *countingPostal) LookupPostalCode(_ context.Context, cep string) (*models.PostalAddress, error) {
	p.calls++
	if cep == "99999999" {
		return nil, apperr.NotFound("postal code not found")
	}
	return &models.PostalAddress{PostalCode: cep, City: "Teresina", State: "PI"}, nil
}

func TestCategoriesAreCached(t *testing.T) {
	c := newMemCache()
	cats := &countingCategories{}
	svc := NewService(c, cats, &countingPostal{}, time.Hour, zerolog.Nop())

	for i := 0; i < 3; i++ {
		got, err := svc.Categories(context.Background())
		if err != nil || len(got) != 1 || got[0].Name != "Alimentação" {
			t.Fatalf("Categories() = %v, %v", got, err)
		}
	}
	if cats.calls != 1 {
		t.Errorf("repository called %d times, want 1", cats.calls)
	}
}

func TestPostalCodeCachedAndNormalized(t *testing.T) {
	c := newMemCache()
	postal := &countingPostal{}
	svc := NewService(c, cats(), postal, 168*time.Hour, zerolog.Nop())

	if _, err := svc.PostalCode(context.Background(), "64000-000"); err != nil {
		t.Fatal(err)
	}
	addr, err := svc.PostalCode(context.Background(), "64000000")
	if err != nil {
		t.Fatal(err)
	}
	if addr.City != "Teresina" || addr.PostalCode != "64000000" || addr.PostalCodeDisplay != "64000-000" {
		t.Errorf("addr = %+v", addr)
	}
	if postal.calls != 1 {
		t.Errorf("lookup called %d times, want 1", postal.calls)
	}
	if c.ttls[cache.PostalCodeKey("64000000")] != 168*time.Hour {
		t.Errorf("ttl = %v", c.ttls[cache.PostalCodeKey("64000000")])
	}
}

func TestPostalCodeErrors(t *testing.T) {
	svc := NewService(newMemCache(), cats(), &countingPostal{}, time.Hour, zerolog.Nop())

	if _, err := svc.PostalCode(context.Background(), "6400"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("short cep error = %v", err)
	}
	if _, err := svc.PostalCode(context.Background(), "99999-999"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown cep error = %v", err)
	}
}

func TestCacheOutageFallsThrough(t *testing.T) {
	c := newMemCache()
	c.down = true
	svc := NewService(c, cats(), &countingPostal{}, time.Hour, zerolog.Nop())

	if _, err := svc.Categories(context.Background()); err != nil {
		t.Errorf("Categories() error = %v", err)
	}
}

func cats() *countingCategories { return &countingCategories{} }

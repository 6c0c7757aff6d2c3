package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// GetStoreByUserID retrieves the store owned by a user through the owners table
func (r *StoreRepository) GetStoreByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error) {
	store := &models.Store{}

	query := `
		SELECT s.id, s.owner_id, s.name, s.cnpj, s.description, s.category_id,
			s.image_url, s.banner_image_url, s.latitude, s.longitude, s.zone_id, s.created_at
		FROM stores s
		JOIN owners o ON o.id = s.owner_id
		WHERE o.user_id = $1
		ORDER BY s.created_at
		LIMIT 1
	`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&store.ID,
		&store.OwnerID,
		&store.Name,
		&store.CNPJ,
		&store.Description,
		&store.CategoryID,
		&store.ImageURL,
		&store.BannerImageURL,
		&store.Latitude,
		&store.Longitude,
		&store.ZoneID,
		&store.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return store, nil
}

// CNPJExists checks the unmasked cnpj against registered stores
func (r *StoreRepository) CNPJExists(ctx context.Context, cnpj string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stores WHERE cnpj = $1)`, cnpj).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cnpj: %w", err)
	}

	return exists, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

// StoreWriter is the set of writes performed when a wizard completes.
// All calls share one transaction.
type StoreWriter interface {
	UpsertOwner(ctx context.Context, userID uuid.UUID, cpf string) (uuid.UUID, error)
	InsertStore(ctx context.Context, store *models.Store) (uuid.UUID, error)
	InsertAddress(ctx context.Context, address *models.Address) error
}

type OnboardingRepository struct {
	pool *pgxpool.Pool
}

func NewOnboardingRepository(pool *pgxpool.Pool) *OnboardingRepository {
	return &OnboardingRepository{pool: pool}
}

// WithTx runs fn inside a transaction. Any error from fn rolls everything back.
func (r *OnboardingRepository) WithTx(ctx context.Context, fn func(w StoreWriter) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type storeTx struct {
	tx pgx.Tx
}

// UpsertOwner creates the owner row or refreshes its cpf
func (s *storeTx) UpsertOwner(ctx context.Context, userID uuid.UUID, cpf string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, `
		INSERT INTO owners (user_id, cpf)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET cpf = EXCLUDED.cpf
		RETURNING id
	`, userID, cpf).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert owner: %w", err)
	}
	return id, nil
}

func (s *storeTx) InsertStore(ctx context.Context, store *models.Store) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, `
		INSERT INTO stores (owner_id, name, cnpj, description, category_id,
			image_url, banner_image_url, latitude, longitude, zone_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		store.OwnerID,
		store.Name,
		store.CNPJ,
		store.Description,
		store.CategoryID,
		store.ImageURL,
		store.BannerImageURL,
		store.Latitude,
		store.Longitude,
		store.ZoneID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert store: %w", err)
	}
	return id, nil
}

func (s *storeTx) InsertAddress(ctx context.Context, address *models.Address) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO addresses (store_id, profile_id, street, number, neighborhood,
			city, state, postal_code, country, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		address.StoreID,
		address.ProfileID,
		address.Street,
		address.Number,
		address.Neighborhood,
		address.City,
		address.State,
		address.PostalCode,
		address.Country,
		address.Latitude,
		address.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

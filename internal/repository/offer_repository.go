package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

// OfferRepository handles offer data access. Every query is scoped to one store.
type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

const offerColumns = `
	o.id, o.store_id, o.zone_id, o.category_id, COALESCE(c.name, ''), o.name, o.code,
	o.description, o.original_price, o.offer_price, o.image_url, o.start_date, o.end_date,
	o.is_active, o.created_at, o.updated_at
`

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var offer models.Offer
	err := row.Scan(
		&offer.ID,
		&offer.StoreID,
		&offer.ZoneID,
		&offer.CategoryID,
		&offer.CategoryName,
		&offer.Name,
		&offer.Code,
		&offer.Description,
		&offer.OriginalPrice,
		&offer.OfferPrice,
		&offer.ImageURL,
		&offer.StartDate,
		&offer.EndDate,
		&offer.IsActive,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListByStore returns the store's offers, newest first
func (r *OfferRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		LEFT JOIN categories c ON c.id = o.category_id
		WHERE o.store_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// GetByID retrieves one offer of the store
func (r *OfferRepository) GetByID(ctx context.Context, storeID, id uuid.UUID) (*models.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		LEFT JOIN categories c ON c.id = o.category_id
		WHERE o.store_id = $1 AND o.id = $2
	`

	offer, err := scanOffer(r.pool.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// Create inserts an offer. zone_id is inherited from the store.
func (r *OfferRepository) Create(ctx context.Context, storeID uuid.UUID, req *models.OfferRequest) (uuid.UUID, error) {
	code := ""
	if req.Code != nil {
		code = *req.Code
	}

	imageURL := ""
	if req.ImageURL != nil {
		imageURL = *req.ImageURL
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO offers (store_id, zone_id, category_id, name, code, description,
			original_price, offer_price, image_url, start_date, end_date, is_active)
		SELECT $1, s.zone_id, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		FROM stores s
		WHERE s.id = $1
		RETURNING id
	`,
		storeID,
		req.CategoryID,
		req.Name,
		code,
		req.Description,
		req.OriginalPrice,
		req.OfferPrice,
		imageURL,
		req.StartDate,
		req.EndDate,
		active,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create offer: %w", err)
	}

	return id, nil
}

// Update applies the non-nil fields of req
func (r *OfferRepository) Update(ctx context.Context, storeID, id uuid.UUID, req *models.OfferRequest) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE offers SET
			category_id = COALESCE($3, category_id),
			name = COALESCE($4, name),
			code = COALESCE($5, code),
			description = COALESCE($6, description),
			original_price = COALESCE($7, original_price),
			offer_price = COALESCE($8, offer_price),
			image_url = COALESCE($9, image_url),
			start_date = COALESCE($10, start_date),
			end_date = COALESCE($11, end_date),
			is_active = COALESCE($12, is_active),
			updated_at = now()
		WHERE store_id = $1 AND id = $2
	`,
		storeID,
		id,
		req.CategoryID,
		req.Name,
		req.Code,
		req.Description,
		req.OriginalPrice,
		req.OfferPrice,
		req.ImageURL,
		req.StartDate,
		req.EndDate,
		req.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update offer: %w", ErrNotFound)
	}

	return nil
}

// Deactivate hides the offer without deleting it
func (r *OfferRepository) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE offers SET is_active = false, updated_at = now()
		WHERE store_id = $1 AND id = $2
	`, storeID, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to deactivate offer: %w", ErrNotFound)
	}

	return nil
}

package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// OfferStatus is derived from is_active and the offer window, never stored
type OfferStatus string

const (
	OfferStatusActive    OfferStatus = "active"
	OfferStatusScheduled OfferStatus = "scheduled"
	OfferStatusExpired   OfferStatus = "expired"
	OfferStatusInactive  OfferStatus = "inactive"
)

// Offer is a promotional discount scoped to a store
type Offer struct {
	ID            uuid.UUID   `json:"id"`
	StoreID       uuid.UUID   `json:"store_id"`
	ZoneID        *uuid.UUID  `json:"zone_id,omitempty"`
	CategoryID    uuid.UUID   `json:"category_id"`
	CategoryName  string      `json:"category_name"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Description   string      `json:"description"`
	OriginalPrice float64     `json:"original_price"`
	OfferPrice    float64     `json:"offer_price"`
	Discount      string      `json:"discount"`
	ImageURL      string      `json:"image_url"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	IsActive      bool        `json:"is_active"`
	Status        OfferStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// DeriveStatus computes the status at now
func (o *Offer) DeriveStatus(now time.Time) OfferStatus {
	switch {
	case !o.IsActive:
		return OfferStatusInactive
	case now.Before(o.StartDate):
		return OfferStatusScheduled
	case now.After(o.EndDate):
		return OfferStatusExpired
	default:
		return OfferStatusActive
	}
}

// Decorate fills the derived fields
func (o *Offer) Decorate(now time.Time) {
	o.Status = o.DeriveStatus(now)
	o.Discount = DiscountLabel(o.OriginalPrice, o.OfferPrice)
}

// DiscountLabel renders the rounded percentage off, e.g. "20%"
func DiscountLabel(original, offer float64) string {
	if original <= 0 {
		return "0%"
	}
	pct := math.Round(100 * (1 - offer/original))
	if pct < 0 {
		pct = 0
	}
	return fmt.Sprintf("%d%%", int(pct))
}

// OfferRequest is the create/edit form. Create requires every field except
// image_url and code; edit sends the same shape with only changed fields set.
type OfferRequest struct {
	CategoryID    *uuid.UUID `json:"category_id"`
	Name          *string    `json:"name"`
	Code          *string    `json:"code"`
	Description   *string    `json:"description"`
	OriginalPrice *float64   `json:"original_price"`
	OfferPrice    *float64   `json:"offer_price"`
	ImageURL      *string    `json:"image_url"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsActive      *bool      `json:"is_active"`
}

// OfferListResponse carries the filtered list plus the filter facets
type OfferListResponse struct {
	Offers     []Offer  `json:"offers"`
	TotalCount int      `json:"total_count"`
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

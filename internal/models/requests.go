package models

import (
	"time"

	"github.com/google/uuid"
)

// ===== Auth =====

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by sign-up and sign-in. Redirect is the client route
// the UI navigates to next.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   *Profile  `json:"profile"`
	Redirect  string    `json:"redirect"`
}

// ===== Dashboard =====

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type StoreSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"image_url"`
	BannerImageURL string    `json:"banner_image_url"`
}

type MeResponse struct {
	Profile *Profile      `json:"profile"`
	Store   *StoreSummary `json:"store,omitempty"`
}

type DashboardResponse struct {
	Profile      *Profile       `json:"profile"`
	Store        *StoreSummary  `json:"store,omitempty"`
	OfferCounts  map[string]int `json:"offer_counts"`
	Navigation   []NavItem      `json:"navigation"`
	SetupPending bool           `json:"setup_pending"`
}

type NavItem struct {
	Title string `json:"title"`
	Route string `json:"route"`
}

// ===== Uploads =====

type UploadResponse struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

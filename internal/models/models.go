package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

// RoleCompany is the only profile role the dashboard issues
const RoleCompany = "company"

// DefaultAvatarURL is set on every new profile until the merchant uploads a photo
const DefaultAvatarURL = "https://example.com/default-avatar.png"

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile mirrors the public data of a user
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// PhoneDisplay is Phone in the (00) 00000-0000 mask
	PhoneDisplay string `json:"phone_display"`
}

// Masked fills the display fields derived from the stored digits
func (p *Profile) Masked() *Profile {
	if p != nil {
		p.PhoneDisplay = utils.FormatPhone(p.Phone)
	}
	return p
}

// Owner links a profile to the stores it is responsible for
type Owner struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	Name           string     `json:"name"`
	CNPJ           string     `json:"cnpj"`
	Description    string     `json:"description"`
	CategoryID     uuid.UUID  `json:"category_id"`
	ImageURL       string     `json:"image_url"`
	BannerImageURL string     `json:"banner_image_url"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	ZoneID         *uuid.UUID `json:"zone_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Address struct {
	ID           uuid.UUID `json:"id"`
	StoreID      uuid.UUID `json:"store_id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PostalAddress is the result of a postal code lookup
type PostalAddress struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`

	// PostalCodeDisplay is PostalCode in the 00000-000 mask
	PostalCodeDisplay string `json:"postal_code_display"`
}

// Coordinates is a geocoding result
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Package geo talks to the address services used during onboarding:
// Nominatim for geocoding and ViaCEP for postal code lookups.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/config"
	"github.com/Andessonreis/corre-aqui-dash/internal/models"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

// Client calls Nominatim and ViaCEP. It holds no state besides the http.Client
// and is safe for concurrent use.
type Client struct {
	http        *http.Client
	geocoderURL string
	userAgent   string
	postalURL   string
}

func NewClient(cfg *config.GeoConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http:        &http.Client{Timeout: timeout},
		geocoderURL: strings.TrimSuffix(cfg.GeocoderURL, "/"),
		userAgent:   cfg.GeocoderUserAgent,
		postalURL:   strings.TrimSuffix(cfg.PostalLookupURL, "/"),
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-form address to the first match
func (c *Client) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&q=%s", c.geocoderURL, url.QueryEscape(query))

	var results []nominatimResult
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return nil, apperr.Upstream(err, "failed to geocode address")
	}

	if len(results) == 0 {
		return nil, apperr.NotFound("address not found")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, apperr.Upstream(errors.Wrap(err, "parse latitude"), "failed to geocode address")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, apperr.Upstream(errors.Wrap(err, "parse longitude"), "failed to geocode address")
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

type viaCEPResult struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

// LookupPostalCode fills street, neighborhood, city and state for a CEP
func (c *Client) LookupPostalCode(ctx context.Context, cep string) (*models.PostalAddress, error) {
	digits := utils.OnlyDigits(cep)
	if !utils.ValidCEP(digits) {
		return nil, apperr.Validation("invalid postal code", map[string]string{
			"postal_code": "must have 8 digits",
		})
	}

	var result viaCEPResult
	if err := c.getJSON(ctx, fmt.Sprintf("%s/ws/%s/json/", c.postalURL, digits), &result); err != nil {
		return nil, apperr.Upstream(err, "failed to look up postal code")
	}

	// ViaCEP answers 200 with {"erro": true} (sometimes the string "true")
	if result.Erro != nil && fmt.Sprint(result.Erro) == "true" {
		return nil, apperr.NotFound("postal code not found")
	}

	return &models.PostalAddress{
		PostalCode:   digits,
		Street:       result.Logradouro,
		Neighborhood: result.Bairro,
		City:         result.Localidade,
		State:        result.UF,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

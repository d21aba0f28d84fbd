package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lokal-app/lokal-backend/config"
)

// ErrNoGeocodeResult is returned when the address matched nothing.
var ErrNoGeocodeResult = errors.New("no geocoding result")

// GeocodeResult is a WGS84 point with the provider's label for it.
type GeocodeResult struct {
	Longitude   float64
	Latitude    float64
	DisplayName string
}

// mapboxResponse is the subset of the Mapbox places response we read.
type mapboxResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [longitude, latitude]
	} `json:"features"`
}

// Geocoder resolves free-text addresses through the Mapbox places API,
// biased toward one country.
type Geocoder struct {
	baseURL     string
	accessToken string
	country     string
	client      *http.Client
}

func NewGeocoder(cfg config.GeocoderConfig) *Geocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Geocoder{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		country:     cfg.Country,
		client:      &http.Client{Timeout: timeout},
	}
}

// Geocode returns the best match for address. Failures are returned as-is and
// never retried.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", ErrNoGeocodeResult)
	}
	if g.accessToken == "" {
		return nil, fmt.Errorf("geocoder access token not configured")
	}

	params := url.Values{}
	params.Set("access_token", g.accessToken)
	params.Set("limit", "1")
	if g.country != "" {
		params.Set("country", g.country)
	}
	requestURL := fmt.Sprintf("%s/%s.json?%s", g.baseURL, url.PathEscape(address), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call geocoding API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result mapboxResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, fmt.Errorf("%w for address: %s", ErrNoGeocodeResult, address)
	}

	feature := result.Features[0]
	if len(feature.Center) < 2 {
		return nil, fmt.Errorf("no coordinates in response")
	}

	return &GeocodeResult{
		Longitude:   feature.Center[0],
		Latitude:    feature.Center[1],
		DisplayName: feature.PlaceName,
	}, nil
}

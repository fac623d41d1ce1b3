// Package geocoder resolves free-form addresses to coordinates. The core only
// depends on the Geocoder interface; the HTTP implementation targets the
// Nominatim search API.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devtrail/bootcamper/pkg/apperr"
)

// Location is one geocoding result.
type Location struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	City             string
	Country          string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// Nominatim implements Geocoder against a Nominatim-compatible endpoint.
type Nominatim struct {
	BaseURL   string // e.g. "https://nominatim.openstreetmap.org"
	UserAgent string // Nominatim requires an identifying User-Agent
	Client    *http.Client
}

func NewNominatim(baseURL, userAgent string) *Nominatim {
	return &Nominatim{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, apperr.Validation("address is empty")
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Location{}, apperr.Upstream("geocoder request", err)
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := n.Client.Do(req)
	if err != nil {
		return Location{}, apperr.Upstream("geocoder unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Location{}, apperr.Upstream("geocoder error", fmt.Errorf("status %d", resp.StatusCode))
	}

	var body []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, apperr.Upstream("geocoder response", err)
	}
	if len(body) == 0 {
		return Location{}, apperr.Validation("address could not be geocoded")
	}

	hit := body[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return Location{}, apperr.Upstream("geocoder response", err)
	}
	lng, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return Location{}, apperr.Upstream("geocoder response", err)
	}

	city := hit.Address.City
	if city == "" {
		city = hit.Address.Town
	}
	return Location{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: hit.DisplayName,
		City:             city,
		Country:          hit.Address.Country,
	}, nil
}

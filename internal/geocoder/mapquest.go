package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MapQuest talks to the MapQuest geocoding v1 "address" endpoint.
type MapQuest struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewMapQuest creates a MapQuest provider.
func NewMapQuest(baseURL, apiKey string, timeout time.Duration) *MapQuest {
	return &MapQuest{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     string `json:"street"`
	AdminArea5 string `json:"adminArea5"` // city
	AdminArea3 string `json:"adminArea3"` // state
	AdminArea1 string `json:"adminArea1"` // country
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// Geocode returns the first location of the first result.
func (m *MapQuest) Geocode(ctx context.Context, address string) (*Result, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrNoMatch
	}

	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("location", address)
	q.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if body.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder returned status code %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; "))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return nil, ErrNoMatch
	}

	loc := body.Results[0].Locations[0]
	// MapQuest answers unknown input with a country-level centroid and no city or postal code.
	if loc.AdminArea5 == "" && loc.PostalCode == "" && loc.Street == "" {
		return nil, ErrNoMatch
	}

	return &Result{
		Latitude:         loc.LatLng.Lat,
		Longitude:        loc.LatLng.Lng,
		FormattedAddress: formatAddress(loc),
		City:             loc.AdminArea5,
		State:            loc.AdminArea3,
		Zipcode:          loc.PostalCode,
		Country:          loc.AdminArea1,
	}, nil
}

func formatAddress(loc mapQuestLocation) string {
	var parts []string
	for _, p := range []string{loc.Street, loc.AdminArea5, strings.TrimSpace(loc.AdminArea3 + " " + loc.PostalCode), loc.AdminArea1} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

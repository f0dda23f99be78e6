package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bostonResponse = `{
  "info": {"statuscode": 0, "messages": []},
  "results": [{
    "locations": [{
      "street": "",
      "adminArea5": "Boston",
      "adminArea3": "MA",
      "adminArea1": "US",
      "postalCode": "02108",
      "latLng": {"lat": 42.3576, "lng": -71.0684}
    }]
  }]
}`

func TestMapQuest_Geocode(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bostonResponse))
	}))
	defer srv.Close()

	g := NewMapQuest(srv.URL, "secret", time.Second)
	res, err := g.Geocode(context.Background(), "02108")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "key=secret")
	assert.Contains(t, gotQuery, "location=02108")
	assert.Equal(t, &Result{
		Latitude:         42.3576,
		Longitude:        -71.0684,
		FormattedAddress: "Boston, MA 02108, US",
		City:             "Boston",
		State:            "MA",
		Zipcode:          "02108",
		Country:          "US",
	}, res)
}

func TestMapQuest_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no results", `{"info":{"statuscode":0},"results":[]}`},
		{"no locations", `{"info":{"statuscode":0},"results":[{"locations":[]}]}`},
		{"country centroid", `{"info":{"statuscode":0},"results":[{"locations":[{"adminArea1":"US","latLng":{"lat":39.4,"lng":-100.9}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewMapQuest(srv.URL, "k", time.Second).Geocode(context.Background(), "00000")
			assert.ErrorIs(t, err, ErrNoMatch)
		})
	}
}

func TestMapQuest_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewMapQuest(srv.URL, "k", time.Second).Geocode(context.Background(), "02108")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestMapQuest_EmptyAddress(t *testing.T) {
	_, err := NewMapQuest("http://unused.invalid", "k", time.Second).Geocode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1 main st boston", normalize("  1 Main   St\tBoston "))
}

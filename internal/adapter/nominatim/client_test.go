package nominatim

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/energy-data-etl/internal/domain"
)

const testUserAgent = "energy-data-etl test"

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, testUserAgent, 5*time.Second, slog.Default())
}

func TestClient_Geocode_Found(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`[{"lat":"46.948","lon":"7.4474","display_name":"Bern"}]`))
	}))
	defer srv.Close()

	pos, err := newTestClient(srv).Geocode(context.Background(), domain.Address{
		Street:       "Bundesplatz 3",
		PostCode:     "3005",
		Municipality: "Bern",
	})
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, 46.948, pos.Lat)
	assert.Equal(t, 7.4474, pos.Lon)

	assert.Equal(t, testUserAgent, gotUA)
	assert.Equal(t, map[string]string{
		"street":         "Bundesplatz 3",
		"postcode":       "3005",
		"city":           "Bern",
		"format":         "jsonv2",
		"limit":          "1",
		"countrycodes":   "ch",
		"addressdetails": "0",
	}, gotQuery)
}

func TestClient_Geocode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	pos, err := newTestClient(srv).Geocode(context.Background(), domain.Address{Street: "Nowhere 1", PostCode: "0000", Municipality: "Nirgendwo"})
	require.NoError(t, err)
	assert.Nil(t, pos, "an empty result set is a definitive not-found, not an error")
}

func TestClient_Geocode_HTTPErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Geocode(context.Background(), domain.Address{Street: "X", PostCode: "1", Municipality: "Y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_Geocode_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"7.44"}]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Geocode(context.Background(), domain.Address{Street: "X", PostCode: "1", Municipality: "Y"})
	require.Error(t, err)
}

func TestClient_Geocode_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Geocode(context.Background(), domain.Address{Street: "X", PostCode: "1", Municipality: "Y"})
	require.Error(t, err)
}

package tomtom_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/provider/tomtom"
	"github.com/tommyle1310/test-map/utils/config"
)

func newClient(t *testing.T, handler http.HandlerFunc) *tomtom.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return tomtom.NewClient(config.NewRuntimeConfig(config.Config{
		TomTom: config.TomTomConfig{BaseURL: srv.URL + "/", APIKey: "secret", TimeoutMS: 2000},
	}))
}

func TestCalculateRoute(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/routing/1/calculateRoute/37.7749,-122.4194:34.0522,-118.2437/json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"routes":[{"legs":[
			{"points":[{"latitude":37.7749,"longitude":-122.4194},{"latitude":36.7783,"longitude":-119.4179}]},
			{"points":[{"latitude":34.0522,"longitude":-118.2437}]}
		]}]}`))
	})

	points, err := c.CalculateRoute(context.Background(),
		geo.GeoPoint{Latitude: 37.7749, Longitude: -122.4194},
		geo.GeoPoint{Latitude: 34.0522, Longitude: -118.2437})
	require.NoError(t, err)
	assert.Equal(t, []geo.GeoPoint{
		{Latitude: 37.7749, Longitude: -122.4194},
		{Latitude: 36.7783, Longitude: -119.4179},
		{Latitude: 34.0522, Longitude: -118.2437},
	}, points)
}

func TestCalculateRouteEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	})
	_, err := c.CalculateRoute(context.Background(), geo.GeoPoint{}, geo.GeoPoint{Latitude: 1})
	assert.ErrorIs(t, err, tomtom.ErrNoRoute)
}

func TestSearch(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/2/search/main st.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[
			{"address":{"freeformAddress":"1 Main St, Springfield, IL 62701"},"position":{"lat":39.8,"lon":-89.6}},
			{"address":{"freeformAddress":"Main Street"},"position":{"lat":1,"lon":2}}
		]}`))
	})

	res, err := c.Search(context.Background(), "main st")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "1 Main St", res[0].P1)
	assert.Equal(t, "Springfield", res[0].P2)
	assert.Equal(t, "IL 62701", res[0].P3)
	assert.Equal(t, geo.GeoPoint{Latitude: 39.8, Longitude: -89.6}, res[0].Position)
	assert.Equal(t, "Main Street", res[1].P1)
}

func TestErrorsAreTerminal(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Search(context.Background(), "abc")
	assert.ErrorContains(t, err, "HTTP 403")
	assert.NotContains(t, err.Error(), "secret")
	assert.Equal(t, int32(1), calls.Load())

	bad := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err = bad.Search(context.Background(), "abc")
	assert.Error(t, err)
}

func TestMissingKey(t *testing.T) {
	c := tomtom.NewClient(config.NewRuntimeConfig(config.Config{
		TomTom: config.TomTomConfig{BaseURL: "http://127.0.0.1:1"},
	}))
	_, err := c.Search(context.Background(), "abc")
	assert.ErrorIs(t, err, tomtom.ErrMissingKey)
}

func TestContextCancel(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfiguredTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	c := tomtom.NewClient(config.NewRuntimeConfig(config.Config{
		TomTom: config.TomTomConfig{BaseURL: srv.URL, APIKey: "k", TimeoutMS: 50},
	}))

	start := time.Now()
	_, err := c.Search(context.Background(), "slow")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

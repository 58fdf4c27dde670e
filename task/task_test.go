package task_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/task"
	"github.com/tommyle1310/test-map/utils/config"
)

var (
	p0 = geo.GeoPoint{Latitude: 10.7769, Longitude: 106.7009}
	p1 = geo.GeoPoint{Latitude: 10.7800, Longitude: 106.6950}
	p2 = geo.GeoPoint{Latitude: 10.7830, Longitude: 106.6900}
)

const routeJSON = `{"routes":[{"legs":[{"points":[
	{"latitude":10.7769,"longitude":106.7009},
	{"latitude":10.7800,"longitude":106.6950},
	{"latitude":10.7830,"longitude":106.6900}]}]}]}`

const searchJSON = `{"results":[
	{"address":{"freeformAddress":"Ben Thanh Market, District 1, Ho Chi Minh City"},"position":{"lat":10.7725,"lon":106.698}}]}`

func tomtomServer(t *testing.T, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/routing/"):
			_, _ = w.Write([]byte(routeJSON))
		case strings.HasPrefix(r.URL.Path, "/search/"):
			_, _ = w.Write([]byte(searchJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, c config.Config, screen string) *task.Context {
	t.Helper()
	require.NoError(t, config.Validate(c))
	ctx := task.NewContext(c)
	runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ctx.Run(runCtx, screen))
	return ctx
}

func TestRouteScreen(t *testing.T) {
	ctx := run(t, config.Config{
		Control: config.Control{Step: 0.5, IntervalMS: 1},
		Route: config.RouteConfig{
			Points: []geo.GeoPoint{p0, p1, p2},
			Agents: []config.AgentConfig{{ID: "car"}, {ID: "bike", Points: []geo.GeoPoint{p2, p0}}},
		},
	}, "route")

	m := ctx.AgentManager()
	require.Len(t, m.All(), 2)
	assert.True(t, m.Get("car").Arrived())
	assert.Equal(t, 4, m.Get("car").Ticks())
	assert.True(t, m.Get("bike").Arrived())
	assert.Equal(t, p0, m.Get("bike").Position())

	frame := ctx.Frame()
	assert.Equal(t, []geo.GeoPoint{p0, p1, p2}, frame.Route)
	assert.Equal(t, p0, frame.Markers[entity.MarkerStart][0].Position)
	assert.Equal(t, p2, frame.Markers[entity.MarkerEnd][0].Position)
	assert.Len(t, frame.Markers[entity.MarkerAgent], 2)
	assert.Equal(t, geo.Midpoint(p0, p2), frame.Region.Center)
	assert.Equal(t, 0.1, frame.Region.SpanLat)
}

func TestRouteScreenRejectsShortRoute(t *testing.T) {
	ctx := task.NewContext(config.Config{
		Route: config.RouteConfig{Agents: []config.AgentConfig{{ID: "x", Points: []geo.GeoPoint{p0}}}},
	})
	err := ctx.Run(context.Background(), "route")
	assert.Error(t, err)
}

func TestCalculateRouteScreen(t *testing.T) {
	ctx := run(t, config.Config{
		Control: config.Control{Step: 0.25, IntervalMS: 1},
		Route:   config.RouteConfig{Origin: &p0, Destination: &p2},
		TomTom:  config.TomTomConfig{BaseURL: tomtomServer(t, http.StatusOK), APIKey: "k"},
	}, "calculate-route")

	frame := ctx.Frame()
	assert.Equal(t, []geo.GeoPoint{p0, p1, p2}, frame.Route)
	assert.Equal(t, geo.Midpoint(p0, p2), frame.Region.Center)
	require.NotNil(t, ctx.AgentManager())
	assert.InDelta(t, (p2.Latitude-p0.Latitude)*1.5, frame.Region.SpanLat, 1e-12)
	for _, a := range ctx.AgentManager().All() {
		assert.True(t, a.Arrived())
		assert.Equal(t, p2, a.Position())
	}
}

func TestCalculateRouteScreenFailure(t *testing.T) {
	ctx := run(t, config.Config{
		Route:  config.RouteConfig{Origin: &p0, Destination: &p2},
		TomTom: config.TomTomConfig{BaseURL: tomtomServer(t, http.StatusInternalServerError), APIKey: "k"},
	}, "calculate-route")

	frame := ctx.Frame()
	assert.Empty(t, frame.Route)
	assert.Nil(t, ctx.AgentManager())
	// 加载状态下的起终点标记仍然保留
	assert.Equal(t, p0, frame.Markers[entity.MarkerStart][0].Position)
}

func TestPickerScreen(t *testing.T) {
	selectIndex := 0
	ctx := run(t, config.Config{
		Search: config.SearchConfig{
			DebounceMS: 50,
			Inputs: []config.SearchInput{
				{AtMS: 0, Text: "b"},
				{AtMS: 5, Text: "be"},
				{AtMS: 10, Text: "ben"},
				{AtMS: 15, Text: "ben t"},
			},
			SelectIndex: &selectIndex,
		},
		TomTom:   config.TomTomConfig{BaseURL: tomtomServer(t, http.StatusOK), APIKey: "k"},
		Location: config.LocationConfig{Granted: true, Position: &p0},
	}, "picker")

	s := ctx.Searcher()
	assert.Equal(t, 1, s.Lookups())
	want := geo.GeoPoint{Latitude: 10.7725, Longitude: 106.698}
	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, want, selected)

	last, ok := ctx.Finder().Last()
	require.True(t, ok)
	assert.Equal(t, want, last.Center)
	assert.Len(t, last.All, config.DefaultPopulation)

	frame := ctx.Frame()
	assert.False(t, frame.SuggestionsVisible)
	assert.Len(t, frame.Markers[entity.MarkerSimulated], config.DefaultPopulation)
	assert.Equal(t, want, frame.Region.Center)
}

func TestPickerScreenTap(t *testing.T) {
	tap := geo.GeoPoint{Latitude: 21.0278, Longitude: 105.8342}
	ctx := run(t, config.Config{
		Search: config.SearchConfig{
			DebounceMS: 10,
			Taps:       []config.TapInput{{AtMS: 5, Point: tap}},
		},
		Location: config.LocationConfig{Granted: false, Fallback: p1},
	}, "picker")

	selected, ok := ctx.Searcher().Selected()
	require.True(t, ok)
	assert.Equal(t, tap, selected)
	assert.Equal(t, 0, ctx.Searcher().Lookups())
	last, ok := ctx.Finder().Last()
	require.True(t, ok)
	assert.Equal(t, tap, last.Center)
}

func TestNearbyScreen(t *testing.T) {
	ctx := run(t, config.Config{
		Control: config.Control{Seed: 3},
		Nearby:  config.NearbyConfig{Center: &p1, RadiusMeters: lo.ToPtr(500.0), Population: lo.ToPtr(20)},
	}, "nearby")

	last, ok := ctx.Finder().Last()
	require.True(t, ok)
	assert.Equal(t, p1, last.Center)
	assert.Len(t, last.All, 20)
	for _, p := range last.Nearby {
		assert.LessOrEqual(t, geo.HaversineDistanceMeters(p1, p.Position), 500.0)
	}
}

func TestNearbyScreenDeniedLocation(t *testing.T) {
	ctx := run(t, config.Config{
		Location: config.LocationConfig{Granted: false, Position: &p0},
	}, "nearby")
	last, ok := ctx.Finder().Last()
	require.True(t, ok)
	assert.Equal(t, geo.GeoPoint{}, last.Center)
}

func TestUnknownScreen(t *testing.T) {
	err := task.NewContext(config.Config{}).Run(context.Background(), "settings")
	assert.ErrorIs(t, err, task.ErrUnknownScreen)
	assert.Equal(t, []string{"calculate-route", "nearby", "picker", "route"}, task.Screens())
}

func TestMaxDuration(t *testing.T) {
	ctx := run(t, config.Config{
		Control: config.Control{Step: 0.001, IntervalMS: 5, MaxDurationMS: 50},
	}, "route")
	for _, a := range ctx.AgentManager().All() {
		assert.False(t, a.Arrived())
	}
}

func TestParentCancel(t *testing.T) {
	ctx := task.NewContext(config.Config{Control: config.Control{Step: 0.001, IntervalMS: 5}})
	runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := ctx.Run(runCtx, "route")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package proximity_test

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tommyle1310/test-map/clock"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/entity/proximity"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/render"
	"github.com/tommyle1310/test-map/utils/config"
	"github.com/tommyle1310/test-map/utils/randengine"
)

var center = geo.GeoPoint{Latitude: 10.781975, Longitude: 106.664512}

type testContext struct {
	renderer *render.LogRenderer
	rc       *config.RuntimeConfig
	rnd      *randengine.Engine
}

func newTestContext() *testContext {
	return &testContext{
		renderer: render.NewLogRenderer(),
		rc:       config.NewRuntimeConfig(config.Config{}),
		rnd:      randengine.New(42),
	}
}

func (c *testContext) Clock() clock.Clock                   { return clock.NewVirtual() }
func (c *testContext) Renderer() entity.IRenderer           { return c.renderer }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.rc }
func (c *testContext) Router() entity.IRouter               { return nil }
func (c *testContext) Geocoder() entity.IGeocoder           { return nil }
func (c *testContext) Location() entity.ILocationProvider   { return nil }
func (c *testContext) Rand() *randengine.Engine             { return c.rnd }
func (c *testContext) AgentManager() entity.IAgentManager   { return nil }
func (c *testContext) Finder() entity.IProximityFinder      { return nil }

func TestFilterWithinRadius(t *testing.T) {
	points := lo.Map([]float64{0, 500, 1000, 1500}, func(d float64, i int) entity.SimulatedPoint {
		return entity.SimulatedPoint{
			ID:       string(rune('a'+i)),
			Position: geo.OffsetMeters(center, d, math.Pi/2),
		}
	})
	radius := geo.HaversineDistanceMeters(center, points[2].Position)

	got := proximity.FilterWithinRadius(points, center, radius)
	assert.Equal(t, []string{"a", "b", "c"}, lo.Map(got, func(p entity.SimulatedPoint, _ int) string { return p.ID }))

	// 纯函数，不修改输入
	assert.Len(t, points, 4)
	assert.Empty(t, proximity.FilterWithinRadius(nil, center, radius))
}

func TestGeneratePopulation(t *testing.T) {
	q, err := proximity.NewQuery(center, 1000, 7)
	require.NoError(t, err)
	points := proximity.GeneratePopulation(randengine.New(1), q)
	require.Len(t, points, 7)

	ids := lo.Map(points, func(p entity.SimulatedPoint, _ int) string { return p.ID })
	assert.Equal(t, ids, lo.Uniq(ids))
	assert.Equal(t, "driver_0", ids[0])
	assert.Equal(t, "driver_6", ids[6])
	for _, p := range points {
		assert.LessOrEqual(t, geo.HaversineDistanceMeters(center, p.Position), (1000+proximity.DefaultExtraSpreadMeters)*1.01)
	}

	q.Population = 0
	assert.Empty(t, proximity.GeneratePopulation(randengine.New(1), q))
}

func TestGenerateIsReproducible(t *testing.T) {
	q, err := proximity.NewQuery(center, 1000, 7)
	require.NoError(t, err)
	assert.Equal(t,
		proximity.GeneratePopulation(randengine.New(9), q),
		proximity.GeneratePopulation(randengine.New(9), q))
}

func TestNewQueryValidation(t *testing.T) {
	_, err := proximity.NewQuery(center, -1, 7)
	assert.Error(t, err)
	_, err = proximity.NewQuery(center, 1000, -1)
	assert.Error(t, err)
	_, err = proximity.NewQuery(center, math.NaN(), 7)
	assert.Error(t, err)
	_, err = proximity.NewQuery(geo.GeoPoint{Latitude: 120}, 1000, 7)
	assert.ErrorIs(t, err, geo.ErrInvalidPoint)
	_, err = proximity.NewQuery(geo.GeoPoint{Latitude: 90}, 1000, 7)
	assert.ErrorIs(t, err, geo.ErrNearPole)
	_, err = proximity.NewQuery(center, 0, 0)
	assert.NoError(t, err)
}

func TestFinderSearch(t *testing.T) {
	ctx := newTestContext()
	f := proximity.NewFinder(ctx)
	_, ok := f.Last()
	assert.False(t, ok)

	res, err := f.Search(center)
	require.NoError(t, err)
	assert.Len(t, res.All, config.DefaultPopulation)
	for _, p := range res.Nearby {
		assert.LessOrEqual(t, geo.HaversineDistanceMeters(center, p.Position), config.DefaultRadiusMeters)
	}
	assert.Subset(t, res.All, res.Nearby)

	frame := ctx.renderer.Frame()
	assert.Len(t, frame.Markers[entity.MarkerSimulated], config.DefaultPopulation)
	assert.Equal(t, center, frame.Region.Center)
	selected, ok := ctx.renderer.Marker(entity.MarkerSelected, proximity.SelectedMarkerID)
	require.True(t, ok)
	assert.Equal(t, center, selected.Position)

	// 每次都重新生成
	other := geo.GeoPoint{Latitude: 21.0278, Longitude: 105.8342}
	res2, err := f.Search(other)
	require.NoError(t, err)
	assert.NotEqual(t, res.All[0].Position, res2.All[0].Position)
	last, ok := f.Last()
	require.True(t, ok)
	assert.Equal(t, other, last.Center)

	_, err = f.Search(geo.GeoPoint{Latitude: -90})
	assert.ErrorIs(t, err, geo.ErrNearPole)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) SetRoute(points []geo.GeoPoint) {
	m.Called(points)
}

func (m *MockRenderer) SetMarkers(kind entity.MarkerKind, markers []entity.Marker) {
	m.Called(kind, markers)
}

func (m *MockRenderer) UpsertMarker(marker entity.Marker) {
	m.Called(marker)
}

func (m *MockRenderer) SetRegion(region geo.Region) {
	m.Called(region)
}

func (m *MockRenderer) SetSuggestions(visible bool, s []entity.Suggestion) {
	m.Called(visible, s)
}

type mockContext struct {
	*testContext
	renderer *MockRenderer
}

func (c *mockContext) Renderer() entity.IRenderer { return c.renderer }

func TestFinderRendererCalls(t *testing.T) {
	r := new(MockRenderer)
	ctx := &mockContext{testContext: newTestContext(), renderer: r}

	r.On("UpsertMarker", mock.MatchedBy(func(m entity.Marker) bool {
		return m.ID == proximity.SelectedMarkerID && m.Kind == entity.MarkerSelected && m.Position == center
	})).Return().Once()
	r.On("SetMarkers", entity.MarkerSimulated, mock.MatchedBy(func(ms []entity.Marker) bool {
		return len(ms) == config.DefaultPopulation
	})).Return().Once()
	r.On("SetRegion", geo.RegionAround(center, geo.DefaultSpanLat, geo.DefaultSpanLon)).Return().Once()

	_, err := proximity.NewFinder(ctx).Search(center)
	require.NoError(t, err)
	r.AssertExpectations(t)
	r.AssertNotCalled(t, "SetRoute", mock.Anything)

	// 非法中心不触发任何渲染
	_, err = proximity.NewFinder(ctx).Search(geo.GeoPoint{Latitude: 91})
	assert.Error(t, err)
	r.AssertNumberOfCalls(t, "SetRegion", 1)
}

func TestFinderExplicitZeroSpread(t *testing.T) {
	ctx := newTestContext()
	ctx.rc = config.NewRuntimeConfig(config.Config{Nearby: config.NearbyConfig{
		RadiusMeters:      lo.ToPtr(0.0),
		Population:        lo.ToPtr(5),
		ExtraSpreadMeters: lo.ToPtr(0.0),
	}})
	res, err := proximity.NewFinder(ctx).Search(center)
	require.NoError(t, err)
	require.Len(t, res.All, 5)
	// 半径与扩散都为0时全部点与中心重合，且全部在半径内
	for _, p := range res.All {
		assert.Equal(t, center, p.Position)
	}
	assert.Equal(t, res.All, res.Nearby)
}

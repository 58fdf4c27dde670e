package entity

import (
	"context"

	"github.com/tommyle1310/test-map/clock"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/utils/config"
	"github.com/tommyle1310/test-map/utils/randengine"
)

// 导航模块接口
type IRouter interface {
	// 路径规划，返回起点到终点的折线
	CalculateRoute(ctx context.Context, origin, destination geo.GeoPoint) ([]geo.GeoPoint, error)
}

// 地理编码模块接口
type IGeocoder interface {
	// 自由文本搜索
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

// 设备定位模块接口
type ILocationProvider interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (geo.GeoPoint, error)
}

type ITaskContext interface {
	Clock() clock.Clock
	Renderer() IRenderer
	RuntimeConfig() *config.RuntimeConfig
	Router() IRouter
	Geocoder() IGeocoder
	Location() ILocationProvider
	Rand() *randengine.Engine

	AgentManager() IAgentManager // 未开始路线画面时为nil
	Finder() IProximityFinder
}

package task

import (
	"context"
	"time"

	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/entity/agent"
	"github.com/tommyle1310/test-map/entity/route"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/provider/location"
	"github.com/tommyle1310/test-map/search"
)

var (
	sanFrancisco = geo.GeoPoint{Latitude: 37.7749, Longitude: -122.4194}
	centralCA    = geo.GeoPoint{Latitude: 36.7783, Longitude: -119.4179}
	losAngeles   = geo.GeoPoint{Latitude: 34.0522, Longitude: -118.2437}

	// 未配置路线时的默认路线
	defaultRoute = []geo.GeoPoint{sanFrancisco, centralCA, losAngeles}
)

const (
	routeInterval          = 50 * time.Millisecond
	calculateRouteInterval = 100 * time.Millisecond
	routeRegionSpan        = 0.1 // 静态路线画面以起终点中点为中心的可视跨度
	routeRegionFactor      = 1.5 // 计算路线画面可视区域相对起终点差值的放大倍数
	pickerSettleDelay      = 100 * time.Millisecond
)

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// routeScreen 静态路线动画
// 功能：车辆沿配置的路线（未配置时为默认路线）推进，全部到达后结束
func routeScreen(ctx *Context, runCtx context.Context, finish func()) error {
	points := ctx.runtimeConfig.All.Route.Points
	if len(points) == 0 {
		points = defaultRoute
	}
	regionOf := func(r *route.Route) geo.Region {
		return geo.RegionAround(geo.Midpoint(r.Start(), r.End()), routeRegionSpan, routeRegionSpan)
	}
	return ctx.startAgents(runCtx, points, regionOf, ctx.runtimeConfig.Interval(routeInterval), finish)
}

// calculateRouteScreen 请求导航服务生成路线后播放动画
// 算法说明：
// 1. 立即显示起终点标记与覆盖起终点的可视区域（加载状态）
// 2. 在独立协程中请求路线，结果投递回事件循环
// 3. 请求失败时记录日志并结束画面；成功时开始车辆推进，全部到达后结束
func calculateRouteScreen(ctx *Context, runCtx context.Context, finish func()) error {
	origin, destination := ctx.endpoints()
	ctx.setEndpointMarkers(origin, destination)
	ctx.renderer.SetRegion(geo.RegionSpanning(origin, destination, routeRegionFactor))
	log.Infof("loading route %v -> %v", origin, destination)

	router := ctx.Router()
	go func() {
		points, err := router.CalculateRoute(runCtx, origin, destination)
		ctx.loop.Post(func() {
			if err != nil {
				log.Errorf("error fetching route: %v", err)
				finish()
				return
			}
			regionOf := func(r *route.Route) geo.Region { return r.Region(routeRegionFactor) }
			if err := ctx.startAgents(runCtx, points, regionOf, ctx.runtimeConfig.Interval(calculateRouteInterval), finish); err != nil {
				log.Errorf("invalid route: %v", err)
				finish()
			}
		})
	}()
	return nil
}

// endpoints 计算路线的起终点：优先使用origin/destination，其次为路点首尾，最后为默认路线首尾
func (ctx *Context) endpoints() (geo.GeoPoint, geo.GeoPoint) {
	rc := ctx.runtimeConfig.All.Route
	origin, destination := defaultRoute[0], defaultRoute[len(defaultRoute)-1]
	if len(rc.Points) >= 2 {
		origin, destination = rc.Points[0], rc.Points[len(rc.Points)-1]
	}
	if rc.Origin != nil {
		origin = *rc.Origin
	}
	if rc.Destination != nil {
		destination = *rc.Destination
	}
	return origin, destination
}

func (ctx *Context) setEndpointMarkers(start, end geo.GeoPoint) {
	ctx.renderer.SetMarkers(entity.MarkerStart, []entity.Marker{
		{ID: "start", Title: "Start", Kind: entity.MarkerStart, Position: start},
	})
	ctx.renderer.SetMarkers(entity.MarkerEnd, []entity.Marker{
		{ID: "end", Title: "End", Kind: entity.MarkerEnd, Position: end},
	})
}

// startAgents 显示路线并让车辆开始推进
// 参数：runCtx-运行上下文，points-路线，regionOf-由路线计算可视区域，period-tick周期，finish-全部到达后的回调
func (ctx *Context) startAgents(
	runCtx context.Context,
	points []geo.GeoPoint,
	regionOf func(*route.Route) geo.Region,
	period time.Duration,
	finish func(),
) error {
	r, err := route.NewRoute(points)
	if err != nil {
		return err
	}
	m := agent.NewManager(ctx, period)
	if err := m.Init(ctx.runtimeConfig.All.Route.Agents, points); err != nil {
		return err
	}
	ctx.renderer.SetRoute(r.Points())
	ctx.setEndpointMarkers(r.Start(), r.End())
	ctx.renderer.SetRegion(regionOf(r))
	log.Infof("%v, %.1f km, %d agents, period %v", r, r.LengthMeters()/1000, len(m.Agents()), period)

	ctx.agentManager = m
	m.StartAll()
	go func() {
		if m.WaitArrived(runCtx) == nil {
			finish()
		}
	}()
	return nil
}

// pickerScreen 地点选择
// 功能：以设备位置（或默认位置）为初始中心，按配置的时间回放文本输入与地图点击，
// 选中地点后搜索控制器在其周围执行附近司机查询
// 说明：最后一次输入经过防抖窗口、且已发出的请求全部返回之后结束
func pickerScreen(ctx *Context, runCtx context.Context, finish func()) error {
	rc := ctx.runtimeConfig
	sc := rc.All.Search

	center, located := location.Resolve(runCtx, ctx.location, rc.All.Location.Fallback)
	log.Infof("initial center %v (device location: %v)", center, located)
	ctx.renderer.SetRegion(geo.RegionAround(center, geo.DefaultSpanLat, geo.DefaultSpanLon))

	s := search.NewSearcher(ctx)
	if sc.SelectIndex != nil {
		idx := *sc.SelectIndex
		s.OnSuggestions(func([]entity.Suggestion) {
			if _, ok := s.Selected(); ok {
				return
			}
			if err := s.SelectIndex(idx); err != nil {
				log.Warnf("auto select: %v", err)
			}
		})
	}
	ctx.searcher = s

	last := 0
	for _, in := range sc.Inputs {
		ctx.loop.AfterFunc(ms(in.AtMS), func() { s.OnTextChanged(in.Text) })
		last = max(last, in.AtMS)
	}
	for _, tap := range sc.Taps {
		ctx.loop.AfterFunc(ms(tap.AtMS), func() { s.OnMapTap(tap.Point) })
		last = max(last, tap.AtMS)
	}
	ctx.loop.AfterFunc(ms(last)+rc.DebounceWindow()+pickerSettleDelay, func() {
		go func() {
			s.Wait()
			ctx.loop.Post(finish)
		}()
	})
	return nil
}

// nearbyScreen 附近司机
// 功能：以配置的中心（未配置时为设备位置或默认位置）执行一次附近查询
func nearbyScreen(ctx *Context, runCtx context.Context, finish func()) error {
	rc := ctx.runtimeConfig
	var center geo.GeoPoint
	if rc.All.Nearby.Center != nil {
		center = *rc.All.Nearby.Center
	} else {
		center, _ = location.Resolve(runCtx, ctx.location, rc.All.Location.Fallback)
	}
	if _, err := ctx.finder.Search(center); err != nil {
		return err
	}
	finish()
	return nil
}

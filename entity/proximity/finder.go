package proximity

import (
	"sync"

	"github.com/samber/lo"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/geo"
)

// SelectedMarkerID 选中地点标记的ID，与搜索模块共用，保证同一时刻只有一个选中标记
const SelectedMarkerID = "selected"

// Finder 附近司机查询
// 功能：每次中心变化都重新生成全部模拟司机并过滤，不做缓存，结果推送给渲染器
type Finder struct {
	ctx entity.ITaskContext

	mu   sync.Mutex
	last *entity.ProximityResult
}

func NewFinder(ctx entity.ITaskContext) *Finder {
	return &Finder{ctx: ctx}
}

// Search 以center为中心执行一次附近查询
// 功能：生成 → 过滤 → 推送中心标记、全部模拟司机标记与可视区域
// 参数：center-查询中心
// 返回：查询结果与错误信息（中心非法或位于极点附近）
func (f *Finder) Search(center geo.GeoPoint) (entity.ProximityResult, error) {
	nearby := f.ctx.RuntimeConfig().All.Nearby
	q, err := NewQuery(center, lo.FromPtr(nearby.RadiusMeters), lo.FromPtr(nearby.Population))
	if err != nil {
		log.Warnf("nearby search rejected: %v", err)
		return entity.ProximityResult{}, err
	}
	q.ExtraSpreadMeters = lo.FromPtr(nearby.ExtraSpreadMeters)

	all := GeneratePopulation(f.ctx.Rand(), q)
	res := entity.ProximityResult{
		Center: center,
		All:    all,
		Nearby: FilterWithinRadius(all, center, q.RadiusMeters),
	}

	r := f.ctx.Renderer()
	r.UpsertMarker(entity.Marker{
		ID:       SelectedMarkerID,
		Title:    "Selected Location",
		Kind:     entity.MarkerSelected,
		Position: center,
	})
	r.SetMarkers(entity.MarkerSimulated, lo.Map(all, func(p entity.SimulatedPoint, _ int) entity.Marker {
		return entity.Marker{ID: p.ID, Title: p.ID, Kind: entity.MarkerSimulated, Position: p.Position}
	}))
	r.SetRegion(geo.RegionAround(center, geo.DefaultSpanLat, geo.DefaultSpanLon))

	log.Infof("nearby search at %v: %d of %d drivers within %.0fm %v",
		center, len(res.Nearby), len(all), q.RadiusMeters,
		lo.Map(res.Nearby, func(p entity.SimulatedPoint, _ int) string { return p.ID }))

	f.mu.Lock()
	f.last = &res
	f.mu.Unlock()
	return res, nil
}

// Last 最近一次成功查询的结果
func (f *Finder) Last() (entity.ProximityResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return entity.ProximityResult{}, false
	}
	return *f.last, true
}

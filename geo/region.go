package geo

import "math"

const (
	// minRegionSpan 起终点重合时仍保证可视区域不为0
	minRegionSpan = 0.001

	// 以单点为中心时的默认可视跨度
	DefaultSpanLat = 0.0922
	DefaultSpanLon = 0.0421
)

// Region 地图可视区域
type Region struct {
	Center  GeoPoint
	SpanLat float64
	SpanLon float64
}

// RegionAround 以center为中心、固定跨度的可视区域
func RegionAround(center GeoPoint, spanLat, spanLon float64) Region {
	return Region{Center: center, SpanLat: spanLat, SpanLon: spanLon}
}

// RegionSpanning 覆盖起终点的可视区域
// 功能：中心为起终点中点，跨度为起终点差值的factor倍
// 参数：start,end-起终点，factor-放大倍数
// 返回：可视区域，跨度不小于minRegionSpan
func RegionSpanning(start, end GeoPoint, factor float64) Region {
	return Region{
		Center:  Midpoint(start, end),
		SpanLat: math.Max(math.Abs(start.Latitude-end.Latitude)*factor, minRegionSpan),
		SpanLon: math.Max(math.Abs(start.Longitude-end.Longitude)*factor, minRegionSpan),
	}
}

// Midpoint 两点坐标的算术中点（平面近似）
func Midpoint(a, b GeoPoint) GeoPoint {
	return InterpolatePoint(a, b, 0.5)
}

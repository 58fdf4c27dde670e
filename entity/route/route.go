// Package route 不可变的路线折线
package route

import (
	"errors"
	"fmt"

	"github.com/tommyle1310/test-map/geo"
)

var ErrRouteTooShort = errors.New("route needs at least 2 points")

// Route 有序路点序列，加载后不再修改
// 说明：相邻点可以重合，此时对应路段的插值结果恒为该点
type Route struct {
	points []geo.GeoPoint
}

// NewRoute 创建路线
// 功能：复制并校验路点，路点少于2个或坐标非法时返回错误
// 参数：points-有序路点
// 返回：路线与错误信息
func NewRoute(points []geo.GeoPoint) (*Route, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrRouteTooShort, len(points))
	}
	for i, p := range points {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: waypoint %d %v", geo.ErrInvalidPoint, i, p)
		}
	}
	cp := make([]geo.GeoPoint, len(points))
	copy(cp, points)
	return &Route{points: cp}, nil
}

// Points 路点副本
func (r *Route) Points() []geo.GeoPoint {
	cp := make([]geo.GeoPoint, len(r.points))
	copy(cp, r.points)
	return cp
}

func (r *Route) Len() int {
	return len(r.points)
}

func (r *Route) At(i int) geo.GeoPoint {
	return r.points[i]
}

func (r *Route) Start() geo.GeoPoint {
	return r.points[0]
}

func (r *Route) End() geo.GeoPoint {
	return r.points[len(r.points)-1]
}

// Segment 第i段的起终点，i的合法范围为[0, Len()-2]
func (r *Route) Segment(i int) (geo.GeoPoint, geo.GeoPoint) {
	if i < 0 || i >= len(r.points)-1 {
		log.Panicf("route: segment %d out of range [0, %d)", i, len(r.points)-1)
	}
	return r.points[i], r.points[i+1]
}

// LengthMeters 沿折线的大圆距离之和
func (r *Route) LengthMeters() float64 {
	total := 0.0
	for i := 0; i+1 < len(r.points); i++ {
		total += geo.HaversineDistanceMeters(r.points[i], r.points[i+1])
	}
	return total
}

// Region 覆盖起终点的可视区域
func (r *Route) Region(factor float64) geo.Region {
	return geo.RegionSpanning(r.Start(), r.End(), factor)
}

func (r *Route) String() string {
	return fmt.Sprintf("Route{Start=%v, End=%v, Points=%d}", r.Start(), r.End(), len(r.points))
}

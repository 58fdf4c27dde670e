package agent

import (
	"fmt"

	"github.com/tommyle1310/test-map/entity/route"
	"github.com/tommyle1310/test-map/geo"
)

// progressEpsilon 累加步长时的浮点容差，保证1/Δ个tick恰好走完一段
const progressEpsilon = 1e-9

// ProgressState 车辆在路线上的进度
// WaypointIndex为当前路段起点的下标，SegmentProgress为当前路段上的进度，取值[0,1)
// WaypointIndex等于路点数-1时表示已到达终点
type ProgressState struct {
	WaypointIndex   int
	SegmentProgress float64
}

func (s ProgressState) String() string {
	return fmt.Sprintf("ProgressState{i=%d, p=%.4f}", s.WaypointIndex, s.SegmentProgress)
}

// ArrivedOn 是否已在路线r上到达终点
func (s ProgressState) ArrivedOn(r *route.Route) bool {
	return s.WaypointIndex >= r.Len()-1
}

// Advance 路线推进的单步状态转移
// 功能：纯函数，根据当前进度和步长计算下一状态与本tick的位置
// 参数：r-路线，s-当前进度，step-每tick的进度增量
// 返回：下一进度、本tick位置、是否发生了推进（已到达时为false）
// 算法说明：
// 1. 已到达终点：状态不变，位置为终点
// 2. 进度加上步长，位置为当前路段按min(进度,1)插值
// 3. 进度达到1时进入下一路段；若下一路段起点是最后一个路点则到达终点
func Advance(r *route.Route, s ProgressState, step float64) (ProgressState, geo.GeoPoint, bool) {
	if s.ArrivedOn(r) {
		return s, r.End(), false
	}
	from, to := r.Segment(s.WaypointIndex)
	p := s.SegmentProgress + step
	if p >= 1-progressEpsilon {
		next := ProgressState{WaypointIndex: s.WaypointIndex + 1}
		return next, to, true
	}
	return ProgressState{WaypointIndex: s.WaypointIndex, SegmentProgress: p},
		geo.InterpolatePoint(from, to, p), true
}

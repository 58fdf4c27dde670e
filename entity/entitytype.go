package entity

import (
	"fmt"
	"strings"

	"github.com/tommyle1310/test-map/geo"
)

// MarkerKind 地图标记类型
type MarkerKind int

const (
	MarkerStart     MarkerKind = iota // 路线起点
	MarkerEnd                         // 路线终点
	MarkerAgent                       // 模拟车辆当前位置
	MarkerSelected                    // 用户选中的地点
	MarkerSimulated                   // 附近模拟司机
)

var markerKindNames = map[MarkerKind]string{
	MarkerStart:     "start",
	MarkerEnd:       "end",
	MarkerAgent:     "agent",
	MarkerSelected:  "selected",
	MarkerSimulated: "simulated",
}

func (k MarkerKind) String() string {
	if name, ok := markerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MarkerKind(%d)", int(k))
}

// Marker 地图标记
type Marker struct {
	ID       string
	Title    string
	Kind     MarkerKind
	Position geo.GeoPoint
}

func (m Marker) String() string {
	return fmt.Sprintf("Marker{ID=%v, Kind=%v, Position=%v}", m.ID, m.Kind, m.Position)
}

// Suggestion 地理编码返回的候选地点
// P1/P2/P3为freeformAddress按逗号切分后的前三段，用于列表展示
type Suggestion struct {
	P1       string
	P2       string
	P3       string
	Address  string
	Position geo.GeoPoint
}

// NewSuggestion 由完整地址构造候选地点
// 功能：地址按逗号切分，去除空白后取前三段作为P1/P2/P3，不足三段的部分留空
func NewSuggestion(address string, position geo.GeoPoint) Suggestion {
	var parts [3]string
	for i, part := range strings.SplitN(address, ",", 4) {
		if i >= len(parts) {
			break
		}
		parts[i] = strings.TrimSpace(part)
	}
	return Suggestion{
		P1:       parts[0],
		P2:       parts[1],
		P3:       parts[2],
		Address:  address,
		Position: position,
	}
}

// SimulatedPoint 附近模拟司机，每次查询重新生成
type SimulatedPoint struct {
	ID       string
	Position geo.GeoPoint
}

// ProximityResult 一次附近查询的结果
// All为生成的全部点，Nearby为其中距离中心不超过半径的点（保持All中的顺序）
type ProximityResult struct {
	Center geo.GeoPoint
	All    []SimulatedPoint
	Nearby []SimulatedPoint
}

// 地图渲染器的依赖倒置
// 说明：核心逻辑只向渲染器推送数据，不从渲染器读取任何状态
type IRenderer interface {
	SetRoute(points []geo.GeoPoint)              // 设置路线折线
	SetMarkers(kind MarkerKind, ms []Marker)     // 替换某一类型的全部标记
	UpsertMarker(m Marker)                       // 新增或移动单个标记
	SetRegion(r geo.Region)                      // 设置可视区域
	SetSuggestions(visible bool, s []Suggestion) // 设置候选列表及其可见性
}

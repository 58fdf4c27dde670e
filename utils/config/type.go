package config

import "github.com/tommyle1310/test-map/geo"

// Control 模拟器控制配置
// 功能：定义路线推进的核心控制参数
type Control struct {
	Seed          uint64  `yaml:"seed"`                                       // 随机数种子
	Step          float64 `yaml:"step" validate:"gte=0,lte=1"`                // 每个tick路段进度增量，0表示默认值
	IntervalMS    int     `yaml:"interval_ms" validate:"gte=0"`               // tick周期（毫秒），0表示按画面取默认值
	MaxDurationMS int     `yaml:"max_duration_ms,omitempty" validate:"gte=0"` // 演示最长运行时间，0表示直到全部到达
}

// AgentConfig 单个模拟车辆
type AgentConfig struct {
	ID     string         `yaml:"id,omitempty"`                           // 为空时自动生成
	Points []geo.GeoPoint `yaml:"points" validate:"omitempty,min=2,dive"` // 为空时使用route.points
}

// RouteConfig 路线配置
// 说明：points用于静态路线画面，origin/destination用于向导航服务请求路线
type RouteConfig struct {
	Points      []geo.GeoPoint `yaml:"points" validate:"omitempty,min=2,dive"`
	Origin      *geo.GeoPoint  `yaml:"origin,omitempty"`
	Destination *geo.GeoPoint  `yaml:"destination,omitempty"`
	Agents      []AgentConfig  `yaml:"agents,omitempty" validate:"dive"`
}

// NearbyConfig 附近司机配置
type NearbyConfig struct {
	Center            *geo.GeoPoint `yaml:"center,omitempty"`
	RadiusMeters      *float64      `yaml:"radius_m,omitempty" validate:"omitempty,gte=0"`       // 未填写时为1000，可显式设为0
	Population        *int          `yaml:"population,omitempty" validate:"omitempty,gte=0"`     // 未填写时为7
	ExtraSpreadMeters *float64      `yaml:"extra_spread_m,omitempty" validate:"omitempty,gte=0"` // 未填写时为1000
}

// SearchInput 一次文本输入事件（相对于画面开始的时刻）
type SearchInput struct {
	AtMS int    `yaml:"at_ms" validate:"gte=0"`
	Text string `yaml:"text"`
}

// TapInput 一次点击地图事件
type TapInput struct {
	AtMS  int          `yaml:"at_ms" validate:"gte=0"`
	Point geo.GeoPoint `yaml:"point"`
}

// SearchConfig 地点搜索配置
type SearchConfig struct {
	DebounceMS     int           `yaml:"debounce_ms" validate:"gte=0"`
	MinQueryLength int           `yaml:"min_query_length" validate:"gte=0"`
	Inputs         []SearchInput `yaml:"inputs,omitempty" validate:"dive"`
	Taps           []TapInput    `yaml:"taps,omitempty" validate:"dive"`
	SelectIndex    *int          `yaml:"select_index,omitempty" validate:"omitempty,gte=0"` // 收到建议后自动选择的序号
}

// TomTomConfig 导航/地理编码服务
type TomTomConfig struct {
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	APIKey    string `yaml:"api_key"`
	TimeoutMS int    `yaml:"timeout_ms" validate:"gte=0"`
}

// LocationConfig 设备定位配置
type LocationConfig struct {
	Granted  bool          `yaml:"granted"`
	Position *geo.GeoPoint `yaml:"position,omitempty"`
	Fallback geo.GeoPoint  `yaml:"fallback"` // 权限被拒绝或定位失败时的默认中心
}

// Config YAML配置文件的根结构
type Config struct {
	Control  Control        `yaml:"control"`
	Route    RouteConfig    `yaml:"route"`
	Nearby   NearbyConfig   `yaml:"nearby"`
	Search   SearchConfig   `yaml:"search"`
	TomTom   TomTomConfig   `yaml:"tomtom"`
	Location LocationConfig `yaml:"location"`
}

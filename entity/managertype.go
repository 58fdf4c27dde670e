package entity

import (
	"context"
	"time"

	"github.com/tommyle1310/test-map/clock"
	"github.com/tommyle1310/test-map/geo"
)

// Manager依赖倒置

// entity/agent/agent.go的依赖倒置
type IAgent interface {
	ID() string
	Position() geo.GeoPoint // 最近一次推送的位置，未开始时为起点
	Arrived() bool          // 是否已经到达终点
	Ticks() int             // 已执行的tick数

	Start(c clock.Clock, period time.Duration) // 在时钟上注册重复tick
	Stop()                                     // 取消tick，可重复调用
	Done() <-chan struct{}                     // 到达终点时关闭
}

// entity/agent/manager.go的依赖倒置
type IAgentManager interface {
	// 输入车辆ID，查找车辆，如果不存在则panic
	Get(id string) IAgent
	// 输入车辆ID，查找车辆，如果不存在则返回error
	GetOrError(id string) (IAgent, error)

	// 按加入顺序返回全部车辆
	All() []IAgent

	StartAll() // 全部车辆开始推进
	StopAll()  // 全部车辆停止推进
	// 等待全部车辆到达终点，ctx结束时返回ctx.Err()
	WaitArrived(ctx context.Context) error
}

// entity/proximity/finder.go的依赖倒置
type IProximityFinder interface {
	// 以center为中心重新生成并过滤附近司机
	Search(center geo.GeoPoint) (ProximityResult, error)
	// 最近一次成功查询的结果
	Last() (ProximityResult, bool)
}

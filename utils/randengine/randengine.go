// 随机数引擎，包装了golang.org/x/exp/rand，为模拟司机生成提供可复现的随机数
package randengine

import (
	"flag"
	"math"
	"sync"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，支持线程安全操作
// 说明：同一种子（含偏移量）总是产生同一序列，便于复现某次附近司机的分布
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，用于线程安全操作
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Float64Safe 随机生成浮点数（线程安全）
// 功能：生成[0.0, 1.0)范围内的随机浮点数
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}

// UniformSafe 在[lo, hi)内均匀采样（线程安全）
// 功能：按线性比例将[0,1)映射到[lo, hi)
// 参数：lo-下界（包含），hi-上界（不包含）
// 返回：采样值；hi<=lo时总是返回lo
func (e *Engine) UniformSafe(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*e.Float64Safe()
}

// AngleSafe 随机生成[0, 2π)内的方位角（线程安全）
func (e *Engine) AngleSafe() float64 {
	return e.UniformSafe(0, 2*math.Pi)
}

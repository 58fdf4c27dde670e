package task

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/clock"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/entity/agent"
	"github.com/tommyle1310/test-map/entity/proximity"
	"github.com/tommyle1310/test-map/provider/location"
	"github.com/tommyle1310/test-map/provider/tomtom"
	"github.com/tommyle1310/test-map/render"
	"github.com/tommyle1310/test-map/search"
	"github.com/tommyle1310/test-map/utils/config"
	"github.com/tommyle1310/test-map/utils/randengine"
)

var log = logrus.WithField("module", "task")

// loopBuffer 事件循环任务通道容量
const loopBuffer = 64

// Context 演示任务上下文
// 功能：包含一次运行的所有组件与状态，替代全局变量
// 说明：所有定时回调都在同一个事件循环上执行
type Context struct {
	// 关闭指令
	closed atomic.Bool

	// 事件循环时钟
	loop *clock.Loop

	// 渲染器
	renderer *render.LogRenderer
	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 路径规划与地理编码服务
	tomtom *tomtom.Client
	// 设备定位
	location entity.ILocationProvider
	// 随机数引擎
	rnd *randengine.Engine

	// 车辆管理器（route/calculate-route画面）
	agentManager *agent.AgentManager
	// 附近司机查询
	finder *proximity.Finder
	// 地点搜索（picker画面）
	searcher *search.Searcher
}

// NewContext 创建演示任务上下文
// 功能：按配置补齐默认值并创建全部组件
// 参数：c-配置对象
// 返回：初始化完成的Context实例
func NewContext(c config.Config) *Context {
	rc := config.NewRuntimeConfig(c)
	ctx := &Context{
		loop:          clock.NewLoop(loopBuffer),
		renderer:      render.NewLogRenderer(),
		runtimeConfig: rc,
		tomtom:        tomtom.NewClient(rc),
		location:      location.NewStatic(rc.All.Location),
		rnd:           randengine.New(rc.C.Seed),
	}
	ctx.finder = proximity.NewFinder(ctx)
	return ctx
}

func (ctx *Context) Clock() clock.Clock {
	return ctx.loop
}

func (ctx *Context) Renderer() entity.IRenderer {
	return ctx.renderer
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Router() entity.IRouter {
	return ctx.tomtom
}

func (ctx *Context) Geocoder() entity.IGeocoder {
	return ctx.tomtom
}

func (ctx *Context) Location() entity.ILocationProvider {
	return ctx.location
}

func (ctx *Context) Rand() *randengine.Engine {
	return ctx.rnd
}

// Frame 渲染器当前画面
func (ctx *Context) Frame() render.Frame {
	return ctx.renderer.Frame()
}

// AgentManager 路线画面的车辆管理器，车辆尚未开始时为nil
func (ctx *Context) AgentManager() entity.IAgentManager {
	if ctx.agentManager == nil {
		return nil
	}
	return ctx.agentManager
}

func (ctx *Context) Finder() entity.IProximityFinder {
	return ctx.finder
}

func (ctx *Context) Searcher() *search.Searcher {
	return ctx.searcher
}

// Close 释放所有定时器，可重复调用
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	if ctx.agentManager != nil {
		ctx.agentManager.StopAll()
	}
	if ctx.searcher != nil {
		ctx.searcher.Close()
	}
	ctx.loop.Close()
}

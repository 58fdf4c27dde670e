package task

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tommyle1310/test-map/clock"
	"github.com/tommyle1310/test-map/entity"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 1000, "心跳日志间隔（毫秒），0表示关闭")
)

var ErrUnknownScreen = errors.New("unknown screen")

// screen 画面入口
// 说明：在调用方协程中完成初始化，之后的所有工作由事件循环上的定时器驱动；
// 画面结束时调用finish，finish可重复调用
type screen func(ctx *Context, runCtx context.Context, finish func()) error

var screens = map[string]screen{
	"route":           routeScreen,
	"calculate-route": calculateRouteScreen,
	"picker":          pickerScreen,
	"nearby":          nearbyScreen,
}

// Screens 全部画面名
func Screens() []string {
	names := lo.Keys(screens)
	slices.Sort(names)
	return names
}

// Run 运行指定画面
// 功能：启动事件循环，初始化画面，等待画面结束、达到最长运行时间或parent被取消
// 参数：parent-外部上下文，name-画面名
// 返回：错误信息；达到最长运行时间视为正常结束
// 算法说明：
// 1. 在独立协程中运行事件循环
// 2. 初始化画面，注册心跳日志
// 3. 等待结束条件，然后停止事件循环并释放所有组件
func (ctx *Context) Run(parent context.Context, name string) error {
	start, ok := screens[name]
	if !ok {
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownScreen, name, Screens())
	}

	runCtx, cancel := context.WithCancel(parent)
	defer cancel()
	if d := ctx.runtimeConfig.MaxDuration(); d > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, d)
		defer cancelTimeout()
	}

	finished := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(finished) }) }

	loopErr := make(chan error, 1)
	go func() { loopErr <- ctx.loop.Run(runCtx) }()
	stopLoop := func() error {
		ctx.loop.Close()
		err := <-loopErr
		ctx.Close()
		return err
	}

	log.Infof("screen %s started", name)
	if err := start(ctx, runCtx, finish); err != nil {
		_ = stopLoop()
		return fmt.Errorf("screen %s: %w", name, err)
	}
	if *heartBeatInterval > 0 {
		ctx.loop.Every(time.Duration(*heartBeatInterval)*time.Millisecond, ctx.heartbeat)
	}

	select {
	case <-finished:
		log.Infof("screen %s finished at %s", name, clock.Format(ctx.loop.Now()))
	case <-runCtx.Done():
		if err := parent.Err(); err != nil {
			_ = stopLoop()
			return err
		}
		log.Infof("screen %s reached max duration %v", name, ctx.runtimeConfig.MaxDuration())
	}
	if err := stopLoop(); err != nil && parent.Err() != nil {
		return err
	}
	return nil
}

// heartbeat 心跳日志
func (ctx *Context) heartbeat() {
	m := ctx.AgentManager()
	if m == nil {
		log.Infof("T=%s", clock.Format(ctx.loop.Now()))
		return
	}
	agents := m.All()
	arrived := lo.CountBy(agents, entity.IAgent.Arrived)
	log.Infof("T=%s agents=%d arrived=%d", clock.Format(ctx.loop.Now()), len(agents), arrived)
	for _, a := range agents {
		log.Debugf("  %s tick %d at %v", a.ID(), a.Ticks(), a.Position())
	}
}

package agent

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tommyle1310/test-map/clock"
	"github.com/tommyle1310/test-map/entity/route"
	"github.com/tommyle1310/test-map/geo"
)

var ErrInvalidStep = errors.New("step must be in (0, 1]")

// Observer 接收每个tick推送的位置
type Observer func(a *Agent, position geo.GeoPoint)

// Agent 沿路线推进的模拟车辆
// 功能：独占自身进度状态，在时钟上注册重复tick，每个tick推进一步并把位置推送给观察者
// 说明：到达终点后自动取消定时器，Done通道只关闭一次
type Agent struct {
	id    string
	route *route.Route
	step  float64

	mu       sync.Mutex
	state    ProgressState
	position geo.GeoPoint
	ticks    int
	cancel   clock.Cancel

	observer Observer

	done     chan struct{}
	doneOnce sync.Once
}

// NewAgent 创建模拟车辆
// 参数：id-车辆ID，r-路线，step-每tick的进度增量，observer-位置观察者（可为nil）
// 返回：车辆与错误信息，步长不在(0,1]内时返回ErrInvalidStep
func NewAgent(id string, r *route.Route, step float64, observer Observer) (*Agent, error) {
	if !(step > 0 && step <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, step)
	}
	return &Agent{
		id:       id,
		route:    r,
		step:     step,
		position: r.Start(),
		observer: observer,
		done:     make(chan struct{}),
	}, nil
}

func (a *Agent) ID() string {
	return a.id
}

func (a *Agent) Position() geo.GeoPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

func (a *Agent) State() ProgressState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Ticks 已执行的tick数（包括到达那一次）
func (a *Agent) Ticks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticks
}

func (a *Agent) Arrived() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.ArrivedOn(a.route)
}

func (a *Agent) Done() <-chan struct{} {
	return a.done
}

// Start 开始推进
// 功能：在时钟c上以period为周期注册tick
// 说明：已在运行或已到达终点时不做任何事
func (a *Agent) Start(c clock.Clock, period time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		log.Warnf("agent %s already started", a.id)
		return
	}
	if a.state.ArrivedOn(a.route) {
		return
	}
	a.cancel = c.Every(period, a.tick)
	log.Debugf("agent %s started, period=%v step=%v", a.id, period, a.step)
}

// Stop 停止推进，可重复调用
func (a *Agent) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *Agent) tick() {
	a.mu.Lock()
	next, pos, moved := Advance(a.route, a.state, a.step)
	if !moved {
		a.mu.Unlock()
		return
	}
	a.state = next
	a.position = pos
	a.ticks++
	arrived := next.ArrivedOn(a.route)
	ticks := a.ticks
	a.mu.Unlock()

	if a.observer != nil {
		a.observer(a, pos)
	}
	if arrived {
		a.Stop()
		a.doneOnce.Do(func() { close(a.done) })
		log.Infof("agent %s arrived at %v after %d ticks", a.id, pos, ticks)
	}
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent{ID=%s, %v, Position=%v}", a.id, a.State(), a.Position())
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/entity/route"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/utils/config"
)

var ErrAgentNotFound = errors.New("agent not found")

// AgentManager 模拟车辆管理器
// 功能：管理多个各自独立推进的车辆，每个车辆持有自己的定时器，
// 每次位置变化时把车辆标记推送给渲染器
type AgentManager struct {
	ctx    entity.ITaskContext
	period time.Duration

	mu     sync.Mutex
	data   map[string]*Agent
	agents []*Agent // 按加入顺序，保证启动顺序确定
}

// NewManager 创建车辆管理器
// 参数：ctx-任务上下文，period-tick周期
func NewManager(ctx entity.ITaskContext, period time.Duration) *AgentManager {
	return &AgentManager{
		ctx:    ctx,
		period: period,
		data:   make(map[string]*Agent),
	}
}

// Init 根据配置创建全部车辆
// 功能：未指定路点的车辆使用默认路线，未指定ID的车辆分配UUID
// 参数：cfgs-车辆配置，defaultPoints-默认路线
// 返回：错误信息
func (m *AgentManager) Init(cfgs []config.AgentConfig, defaultPoints []geo.GeoPoint) error {
	if len(cfgs) == 0 {
		cfgs = []config.AgentConfig{{}}
	}
	agents := make([]*Agent, 0, len(cfgs))
	for _, c := range cfgs {
		points := c.Points
		if len(points) == 0 {
			points = defaultPoints
		}
		a, err := m.newAgent(c.ID, points)
		if err != nil {
			return err
		}
		agents = append(agents, a)
	}
	ids := lo.Map(agents, func(a *Agent, _ int) string { return a.id })
	if dup := lo.FindDuplicates(ids); len(dup) > 0 {
		return fmt.Errorf("duplicate agent ids %v", dup)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents = agents
	m.data = lo.SliceToMap(agents, func(a *Agent) (string, *Agent) {
		return a.id, a
	})
	return nil
}

// Add 新增车辆
func (m *AgentManager) Add(id string, points []geo.GeoPoint) (*Agent, error) {
	a, err := m.newAgent(id, points)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[a.id]; ok {
		return nil, fmt.Errorf("duplicate agent id %s", a.id)
	}
	m.data[a.id] = a
	m.agents = append(m.agents, a)
	return a, nil
}

func (m *AgentManager) newAgent(id string, points []geo.GeoPoint) (*Agent, error) {
	if id == "" {
		id = uuid.NewString()
	}
	r, err := route.NewRoute(points)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", id, err)
	}
	return NewAgent(id, r, m.ctx.RuntimeConfig().C.Step, m.onMove)
}

func (m *AgentManager) onMove(a *Agent, position geo.GeoPoint) {
	m.ctx.Renderer().UpsertMarker(entity.Marker{
		ID:       a.id,
		Title:    "Simulated Vehicle",
		Kind:     entity.MarkerAgent,
		Position: position,
	})
}

// Get 输入车辆ID，查找车辆，如果不存在则panic
func (m *AgentManager) Get(id string) entity.IAgent {
	a, err := m.GetOrError(id)
	if err != nil {
		log.Panicf("%v", err)
	}
	return a
}

// GetOrError 输入车辆ID，查找车辆，如果不存在则返回error
func (m *AgentManager) GetOrError(id string) (entity.IAgent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.data[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: id=%s", ErrAgentNotFound, id)
}

// Agents 按加入顺序返回全部车辆
func (m *AgentManager) Agents() []*Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Agent(nil), m.agents...)
}

// All 按加入顺序返回全部车辆
func (m *AgentManager) All() []entity.IAgent {
	return lo.Map(m.Agents(), func(a *Agent, _ int) entity.IAgent { return a })
}

// StartAll 全部车辆在任务时钟上开始推进，并推送初始车辆标记
func (m *AgentManager) StartAll() {
	for _, a := range m.Agents() {
		m.onMove(a, a.Position())
		a.Start(m.ctx.Clock(), m.period)
	}
}

// StopAll 全部车辆停止推进
func (m *AgentManager) StopAll() {
	for _, a := range m.Agents() {
		a.Stop()
	}
}

// WaitArrived 等待全部车辆到达终点
// 返回：ctx结束时返回ctx.Err()
func (m *AgentManager) WaitArrived(ctx context.Context) error {
	for _, a := range m.Agents() {
		select {
		case <-a.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/entity/proximity"
	"github.com/tommyle1310/test-map/geo"
)

var ErrNoSuggestion = errors.New("no such suggestion")

// SuggestionsListener 收到非空候选列表后的回调
type SuggestionsListener func(s []entity.Suggestion)

// Searcher 地点搜索控制器
// 功能：处理文本输入、防抖、地理编码请求与候选选择
// 说明：
//   - 文本短于最小长度时清空并隐藏候选列表，同时丢弃尚未触发和尚未返回的请求
//   - 防抖触发的文本与上一次搜索的文本相同时不发起请求
//   - 每个请求分配递增序号，早于最新请求的响应直接丢弃；已发出的请求不会被取消
//   - 请求失败只记录日志，候选列表置空
//   - Close之后到达的结果全部丢弃
//   - 选中地点后通过任务上下文触发附近司机查询
type Searcher struct {
	ctx       entity.ITaskContext
	minLength int
	debouncer *Debouncer[string]

	onSuggestions SuggestionsListener

	base   context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	lastSearched string
	seq          uint64 // 最新请求序号，清空文本时也递增
	lookups      int    // 发出的请求总数
	suggestions  []entity.Suggestion
	visible      bool
	selected     *geo.GeoPoint
	closed       bool

	inflight sync.WaitGroup
}

// NewSearcher 创建搜索控制器
func NewSearcher(ctx entity.ITaskContext) *Searcher {
	rc := ctx.RuntimeConfig()
	s := &Searcher{
		ctx:       ctx,
		minLength: rc.All.Search.MinQueryLength,
	}
	s.base, s.cancel = context.WithCancel(context.Background())
	s.debouncer = NewDebouncer(ctx.Clock(), rc.DebounceWindow(), s.lookup)
	return s
}

// OnTextChanged 输入框文本变化
func (s *Searcher) OnTextChanged(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if utf8.RuneCountInString(text) < s.minLength {
		s.suggestions = nil
		s.visible = false
		// 已发出的请求全部作废
		s.seq++
		s.mu.Unlock()
		s.debouncer.Stop()
		s.ctx.Renderer().SetSuggestions(false, nil)
		return
	}
	s.mu.Unlock()
	s.debouncer.Push(text)
}

// lookup 防抖触发后发起地理编码请求
// 算法说明：
// 1. 与上一次搜索文本相同则跳过
// 2. 分配新序号，在独立协程中请求，结果通过时钟投递回执行者
func (s *Searcher) lookup(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if text == s.lastSearched {
		s.mu.Unlock()
		log.Debugf("skip repeated query %q", text)
		return
	}
	s.lastSearched = text
	s.seq++
	s.lookups++
	id := s.seq
	s.mu.Unlock()

	geocoder := s.ctx.Geocoder()
	c := s.ctx.Clock()
	log.Infof("lookup #%d %q", id, text)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		res, err := geocoder.Search(s.base, text)
		c.Post(func() { s.deliver(id, text, res, err) })
	}()
}

func (s *Searcher) deliver(id uint64, text string, res []entity.Suggestion, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Debugf("drop lookup #%d %q: searcher closed", id, text)
		return
	}
	if id < s.seq {
		s.mu.Unlock()
		log.Debugf("drop stale lookup #%d %q, latest is #%d", id, text, s.seq)
		return
	}
	if err != nil {
		log.Warnf("lookup #%d %q failed: %v", id, text, err)
		res = nil
	}
	s.suggestions = res
	s.visible = len(res) > 0
	visible := s.visible
	listener := s.onSuggestions
	s.mu.Unlock()
	s.ctx.Renderer().SetSuggestions(visible, res)
	if visible && listener != nil {
		listener(res)
	}
}

// OnSuggestions 设置候选列表回调
func (s *Searcher) OnSuggestions(fn SuggestionsListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSuggestions = fn
}

// Select 选中一个候选地点
func (s *Searcher) Select(sg entity.Suggestion) {
	s.choose(sg.Position)
}

// SelectIndex 按序号选中当前候选列表中的地点
func (s *Searcher) SelectIndex(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.suggestions) {
		n := len(s.suggestions)
		s.mu.Unlock()
		return fmt.Errorf("%w: index %d of %d", ErrNoSuggestion, i, n)
	}
	sg := s.suggestions[i]
	s.mu.Unlock()
	s.Select(sg)
	return nil
}

// OnMapTap 点击地图选中地点
func (s *Searcher) OnMapTap(point geo.GeoPoint) {
	s.choose(point)
}

func (s *Searcher) choose(point geo.GeoPoint) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.selected = &point
	s.visible = false
	suggestions := s.suggestions
	s.mu.Unlock()

	r := s.ctx.Renderer()
	r.SetSuggestions(false, suggestions)
	r.UpsertMarker(entity.Marker{
		ID:       proximity.SelectedMarkerID,
		Title:    "Selected Location",
		Kind:     entity.MarkerSelected,
		Position: point,
	})
	r.SetRegion(geo.RegionAround(point, geo.DefaultSpanLat, geo.DefaultSpanLon))
	log.Infof("selected %v", point)
	if _, err := s.ctx.Finder().Search(point); err != nil {
		log.Warnf("nearby search around %v failed: %v", point, err)
	}
}

// Suggestions 当前候选列表及其可见性
func (s *Searcher) Suggestions() ([]entity.Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.suggestions), s.visible
}

// Selected 当前选中的地点
func (s *Searcher) Selected() (geo.GeoPoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return geo.GeoPoint{}, false
	}
	return *s.selected, true
}

// Lookups 已发出的请求总数
func (s *Searcher) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// Wait 等待所有已发出的请求返回（结果已投递到时钟，但未必已执行）
func (s *Searcher) Wait() {
	s.inflight.Wait()
}

// Close 停止搜索，丢弃未触发的输入与之后到达的结果，可重复调用
func (s *Searcher) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.debouncer.Stop()
	s.cancel()
}

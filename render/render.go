// Package render 记录最新画面并输出日志的渲染器
package render

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/geo"
)

var log = logrus.WithField("module", "render")

// Frame 渲染器当前画面
type Frame struct {
	Route              []geo.GeoPoint
	Markers            map[entity.MarkerKind][]entity.Marker
	Region             geo.Region
	Suggestions        []entity.Suggestion
	SuggestionsVisible bool
	Updates            int // 累计收到的更新次数
}

// LogRenderer 日志渲染器
// 功能：实现entity.IRenderer，保存最新一帧并把变化写入日志
// 说明：标记移动属于高频事件，只在debug级别输出
type LogRenderer struct {
	mu    sync.Mutex
	frame Frame
}

func NewLogRenderer() *LogRenderer {
	return &LogRenderer{
		frame: Frame{Markers: make(map[entity.MarkerKind][]entity.Marker)},
	}
}

func (r *LogRenderer) SetRoute(points []geo.GeoPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame.Route = slices.Clone(points)
	r.frame.Updates++
	log.Infof("route: %d points", len(points))
}

func (r *LogRenderer) SetMarkers(kind entity.MarkerKind, ms []entity.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame.Markers[kind] = slices.Clone(ms)
	r.frame.Updates++
	log.Infof("markers[%v]: %d", kind, len(ms))
	for _, m := range ms {
		log.Debugf("  %v", m)
	}
}

func (r *LogRenderer) UpsertMarker(m entity.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms := r.frame.Markers[m.Kind]
	if _, i, ok := lo.FindIndexOf(ms, func(old entity.Marker) bool { return old.ID == m.ID }); ok {
		ms[i] = m
	} else {
		r.frame.Markers[m.Kind] = append(ms, m)
	}
	r.frame.Updates++
	log.Debugf("marker %v", m)
}

func (r *LogRenderer) SetRegion(region geo.Region) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame.Region = region
	r.frame.Updates++
	log.Infof("region: center=%v span=(%.4f, %.4f)", region.Center, region.SpanLat, region.SpanLon)
}

func (r *LogRenderer) SetSuggestions(visible bool, s []entity.Suggestion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame.Suggestions = slices.Clone(s)
	r.frame.SuggestionsVisible = visible
	r.frame.Updates++
	if !visible {
		log.Info("suggestions hidden")
		return
	}
	labels := lo.Map(s, func(item entity.Suggestion, _ int) string {
		return strings.Join(lo.Compact([]string{item.P1, item.P2, item.P3}), " / ")
	})
	log.Infof("suggestions: %q", labels)
}

// Frame 当前画面的深拷贝
func (r *LogRenderer) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.frame
	f.Route = slices.Clone(r.frame.Route)
	f.Suggestions = slices.Clone(r.frame.Suggestions)
	f.Markers = lo.MapValues(r.frame.Markers, func(ms []entity.Marker, _ entity.MarkerKind) []entity.Marker {
		return slices.Clone(ms)
	})
	return f
}

// Marker 按类型与ID查找标记
func (r *LogRenderer) Marker(kind entity.MarkerKind, id string) (entity.Marker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Find(r.frame.Markers[kind], func(m entity.Marker) bool { return m.ID == id })
}

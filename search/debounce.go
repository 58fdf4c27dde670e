// Package search 地点搜索：输入防抖、候选列表与地点选择
package search

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/clock"
)

var log = logrus.WithField("module", "search")

// Debouncer 后写优先的防抖器
// 功能：每次Push都会重置单次定时器，窗口内没有新的Push时才以最后一次的值触发一次
// 说明：被覆盖的值直接丢弃；fire在时钟的执行者上运行
type Debouncer[T any] struct {
	clock  clock.Clock
	window time.Duration
	fire   func(T)

	mu     sync.Mutex
	cancel clock.Cancel
	gen    uint64 // 每次Push/Stop递增，过期的定时器回调据此失效
}

func NewDebouncer[T any](c clock.Clock, window time.Duration, fire func(T)) *Debouncer[T] {
	return &Debouncer[T]{clock: c, window: window, fire: fire}
}

// Push 提交新值并重新计时
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	gen := d.gen
	d.cancel = d.clock.AfterFunc(d.window, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.cancel = nil
		d.mu.Unlock()
		d.fire(v)
	})
}

// Stop 丢弃尚未触发的值
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

// Pending 是否有等待触发的值
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

func (d *Debouncer[T]) resetLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++
}

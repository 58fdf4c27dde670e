package clock

import (
	"sync"
	"time"

	"github.com/tommyle1310/test-map/utils/container"
)

// timer 虚拟时钟中的一个定时器
type timer struct {
	fn        func()
	period    time.Duration // 0表示单次定时器
	cancelled bool
}

// Virtual 确定性虚拟时钟
// 功能：只有在调用Advance时时间才会前进，到期回调按时间顺序（同一时刻按注册顺序）执行
// 说明：用于单元测试与离线回放，可以替代真实定时器得到完全可复现的结果
type Virtual struct {
	mu     sync.Mutex
	now    time.Duration
	queue  *container.PriorityQueue[*timer]
	active map[*timer]struct{}
	fired  int // 已执行的回调总数
}

// NewVirtual 创建虚拟时钟，时间从0开始
func NewVirtual() *Virtual {
	return &Virtual{
		queue:  container.NewPriorityQueue[*timer](),
		active: make(map[*timer]struct{}),
	}
}

func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Every(period time.Duration, fn func()) Cancel {
	checkPeriod(period)
	return v.schedule(period, period, fn)
}

func (v *Virtual) AfterFunc(delay time.Duration, fn func()) Cancel {
	if delay < 0 {
		delay = 0
	}
	return v.schedule(delay, 0, fn)
}

// Post 在当前虚拟时刻排入回调，下一次Advance（包括Advance(0)）时执行
func (v *Virtual) Post(fn func()) {
	v.schedule(0, 0, fn)
}

func (v *Virtual) schedule(delay, period time.Duration, fn func()) Cancel {
	v.mu.Lock()
	defer v.mu.Unlock()
	t := &timer{fn: fn, period: period}
	v.active[t] = struct{}{}
	v.queue.HeapPush(t, int64(v.now+delay))
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		t.cancelled = true
		delete(v.active, t)
	}
}

// Advance 推进虚拟时间
// 功能：执行所有在[now, now+d]内到期的回调，然后将时间设置为now+d
// 参数：d-推进的时长
// 返回：本次执行的回调数量
// 算法说明：
// 1. 取出最早到期的定时器，若已取消则丢弃
// 2. 将当前时间设置为该定时器的到期时刻
// 3. 周期定时器在执行回调前重新入队，回调内的取消能够生效
// 4. 释放锁后执行回调，回调中可以继续调度新的定时器
func (v *Virtual) Advance(d time.Duration) int {
	v.mu.Lock()
	target := v.now + d
	v.mu.Unlock()

	n := 0
	for {
		v.mu.Lock()
		if v.queue.Len() == 0 {
			v.mu.Unlock()
			break
		}
		_, at := v.queue.First()
		if time.Duration(at) > target {
			v.mu.Unlock()
			break
		}
		t, _ := v.queue.HeapPop()
		if t.cancelled {
			v.mu.Unlock()
			continue
		}
		v.now = time.Duration(at)
		if t.period > 0 {
			v.queue.HeapPush(t, at+int64(t.period))
		} else {
			delete(v.active, t)
		}
		v.fired++
		v.mu.Unlock()

		t.fn()
		n++
	}

	v.mu.Lock()
	if target > v.now {
		v.now = target
	}
	v.mu.Unlock()
	return n
}

// Pending 尚未取消、尚未执行完毕的定时器数量
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.active)
}

// Fired 已执行的回调总数
func (v *Virtual) Fired() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fired
}

func (v *Virtual) String() string {
	return Format(v.Now())
}

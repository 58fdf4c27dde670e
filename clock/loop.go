package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop 实时协作式事件循环
// 功能：真实定时器只负责把回调投递到任务通道，所有回调都由Run所在的协程串行执行
// 说明：组件无需加锁即可在回调中修改自身状态，与单线程UI调度模型一致
type Loop struct {
	start time.Time
	tasks chan func()

	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	cancels map[*atomic.Bool]func() // 仍然存活的定时器，Close时统一释放
}

// NewLoop 创建事件循环
// 参数：buffer-任务通道容量
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 1
	}
	return &Loop{
		start:   time.Now(),
		tasks:   make(chan func(), buffer),
		done:    make(chan struct{}),
		cancels: make(map[*atomic.Bool]func()),
	}
}

func (l *Loop) Now() time.Duration {
	return time.Since(l.start)
}

func (l *Loop) Every(period time.Duration, fn func()) Cancel {
	checkPeriod(period)
	ticker := time.NewTicker(period)
	stop := make(chan struct{})
	cancelled := &atomic.Bool{}
	var once sync.Once
	release := func() {
		once.Do(func() {
			cancelled.Store(true)
			ticker.Stop()
			close(stop)
		})
	}
	l.track(cancelled, release)

	go func() {
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if !cancelled.Load() {
						fn()
					}
				})
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}()
	return func() {
		release()
		l.untrack(cancelled)
	}
}

func (l *Loop) AfterFunc(delay time.Duration, fn func()) Cancel {
	cancelled := &atomic.Bool{}
	var t *time.Timer
	release := func() {
		cancelled.Store(true)
		t.Stop()
	}
	l.mu.Lock()
	t = time.AfterFunc(delay, func() {
		l.Post(func() {
			l.untrack(cancelled)
			if !cancelled.Load() {
				fn()
			}
		})
	})
	l.cancels[cancelled] = release
	l.mu.Unlock()
	return func() {
		release()
		l.untrack(cancelled)
	}
}

// Post 投递任务；循环关闭后投递的任务被丢弃
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Run 在当前协程中执行任务，直到ctx结束或Close被调用
// 返回：因ctx结束而退出时返回ctx.Err()，否则返回nil
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

// Close 停止循环并释放所有存活的定时器
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		cancels := l.cancels
		l.cancels = make(map[*atomic.Bool]func())
		l.mu.Unlock()
		for _, release := range cancels {
			release()
		}
		log.Debugf("loop closed, %d timers released", len(cancels))
	})
}

func (l *Loop) track(key *atomic.Bool, release func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancels[key] = release
}

func (l *Loop) untrack(key *atomic.Bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cancels, key)
}

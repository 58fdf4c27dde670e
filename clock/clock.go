package clock

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "clock")

// Cancel 取消定时器的句柄
// 说明：可重复调用，第二次及以后的调用无效果
type Cancel func()

// Clock 调度器端口
// 功能：为路线推进、搜索防抖等组件提供定时能力，核心逻辑从不直接创建系统定时器
// 说明：所有回调都在同一个执行者上串行执行（协作式单线程模型），
// 回调内部可以安全地再次调度或取消定时器
type Clock interface {
	// Now 自时钟创建以来经过的时间
	Now() time.Duration
	// Every 以固定周期重复执行fn，直到返回的Cancel被调用
	Every(period time.Duration, fn func()) Cancel
	// AfterFunc 在delay之后执行一次fn，除非返回的Cancel先被调用
	AfterFunc(delay time.Duration, fn func()) Cancel
	// Post 将fn投递到执行者，用于把外部协程（如HTTP请求）的结果送回单线程模型
	Post(fn func())
}

// Format 将时长格式化为HH:MM:SS
// 功能：将总时长分解为小时、分钟、秒并格式化
// 参数：d-时长
// 返回：格式化的时间字符串
func Format(d time.Duration) string {
	h, m, s := HourMinuteSecond(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// HourMinuteSecond 获取时长的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func HourMinuteSecond(d time.Duration) (int, int, float64) {
	t := d.Seconds()
	hour := int(t) / 3600
	minute := int(t) % 3600 / 60
	second := t - float64(hour*3600+minute*60)
	return hour, minute, second
}

func checkPeriod(period time.Duration) {
	if period <= 0 {
		log.Panicf("non-positive timer period %v", period)
	}
}

package store

import (
	"sync"
	"time"
)

// 防抖通道：每类读请求一个通道，同一通道内未触发的任务互相顶替
const (
	channelList   = "list"
	channelGetOne = "get-one"
)

// debouncer 按通道聚合读请求
// 不变量：每个通道最多存在一个已排定但未触发的任务
// 只取消未触发的定时器，已经发出的网络请求不受影响
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timers   map[string]*time.Timer
}

// newDebouncer 创建防抖器，interval 是静默窗口
func newDebouncer(interval time.Duration) *debouncer {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// schedule 排定任务：顶替同通道的未触发任务，静默窗口结束后执行 fn
func (d *debouncer) schedule(channel string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pending, ok := d.timers[channel]; ok {
		pending.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		// 只有自己仍是该通道的当前任务时才清理登记
		if d.timers[channel] == timer {
			delete(d.timers, channel)
		}
		d.mu.Unlock()

		fn()
	})
	d.timers[channel] = timer
}

// cancel 取消通道上未触发的任务
func (d *debouncer) cancel(channel string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pending, ok := d.timers[channel]; ok {
		pending.Stop()
		delete(d.timers, channel)
	}
}

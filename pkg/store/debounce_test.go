package store

import (
	"sync/atomic"
	"testing"
	"time"
)

// 静默窗口内两次排定只触发一次
func TestDebounceCoalesces(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	var fired int32

	d.schedule(channelList, func() { atomic.AddInt32(&fired, 1) })
	d.schedule(channelList, func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("触发 %d 次, want 1", got)
	}
}

// 不同通道互不顶替
func TestDebounceChannelsIndependent(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var listFired, getFired int32

	d.schedule(channelList, func() { atomic.AddInt32(&listFired, 1) })
	d.schedule(channelGetOne, func() { atomic.AddInt32(&getFired, 1) })

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&listFired) != 1 || atomic.LoadInt32(&getFired) != 1 {
		t.Errorf("list=%d get=%d, want 各触发一次",
			atomic.LoadInt32(&listFired), atomic.LoadInt32(&getFired))
	}
}

// 窗口外的排定各自触发
func TestDebounceSequentialWindows(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	var fired int32

	d.schedule(channelList, func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(50 * time.Millisecond)
	d.schedule(channelList, func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Errorf("触发 %d 次, want 2", got)
	}
}

func TestDebounceCancel(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var fired int32

	d.schedule(channelList, func() { atomic.AddInt32(&fired, 1) })
	d.cancel(channelList)

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("触发 %d 次, want 取消后不触发", got)
	}
}

package scheduler

import (
	"context"

	"github.com/dewei/MarketDiary/pkg/logger"
	"github.com/dewei/MarketDiary/pkg/store"
	"github.com/robfig/cron/v3"
)

// Scheduler 周期刷新调度器
// watch 模式下按配置的 cron 表达式触发日记列表刷新；
// 刷新走状态机的防抖读路径，和手动刷新共享同样的合并语义
type Scheduler struct {
	cron  *cron.Cron
	store *store.Store
	spec  string
}

// NewScheduler 创建调度器，spec 形如 "@every 1m"
func NewScheduler(entryStore *store.Store, spec string) *Scheduler {
	if spec == "" {
		spec = "@every 1m"
	}
	return &Scheduler{
		cron:  cron.New(),
		store: entryStore,
		spec:  spec,
	}
}

// Start 启动调度器
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Log.Debug("定时刷新日记列表...")
		s.store.ListEntries(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

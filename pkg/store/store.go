package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dewei/MarketDiary/pkg/gateway"
	"github.com/dewei/MarketDiary/pkg/model"
)

// EntryService 远端存储网关接口
type EntryService interface {
	ListEntries(ctx context.Context) ([]model.Entry, error)
	GetEntry(ctx context.Context, id string) (*model.Entry, error)
	CreateEntry(ctx context.Context, draft model.EntryDraft) (*model.Entry, error)
	UpdateEntry(ctx context.Context, id string, draft model.EntryDraft) (*model.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// OperationError 写操作失败时返回给调用方的错误
// Message 和写入状态机的错误文案一致，表单可以直接展示
type OperationError struct {
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Store 日记状态机
// 持有客户端的权威状态副本，所有变更经由唯一的归约函数串行应用
// 读操作把错误吸收进状态，写操作在写入状态之外同时向调用方返回错误
type Store struct {
	svc      EntryService
	debounce *debouncer

	mu       sync.RWMutex
	state    State
	watchers []chan struct{}
}

// NewStore 创建日记状态机，debounceInterval 是读操作的防抖静默窗口
func NewStore(svc EntryService, debounceInterval time.Duration) *Store {
	return &Store{
		svc:      svc,
		debounce: newDebouncer(debounceInterval),
	}
}

// State 返回当前状态快照
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Watch 订阅状态变化，每次归约后收到一个信号
// 通道带缓冲且发送不阻塞，慢消费者会丢失中间信号但总能看到最新状态
func (s *Store) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch
}

// dispatch 应用归约动作并通知订阅者
func (s *Store) dispatch(act action) {
	s.mu.Lock()
	s.state = reduce(s.state, act)
	watchers := s.watchers
	s.mu.Unlock()

	notify(watchers)
}

// ListEntries 拉取全部日记（防抖）
// 状态机已处于加载中时直接返回，避免重入；失败只写入状态，不向上抛出
func (s *Store) ListEntries(ctx context.Context) {
	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state = reduce(s.state, action{kind: actionSetLoading})
	watchers := s.watchers
	s.mu.Unlock()
	notify(watchers)

	s.debounce.schedule(channelList, func() {
		entries, err := s.svc.ListEntries(ctx)
		if err != nil {
			s.dispatch(action{kind: actionEntryError, message: errorMessage(err, "Failed to fetch entries")})
			return
		}
		s.dispatch(action{kind: actionGetEntriesOK, entries: entries})
	})
}

// GetEntry 按 ID 拉取单条日记（防抖）
// 刻意不做加载中判断：详情页之间切换时允许用新的 ID 反复调用，
// 防抖负责把连续请求合并成一次
func (s *Store) GetEntry(ctx context.Context, id string) {
	s.dispatch(action{kind: actionSetLoading})

	s.debounce.schedule(channelGetOne, func() {
		entry, err := s.svc.GetEntry(ctx, id)
		if err != nil {
			s.dispatch(action{kind: actionEntryError, message: errorMessage(err, "Failed to fetch entry")})
			return
		}
		s.dispatch(action{kind: actionGetEntryOK, entry: entry})
	})
}

// AddEntry 创建日记，成功后新日记排在列表最前并返回给调用方
// 失败时写入状态机并把同样的错误消息返回，表单可以立即展示
func (s *Store) AddEntry(ctx context.Context, draft model.EntryDraft) (*model.Entry, error) {
	s.dispatch(action{kind: actionSetLoading})

	entry, err := s.svc.CreateEntry(ctx, draft)
	if err != nil {
		message := errorMessage(err, "Failed to add entry")
		s.dispatch(action{kind: actionEntryError, message: message})
		return nil, &OperationError{Message: message, Err: err}
	}

	s.dispatch(action{kind: actionAddEntryOK, entry: entry})
	return entry, nil
}

// UpdateEntry 更新日记，成功后按 ID 原位替换并把 CurrentEntry 指向更新结果
func (s *Store) UpdateEntry(ctx context.Context, id string, draft model.EntryDraft) (*model.Entry, error) {
	s.dispatch(action{kind: actionSetLoading})

	entry, err := s.svc.UpdateEntry(ctx, id, draft)
	if err != nil {
		message := errorMessage(err, "Failed to update entry")
		s.dispatch(action{kind: actionEntryError, message: message})
		return nil, &OperationError{Message: message, Err: err}
	}

	s.dispatch(action{kind: actionUpdateEntryOK, entry: entry})
	return entry, nil
}

// DeleteEntry 删除日记，成功后从列表移除并无条件清空 CurrentEntry
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.dispatch(action{kind: actionSetLoading})

	if err := s.svc.DeleteEntry(ctx, id); err != nil {
		message := errorMessage(err, "Failed to delete entry")
		s.dispatch(action{kind: actionEntryError, message: message})
		return &OperationError{Message: message, Err: err}
	}

	s.dispatch(action{kind: actionDeleteEntryOK, id: id})
	return nil
}

// ClearCurrent 清空当前日记，离开详情/编辑页时调用，无网络 I/O
func (s *Store) ClearCurrent() {
	s.dispatch(action{kind: actionClearCurrent})
}

// ClearError 清空错误状态，无网络 I/O
func (s *Store) ClearError() {
	s.dispatch(action{kind: actionEntryError, message: ""})
}

// notify 向订阅者发送状态变化信号，不阻塞
func notify(watchers []chan struct{}) {
	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// errorMessage 提取用户可见的错误文案
// 顺序固定：服务端 message 字段 -> 服务端 msg 字段 -> 异常自带消息 -> 组件兜底文案
func errorMessage(err error, fallback string) string {
	var serverErr *gateway.ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

package store

import (
	"github.com/dewei/MarketDiary/pkg/model"
)

// State 日记的客户端权威视图
// Loading 与终态（成功或 Error 非空）互斥；每次发起新请求时 Error 都会被清空
// 切片和指针在归约后不再被修改，快照可以安全地被并发读取
type State struct {
	Entries      []model.Entry
	CurrentEntry *model.Entry
	Loading      bool
	Error        string
}

// actionKind 归约动作类型
type actionKind int

const (
	actionSetLoading actionKind = iota
	actionGetEntriesOK
	actionGetEntryOK
	actionAddEntryOK
	actionUpdateEntryOK
	actionDeleteEntryOK
	actionClearCurrent
	actionEntryError
)

// action 状态机的归约动作，所有变更只能通过它进入 reduce
type action struct {
	kind    actionKind
	entries []model.Entry
	entry   *model.Entry
	id      string
	message string
}

// reduce 纯归约函数，逐个动作原子地推进状态
func reduce(state State, act action) State {
	switch act.kind {
	case actionSetLoading:
		state.Loading = true
		state.Error = ""
		return state

	case actionGetEntriesOK:
		state.Entries = act.entries
		state.Loading = false
		state.Error = ""
		return state

	case actionGetEntryOK:
		state.CurrentEntry = act.entry
		state.Loading = false
		state.Error = ""
		return state

	case actionAddEntryOK:
		// 新日记排在最前
		entries := make([]model.Entry, 0, len(state.Entries)+1)
		entries = append(entries, *act.entry)
		entries = append(entries, state.Entries...)
		state.Entries = entries
		state.Loading = false
		state.Error = ""
		return state

	case actionUpdateEntryOK:
		// 按 ID 原位替换，不改变列表长度和其他日记的位置
		entries := make([]model.Entry, len(state.Entries))
		for i, entry := range state.Entries {
			if entry.ID == act.entry.ID {
				entries[i] = *act.entry
			} else {
				entries[i] = entry
			}
		}
		state.Entries = entries
		state.CurrentEntry = act.entry
		state.Loading = false
		state.Error = ""
		return state

	case actionDeleteEntryOK:
		entries := make([]model.Entry, 0, len(state.Entries))
		for _, entry := range state.Entries {
			if entry.ID != act.id {
				entries = append(entries, entry)
			}
		}
		state.Entries = entries
		state.CurrentEntry = nil
		state.Loading = false
		state.Error = ""
		return state

	case actionClearCurrent:
		state.CurrentEntry = nil
		state.Error = ""
		return state

	case actionEntryError:
		state.Error = act.message
		state.Loading = false
		return state

	default:
		return state
	}
}

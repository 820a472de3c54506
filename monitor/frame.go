package monitor

import "github.com/lonng/defex/executor"

// Frame 推送给观察者的一帧快照
type Frame struct {
	Board    string       `json:"board"`    // 观测板 ID
	Seq      int64        `json:"seq"`      // 帧序号, 从 1 开始
	Now      uint32       `json:"now"`      // 本帧的计划触发时刻(毫秒)
	Watchers int64        `json:"watchers"` // 在线观察者数量
	Tables   []TableState `json:"tables"`   // 各延迟执行表的状态
}

// TableState 单个延迟执行表的状态快照
type TableState struct {
	Name   string               `json:"name"`   // 表名称
	Cap    int                  `json:"cap"`    // 槽位容量
	Active int                  `json:"active"` // 使用中的槽位数量
	Slots  []executor.SlotState `json:"slots"`  // 使用中槽位的明细
}

// capture 采集所有被观测表的状态
func capture(tables []*executor.Table) []TableState {
	states := make([]TableState, 0, len(tables))
	for _, t := range tables {
		states = append(states, TableState{
			Name:   t.Name(),
			Cap:    t.Cap(),
			Active: t.Active(),
			Slots:  t.Snapshot(),
		})
	}
	return states
}

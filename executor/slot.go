package executor

// 槽位
type slot struct {
	token   Token    // 最近一次发放的令牌, 跨申请周期保留用于轮转
	trigger uint32   // 计划触发时刻(毫秒)
	cb      Callback // 到期回调, nil 表示未武装
	arg     any      // 回调参数
}

// SlotState 单个使用中槽位的只读快照
type SlotState struct {
	Index       int    `json:"index"`        // 槽位下标
	Token       uint32 `json:"token"`        // 当前持有的令牌
	TriggerTime uint32 `json:"trigger_time"` // 计划触发时刻(毫秒)
	Armed       bool   `json:"armed"`        // 回调是否武装
}

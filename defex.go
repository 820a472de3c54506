package defex

import (
	"sync"

	"github.com/lonng/defex/executor"
	"github.com/lonng/defex/internal/env"
)

// VERSION 当前 defex 版本
var VERSION = "0.1.0"

// 重新导出核心类型, 普通调用方只需要引用本包
type (
	// Token 延迟执行令牌
	Token = executor.Token
	// Callback 到期回调函数类型
	Callback = executor.Callback
	// Table 延迟执行表
	Table = executor.Table
)

// InvalidToken 保留的无效令牌
const InvalidToken = executor.InvalidToken

// 默认的全局延迟执行表
var (
	mu      sync.Mutex                                                //锁
	Default = executor.NewTable("default", env.DefaultCapacity, nil) //默认表, 面向普通业务
	Core    = executor.NewTable("core", env.CoreCapacity, nil)       //核心表, 面向框架内部任务, 容量与默认表隔离
)

// Replace 替换默认的延迟执行表, 传 nil 的位置保持原表不变
func Replace(basic, core *executor.Table) {
	mu.Lock()
	defer mu.Unlock()

	if basic != nil {
		Default = basic
	}
	if core != nil {
		Core = core
	}
}

// Schedule 在默认表上申请延迟执行
func Schedule(delayMs uint32, cb Callback, arg any) Token {
	return Default.Schedule(delayMs, cb, arg)
}

// Extend 重新定时默认表上的延迟执行
func Extend(token Token, delayMs uint32) bool {
	return Default.Extend(token, delayMs)
}

// Cancel 取消默认表上的延迟执行并释放槽位
func Cancel(token Token) bool {
	return Default.Cancel(token)
}

// Poll 轮询默认表和核心表, 需要由驱动方在同一个协程内周期调用
func Poll() {
	Default.Poll()
	Core.Poll()
}

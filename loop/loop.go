package loop

import (
	"sync/atomic"
	"time"

	"github.com/pingcap/errors"

	"github.com/lonng/defex/executor"
	"github.com/lonng/defex/internal/env"
	"github.com/lonng/defex/internal/log"
)

// Task 定义一个任务类型
type Task func()

// State 轮询循环状态常量
type State = int32

const (
	// StateCreated 轮询循环已创建, 但未启动
	StateCreated State = 0
	// StateRunning 轮询循环正在运行
	StateRunning State = 1
	// StateClosed 轮询循环已关闭
	StateClosed State = 2
)

// Loop 把一组延迟执行表绑定到单个协程的轮询循环.
// 表的所有方法都只在这个协程内被调用, 跨协程的表操作必须通过 Execute 投递.
type Loop struct {
	name    string            // 循环名称
	tick    time.Duration     // 走时精度
	state   atomic.Int32      // 循环状态
	chDie   chan struct{}     // 关闭信号通道
	chTasks chan Task         // 任务队列
	tables  []*executor.Table // 被驱动的延迟执行表
}

// NewLoop 构造一个新的轮询循环, 需要调用 Start() 方法来启动轮询.
func NewLoop(name string, tick time.Duration, tables ...*executor.Table) *Loop {
	if tick <= 0 {
		panic("defex/loop: tick must > 0")
	}
	if len(tables) == 0 {
		panic("defex/loop: no table to drive")
	}
	return &Loop{
		name:    name,
		tick:    tick,
		chDie:   make(chan struct{}),
		chTasks: make(chan Task, 1<<8),
		tables:  tables,
	}
}

// runTask 执行一个任务, 捕获 panic
func (l *Loop) runTask(task Task) {
	if task == nil {
		return
	}
	defer func() {
		if err := recover(); err != nil {
			log.Error("Defex loop [%v] execute task error.", l.name, errors.Errorf("%v", err))
		}
	}()
	task()
}

// run 轮询循环的主体
func (l *Loop) run() {
	if env.Debug {
		log.Info("Defex loop [%v] staring.", l.name)
	}

	ticker := time.NewTicker(l.tick)
	defer func() {
		ticker.Stop()
		close(l.chTasks)
		if env.Debug {
			log.Info("Defex loop [%v] closed.", l.name)
		}
	}()

	for {
		select {
		case <-ticker.C:
			for _, t := range l.tables {
				t.Poll()
			}

		case task := <-l.chTasks:
			l.runTask(task)

		case <-l.chDie:
			return
		}
	}
}

// Start 启动轮询循环
func (l *Loop) Start() {
	if !l.state.CompareAndSwap(StateCreated, StateRunning) {
		return
	}

	// 子协程启动循环
	go l.run()
}

// Close 关闭轮询循环, 停止走时并不再接受新任务
func (l *Loop) Close() {
	if !l.state.CompareAndSwap(StateRunning, StateClosed) {
		return
	}
	close(l.chDie)
}

// State 返回轮询循环的当前状态
func (l *Loop) State() State {
	return l.state.Load()
}

// Name 返回循环名称
func (l *Loop) Name() string {
	return l.name
}

// Tables 返回被驱动的延迟执行表
func (l *Loop) Tables() []*executor.Table {
	return l.tables
}

// Execute 投递一个任务到轮询协程执行
func (l *Loop) Execute(task Task) bool {
	if l.state.Load() == StateClosed {
		if env.Debug {
			log.Info("Defex loop [%v] already closed, new tasks are not accepted.", l.name)
		}
		return false
	}
	l.chTasks <- task
	return true
}

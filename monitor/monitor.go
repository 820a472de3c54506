package monitor

import (
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lonng/defex/executor"
	"github.com/lonng/defex/internal/env"
	"github.com/lonng/defex/internal/log"
	"github.com/lonng/defex/loop"
)

// Monitor 延迟执行表的观测组件.
// 在 job 表上挂一个周期作业, 每个周期采集一次所有被观测表的快照,
// 打包成帧广播给所有在线的观察者. 作业本身就是一次典型的重复延迟执行:
// 回调每次返回推送间隔, 下一帧以上一帧的计划触发时刻为基准对齐节拍.
type Monitor struct {
	boardID  string              // 观测板 ID
	interval uint32              // 推送间隔(毫秒)
	lp       *loop.Loop          // 驱动 job 表的轮询循环
	job      *executor.Table     // 承载推送作业的表
	tables   []*executor.Table   // 被观测的表
	board    *Board              // 观察者会话组
	upgrader *websocket.Upgrader // 升级器
	seq      atomic.Int64        // 帧序号
	token    executor.Token      // 推送作业的令牌, 只在轮询协程内读写
}

// NewMonitor 构造函数.
// lp 必须是驱动 job 表的轮询循环, intervalMs 为推送间隔毫秒数.
func NewMonitor(name string, lp *loop.Loop, intervalMs uint32, job *executor.Table, tables ...*executor.Table) *Monitor {
	if lp == nil || job == nil {
		panic("defex/monitor: nil loop or job table")
	}
	if intervalMs == 0 {
		panic("defex/monitor: intervalMs must > 0")
	}
	return &Monitor{
		boardID:  uuid.NewString(),
		interval: intervalMs,
		lp:       lp,
		job:      job,
		tables:   tables,
		board:    NewBoard(name),
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 观测板是调试面板, 不限制来源
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// BoardID 返回观测板 ID
func (m *Monitor) BoardID() string {
	return m.boardID
}

// Board 返回观察者会话组
func (m *Monitor) Board() *Board {
	return m.board
}

// Start 在 job 表上挂起周期推送作业, 观测板关闭后不允许重新启动
func (m *Monitor) Start() {
	m.lp.Execute(func() {
		if m.board.IsClosed() || m.token != executor.InvalidToken {
			return
		}
		m.token = m.job.Schedule(m.interval, m.pushFrame, nil)
		if m.token == executor.InvalidToken {
			log.Error("Defex monitor [%v] schedule push job failed, job table is full.", m.board.Name())
		}
	})
}

// Close 取消推送作业并关闭观测板
func (m *Monitor) Close() {
	m.lp.Execute(func() {
		if m.token != executor.InvalidToken {
			m.job.Cancel(m.token)
			m.token = executor.InvalidToken
		}
	})
	_ = m.board.Close()
}

// pushFrame 周期推送作业的回调, 返回推送间隔让作业按原节拍重复执行
func (m *Monitor) pushFrame(triggerTime uint32, _ any) uint32 {
	// 无人观看时跳过采集, 作业保持走时
	if m.board.Count() > 0 {
		frame := &Frame{
			Board:    m.boardID,
			Seq:      m.seq.Add(1),
			Now:      triggerTime,
			Watchers: Connections.Count(),
			Tables:   capture(m.tables),
		}
		if err := m.board.Broadcast(frame); err != nil && env.Debug {
			log.Info("Defex monitor [%v] broadcast frame error.", m.board.Name(), err)
		}
	}
	return m.interval
}

// ServeHTTP 处理 HTTP 请求, 主要用于 WebSocket 升级
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Info("Upgrade failure, URI=%s", r.RequestURI, err)
		return
	}
	m.handleWS(conn)
}

// handleWS 对于同一个连接, 读是当前协程, 写是单独协程
func (m *Monitor) handleWS(conn *websocket.Conn) {
	s := newSession(conn)
	if err := m.board.Add(s); err != nil {
		log.Error("Add session to board error.", err)
		_ = conn.Close()
		return
	}
	Connections.Increment()

	defer func() {
		_ = m.board.Remove(s)
		Connections.Decrement()
		_ = s.Close()
		if env.Debug {
			log.Info("Monitor session read goroutine exit, ID=%d", s.ID())
		}
	}()

	// startup write goroutine
	go s.write()

	if env.Debug {
		log.Info("New watcher session established: ID=%d, IP=%s", s.ID(), s.RemoteAddr())
	}

	// 观察者不需要上行数据, 读到错误即退出
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

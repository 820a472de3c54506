package monitor

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/lonng/defex/internal/env"
	"github.com/lonng/defex/internal/log"
)

const (
	sessionWriteBacklog = 16

	statusWorking int32 = 0
	statusClosed  int32 = 1
)

// Session 一个在线观察者的 WebSocket 会话.
// 帧是可丢弃的周期快照, 队列满时直接丢帧而不是阻塞推送方.
type Session struct {
	id            int64           // 会话 ID
	conn          *websocket.Conn // 底层连接
	chDie         chan struct{}   // 关闭信号
	chWrite       chan []byte     // 待推送的帧队列
	writeReady    atomic.Bool     // write 协程是否已经启动
	connCloseOnce sync.Once       // 确保 conn 只关闭一次
	chanCloseOnce sync.Once       // 确保 chDie 和 chWrite 只关闭一次
	state         atomic.Int32    // 会话状态
}

// newSession 构造函数
func newSession(conn *websocket.Conn) *Session {
	s := &Session{
		id:      Connections.SessionID(),
		conn:    conn,
		chDie:   make(chan struct{}),
		chWrite: make(chan []byte, sessionWriteBacklog),
	}
	s.state.Store(statusWorking)
	return s
}

// ID 返回会话 ID
func (s *Session) ID() int64 {
	return s.id
}

// RemoteAddr 返回观察者的网络地址
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Push 将一帧放入推送队列, 队列满时丢弃本帧并返回 ErrBufferExceed
func (s *Session) Push(data []byte) (err error) {
	if s.status() == statusClosed {
		return ErrBrokenPipe
	}
	if len(s.chWrite) >= sessionWriteBacklog {
		return ErrBufferExceed
	}

	// chWrite 可能已被关闭
	defer func() {
		if e := recover(); e != nil {
			err = ErrBrokenPipe
		}
	}()
	s.chWrite <- data
	return
}

// Close 设置关闭状态并发出停止信号; write 协程未就绪时直接关闭底层连接
func (s *Session) Close() error {
	if !s.state.CompareAndSwap(statusWorking, statusClosed) {
		return ErrCloseClosedSession
	}

	if env.Debug {
		log.Info("Monitor session closing, ID=%d, IP=%s", s.id, s.conn.RemoteAddr())
	}

	// 关闭 chan, 发出停止信号
	s.closeChanOnce()

	// write 协程已启动时, 由它在退出前关闭底层连接
	if s.writeReady.Load() {
		return nil
	}
	return s.closeConnOnce()
}

// closeChanOnce 确保 chan 只关闭一次
func (s *Session) closeChanOnce() {
	s.chanCloseOnce.Do(func() {
		close(s.chDie)
		close(s.chWrite)
	})
}

// closeConnOnce 确保 conn 只关闭一次
func (s *Session) closeConnOnce() error {
	var err error
	s.connCloseOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

// status 获取当前状态
func (s *Session) status() int32 {
	return s.state.Load()
}

// write 会话的 write 协程的任务
func (s *Session) write() {
	defer func() {
		// 帧是周期快照, 没有送达价值, 退出时直接丢弃队列中的残帧
		_ = s.Close()
		_ = s.closeConnOnce()
		if env.Debug {
			log.Info("Monitor session write goroutine exit, ID=%d", s.id)
		}
	}()

	// 标记 write 协程已经就绪
	s.writeReady.Store(true)

	for {
		select {
		// 推送任务
		case data, ok := <-s.chWrite:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error("Write frame to watcher error, ID=%d.", s.id, err)
				return
			}

		// 会话关闭
		case <-s.chDie:
			return

		// 引擎退出
		case <-env.DieChan:
			return
		}
	}
}

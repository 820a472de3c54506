package monitor

import (
	"sync"
	"sync/atomic"

	"github.com/lonng/defex/internal/env"
	"github.com/lonng/defex/internal/log"
)

const (
	boardStatusWorking = 0
	boardStatusClosed  = 1
)

// SessionWalkFunc 表示用于遍历会话的函数, 返回 true 时继续遍历, 返回 false 时停止遍历
type SessionWalkFunc func(*Session) bool

// Board 观测板, 管理一组观察者会话并向它们广播帧
type Board struct {
	name     string             // 板名
	status   atomic.Int32       // 板的状态
	sessions map[int64]*Session // 板内的会话
	mu       sync.RWMutex       // 板内的会话锁
}

// NewBoard 构造函数
func NewBoard(name string) *Board {
	b := &Board{
		name:     name,
		sessions: make(map[int64]*Session),
	}
	b.status.Store(boardStatusWorking)
	return b
}

// Name 返回板名
func (b *Board) Name() string {
	return b.name
}

// Add 往板中添加会话
func (b *Board) Add(s *Session) error {
	if b.IsClosed() {
		return ErrClosedBoard
	}

	if env.Debug {
		log.Info("Add session to board %s, ID=%d", b.name, s.ID())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := s.ID()
	_, ok := b.sessions[id]
	if ok {
		return ErrSessionDuplication
	}

	b.sessions[id] = s
	return nil
}

// Remove 从板中移除会话
func (b *Board) Remove(s *Session) error {
	if b.IsClosed() {
		return ErrClosedBoard
	}

	if env.Debug {
		log.Info("Remove session from board %s, ID=%d", b.name, s.ID())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, s.ID())
	return nil
}

// Count 获取板中会话的数量
func (b *Board) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.sessions)
}

// SIDs 获取板中所有会话的 SID 列表
func (b *Board) SIDs() []int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var sids []int64
	for _, s := range b.sessions {
		sids = append(sids, s.ID())
	}
	return sids
}

// Walk 遍历会话, fn 返回 true 时继续遍历, 返回 false 时停止遍历
func (b *Board) Walk(fn SessionWalkFunc) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.sessions {
		if !fn(s) {
			return
		}
	}
}

// Broadcast 将一帧发送给板中的所有会话, 慢消费者丢帧不会中断广播
func (b *Board) Broadcast(v any) error {
	if b.IsClosed() {
		return ErrClosedBoard
	}

	data, err := env.Marshal(v)
	if err != nil {
		return err
	}

	if env.Debug {
		log.Info("Broadcast frame on board %s, Data=%dbytes", b.name, len(data))
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.sessions {
		if err = s.Push(data); err != nil {
			log.Error("Session push frame error, ID=%d.", s.ID(), err)
		}
	}

	return err
}

// IsClosed 板是否关闭
func (b *Board) IsClosed() bool {
	return b.status.Load() == boardStatusClosed
}

// Close 关闭并清空板内所有会话
func (b *Board) Close() error {
	if !b.status.CompareAndSwap(boardStatusWorking, boardStatusClosed) {
		return ErrCloseClosedBoard
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// 关闭所有会话
	for _, s := range b.sessions {
		_ = s.Close()
	}

	// 清空
	b.sessions = make(map[int64]*Session)
	return nil
}

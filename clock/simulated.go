package clock

import "sync/atomic"

// Simulated 实现 Source 接口
var _ Source = (*Simulated)(nil)

// Simulated 手动推进的时钟源, 用于测试和演示场景
type Simulated struct {
	now atomic.Uint32
}

// NewSimulated 构造函数, start 为初始毫秒计数
func NewSimulated(start uint32) *Simulated {
	s := &Simulated{}
	s.now.Store(start)
	return s
}

// Now32 返回当前的毫秒计数
func (s *Simulated) Now32() uint32 {
	return s.now.Load()
}

// Advance 将时钟向前推进 ms 毫秒
func (s *Simulated) Advance(ms uint32) {
	s.now.Add(ms)
}

// Set 将时钟设置到指定的毫秒计数, 允许直接跨过回绕边界
func (s *Simulated) Set(v uint32) {
	s.now.Store(v)
}

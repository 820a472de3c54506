package clock

import "time"

// system 进程级共享的系统时钟源
var system Source = newSystemSource()

// System 返回进程共享的系统时钟源, 毫秒计数从进程启动开始
func System() Source {
	return system
}

// systemSource 实现 Source 接口
var _ Source = (*systemSource)(nil)

// systemSource 基于 time 包单调时钟的毫秒时钟源
type systemSource struct {
	base time.Time
}

// newSystemSource 构造函数
func newSystemSource() *systemSource {
	return &systemSource{base: time.Now()}
}

// Now32 返回进程启动以来的毫秒数, 截断到 32 位后自然回绕
func (s *systemSource) Now32() uint32 {
	return uint32(time.Since(s.base) / time.Millisecond)
}

package executor

import (
	"math/bits"

	"github.com/pingcap/errors"

	"github.com/lonng/defex/clock"
	"github.com/lonng/defex/internal/log"
)

// Table 延迟执行表.
// 固定容量的槽位数组加一张占用位图, 占用位图是槽位是否使用中的唯一依据.
// 表本身不做任何同步, 所有方法必须由同一个协程驱动, 跨协程提交请用 loop.Loop.Execute.
type Table struct {
	name      string       // 表名称, 用于日志
	src       clock.Source // 毫秒时钟源
	slots     []slot       // 槽位数组
	mask      uint32       // 占用位图, 置位表示槽位使用中
	partShift int          // 令牌分区宽度的位移量
	lastCheck uint32       // 上次轮询扫描的时刻
}

// NewTable 构造函数.
// capacity 会被修正到 [2, 32] 内的 2 的幂; src 为 nil 时使用进程系统时钟.
func NewTable(name string, capacity int, src clock.Source) *Table {
	if src == nil {
		src = clock.System()
	}
	fixed := clampCapacity(capacity)
	if fixed != capacity {
		log.Info("Defex table [%v] capacity %v fixed to %v.", name, capacity, fixed)
	}
	return &Table{
		name:      name,
		src:       src,
		slots:     make([]slot, fixed),
		partShift: tokenBits(fixed) - bits.TrailingZeros32(uint32(fixed)),
		lastCheck: src.Now32() - 1, // 保证建表后的第一次轮询不被跳过
	}
}

// Schedule 申请一个空闲槽位, 在 delayMs 毫秒后执行 cb.
// delayMs 为 0 或 cb 为 nil 时不做任何事, 表满时申请失败, 两种情况都返回 InvalidToken.
func (t *Table) Schedule(delayMs uint32, cb Callback, arg any) Token {
	if delayMs == 0 || cb == nil {
		return InvalidToken
	}

	// 从最低位开始找空闲槽位
	free := t.mask
	for i := 0; i < len(t.slots); i++ {
		if free&1 == 0 {
			t.mask |= 1 << i
			s := &t.slots[i]

			// 在所属分区内轮转出新令牌
			s.token = t.rotate(s.token, i)

			// 武装槽位
			s.trigger = t.src.Now32() + delayMs
			s.cb = cb
			s.arg = arg
			return s.token
		}
		free >>= 1
	}

	// 没有可用槽位
	return InvalidToken
}

// Extend 将 token 对应的延迟执行重新定时到当前时刻之后 delayMs 毫秒.
// delayMs 为 0, 令牌无效, 槽位空闲或令牌不匹配时返回 false.
func (t *Table) Extend(token Token, delayMs uint32) bool {
	if delayMs == 0 || token == InvalidToken {
		return false
	}

	// 从令牌反推槽位下标, 伪造的令牌可能越界
	i := int(uint32(token) >> t.partShift)
	if i >= len(t.slots) || t.mask&(1<<i) == 0 {
		return false
	}
	s := &t.slots[i]
	if s.cb == nil || s.token != token {
		return false
	}

	// 以当前时刻为基准重新定时
	s.trigger = t.src.Now32() + delayMs
	return true
}

// Cancel 取消 token 对应的延迟执行并立即释放槽位.
// 令牌无效, 槽位空闲或令牌不匹配时返回 false, 同一令牌的二次取消也会返回 false.
func (t *Table) Cancel(token Token) bool {
	if token == InvalidToken {
		return false
	}
	i := int(uint32(token) >> t.partShift)
	if i >= len(t.slots) || t.mask&(1<<i) == 0 {
		return false
	}
	if t.slots[i].token != token {
		return false
	}

	t.release(i)
	return true
}

// Poll 执行一次协作式轮询, 同一毫秒内的重复调用会被跳过.
// 到期回调返回正数时, 下次触发时刻以本次计划触发时刻为基准累加, 不受执行耗时影响;
// 返回 0 时释放槽位.
func (t *Table) Poll() {
	now := t.src.Now32()

	// 每毫秒最多扫描一次
	if clock.Diff(now, t.lastCheck) <= 0 {
		return
	}
	t.lastCheck = now

	// 扫描轮询开始时已占用的槽位, 期间新申请的槽位留到下一轮
	free := t.mask
	for i := 0; free != 0; i++ {
		bit := free & 1
		free >>= 1
		if bit == 0 {
			continue
		}

		// 前面的回调可能释放或取消了本槽位, 以即时状态为准
		if t.mask&(1<<i) == 0 {
			continue
		}
		s := &t.slots[i]
		if s.cb == nil || s.token == InvalidToken {
			continue
		}

		// 未到期
		if clock.Diff(s.trigger, now) > 0 {
			continue
		}

		// 执行回调并决定续期还是释放.
		// 回调内部可能取消自身甚至重新申请到同一槽位, 只有令牌未变时才动槽位.
		token := s.token
		delay := t.fire(token, s.cb, s.trigger, s.arg)
		if delay > 0 {
			if t.mask&(1<<i) != 0 && s.cb != nil && s.token == token {
				s.trigger += delay
			}
			continue
		}
		if t.mask&(1<<i) != 0 && s.token == token {
			t.release(i)
		}
	}
}

// fire 执行到期回调并捕获 panic, panic 视同返回 0 释放槽位
func (t *Table) fire(token Token, cb Callback, trigger uint32, arg any) (delay uint32) {
	defer func() {
		if err := recover(); err != nil {
			delay = 0
			log.Error("Defex table [%v] execute callback token-%v error.", t.name, uint32(token), errors.Errorf("%v", err))
		}
	}()
	return cb(trigger, arg)
}

// rotate 轮转出槽位 i 的下一个令牌, 始终落在该槽位的分区内且跳过 InvalidToken
func (t *Table) rotate(prev Token, i int) Token {
	start := Token(uint32(i) << t.partShift)
	last := start + Token(uint32(1)<<t.partShift) - 1
	next := prev + 1
	if next < start || next >= last {
		next = start
		if next == InvalidToken {
			next = InvalidToken + 1
		}
	}
	return next
}

// release 释放槽位 i, 清除占用位和回调, 令牌字段保留用于后续轮转
func (t *Table) release(i int) {
	t.mask &^= 1 << i
	s := &t.slots[i]
	s.cb = nil
	s.arg = nil
}

//====

// Name 返回表名称
func (t *Table) Name() string {
	return t.name
}

// Cap 返回修正后的槽位容量
func (t *Table) Cap() int {
	return len(t.slots)
}

// Active 返回使用中的槽位数量
func (t *Table) Active() int {
	return bits.OnesCount32(t.mask)
}

// Snapshot 返回所有使用中槽位的只读快照, 按槽位下标升序
func (t *Table) Snapshot() []SlotState {
	states := make([]SlotState, 0, bits.OnesCount32(t.mask))
	for i := range t.slots {
		if t.mask&(1<<i) == 0 {
			continue
		}
		s := &t.slots[i]
		states = append(states, SlotState{
			Index:       i,
			Token:       uint32(s.token),
			TriggerTime: s.trigger,
			Armed:       s.cb != nil,
		})
	}
	return states
}

//====

// clampCapacity 将容量修正到 [2, 32] 范围内的 2 的幂, 非法值向上取整
func clampCapacity(capacity int) int {
	if capacity < 2 {
		return 4
	}
	if capacity > 32 {
		return 32
	}
	if capacity&(capacity-1) == 0 {
		return capacity
	}
	switch {
	case capacity < 4:
		return 4
	case capacity < 8:
		return 8
	case capacity < 16:
		return 16
	default:
		return 32
	}
}

// tokenBits 根据容量决定令牌空间宽度, 容量翻倍到 16 槽以上时换用 32 位空间
func tokenBits(capacity int) int {
	switch {
	case capacity <= 8:
		return 8
	case capacity <= 16:
		return 16
	default:
		return 32
	}
}

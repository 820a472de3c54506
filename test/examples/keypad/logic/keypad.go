package logic

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/lonng/defex"
	"github.com/lonng/defex/internal/env"
	"github.com/lonng/defex/internal/log"
	"github.com/lonng/defex/loop"
)

// 按键时序参数(毫秒)
const (
	debounceMs    = 5    // 消抖窗口
	repeatDelayMs = 250  // 长按进入自动重复前的等待
	repeatRateMs  = 50   // 自动重复的间隔
	backlightMs   = 3000 // 背光空闲超时
	blinkMs       = 1000 // 状态灯闪烁周期
)

// Key 一个模拟按键
type Key struct {
	name     string      // 键名
	pressed  bool        // 原始电平是否按下
	settled  bool        // 消抖后的稳定状态
	debounce defex.Token // 消抖定时的令牌
	repeat   defex.Token // 自动重复的令牌
}

// Keypad 模拟键盘, 随机产生按下/抬起事件, 用延迟执行实现消抖/自动重复/背光超时.
// 对表的所有操作都通过 lp.Execute 投递到轮询协程, 回调天然运行在同一个协程内.
type Keypad struct {
	lp        *loop.Loop    // 驱动全局表的轮询循环
	keys      []*Key        // 按键
	backlight defex.Token   // 背光超时的令牌
	lit       bool          // 背光是否点亮
	blink     defex.Token   // 状态灯作业的令牌
	led       bool          // 状态灯电平
	chDie     chan struct{} // 关闭信号
	closed    atomic.Bool   // 是否已停止
	rnd       *rand.Rand    // 事件噪声源
}

// NewKeypad 构造函数
func NewKeypad(lp *loop.Loop) *Keypad {
	keys := make([]*Key, 0, 6)
	for _, name := range []string{"W", "A", "S", "D", "SPACE", "ENTER"} {
		keys = append(keys, &Key{name: name})
	}
	return &Keypad{
		lp:    lp,
		keys:  keys,
		chDie: make(chan struct{}),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start 启动事件模拟, 状态灯在核心表上常驻闪烁
func (k *Keypad) Start() {
	k.lp.Execute(func() {
		k.blink = defex.Core.Schedule(blinkMs, k.onBlink, nil)
	})
	go k.run()
}

// Stop 停止事件模拟并取消状态灯作业
func (k *Keypad) Stop() {
	if !k.closed.CompareAndSwap(false, true) {
		return
	}
	close(k.chDie)
	k.lp.Execute(func() {
		if k.blink != defex.InvalidToken {
			defex.Core.Cancel(k.blink)
			k.blink = defex.InvalidToken
		}
	})
}

// run 随机翻转按键电平
func (k *Keypad) run() {
	for {
		select {
		case <-k.chDie:
			return
		case <-time.After(time.Duration(50+k.rnd.Intn(400)) * time.Millisecond):
			key := k.keys[k.rnd.Intn(len(k.keys))]
			k.lp.Execute(func() {
				k.toggle(key)
			})
		}
	}
}

// toggle 翻转一个按键的原始电平, 抖动由消抖定时过滤
func (k *Keypad) toggle(key *Key) {
	key.pressed = !key.pressed
	k.touch()

	// 已有消抖定时则顺延, 否则新开一个
	if key.debounce != defex.InvalidToken && defex.Extend(key.debounce, debounceMs) {
		return
	}
	key.debounce = defex.Schedule(debounceMs, k.onSettle, key)
	if key.debounce == defex.InvalidToken {
		log.Error("Keypad schedule debounce failed, table is full. key: %s", key.name)
	}
}

// onSettle 消抖窗口结束, 采纳当前电平为稳定状态
func (k *Keypad) onSettle(_ uint32, arg any) uint32 {
	key := arg.(*Key)
	key.debounce = defex.InvalidToken
	if key.settled == key.pressed {
		return 0
	}
	key.settled = key.pressed

	if key.settled {
		k.emit(key)
		// 长按进入自动重复
		key.repeat = defex.Schedule(repeatDelayMs, k.onRepeat, key)
	} else if key.repeat != defex.InvalidToken {
		defex.Cancel(key.repeat)
		key.repeat = defex.InvalidToken
	}
	return 0
}

// onRepeat 自动重复作业, 返回间隔让节拍相对上次触发对齐
func (k *Keypad) onRepeat(_ uint32, arg any) uint32 {
	key := arg.(*Key)
	if !key.settled {
		key.repeat = defex.InvalidToken
		return 0
	}
	k.emit(key)
	return repeatRateMs
}

// emit 输出一次按键
func (k *Keypad) emit(key *Key) {
	if env.Debug {
		log.Info("Key pressed: %s", key.name)
	}
}

// touch 任何活动都点亮背光并重置空闲超时
func (k *Keypad) touch() {
	if !k.lit {
		k.lit = true
		if env.Debug {
			log.Info("Backlight on")
		}
	}
	if k.backlight != defex.InvalidToken && defex.Extend(k.backlight, backlightMs) {
		return
	}
	k.backlight = defex.Schedule(backlightMs, k.onBacklightOff, nil)
}

// onBacklightOff 空闲超时, 熄灭背光
func (k *Keypad) onBacklightOff(_ uint32, _ any) uint32 {
	k.backlight = defex.InvalidToken
	k.lit = false
	if env.Debug {
		log.Info("Backlight off")
	}
	return 0
}

// onBlink 状态灯翻转, 常驻重复作业
func (k *Keypad) onBlink(_ uint32, _ any) uint32 {
	k.led = !k.led
	return blinkMs
}

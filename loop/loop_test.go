package loop

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lonng/defex/executor"
)

// TestLoop 测试轮询循环
func TestLoop(t *testing.T) {
	t.Run("New Loop", func(t *testing.T) {
		lp := NewLoop("test-loop", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Start()
		defer lp.Close()

		assert.NotNil(t, lp)
		assert.Equal(t, "test-loop", lp.Name())
		assert.Len(t, lp.Tables(), 1)
		assert.Eventually(t, func() bool {
			return lp.State() == StateRunning
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Invalid Arguments", func(t *testing.T) {
		// tick 和表都不允许为空
		assert.Panics(t, func() {
			NewLoop("test", 0, executor.NewTable("test", 8, nil))
		})
		assert.Panics(t, func() {
			NewLoop("test", time.Millisecond)
		})
	})

	t.Run("Execute Task", func(t *testing.T) {
		lp := NewLoop("test", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Start()
		defer lp.Close()

		var executed atomic.Bool
		lp.Execute(func() {
			executed.Store(true)
		})

		// 等待任务执行
		assert.Eventually(t, func() bool {
			return executed.Load()
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Execute Nil Task", func(t *testing.T) {
		lp := NewLoop("test", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Start()
		defer lp.Close()

		// 应该不会panic
		lp.Execute(nil)
		time.Sleep(50 * time.Millisecond)
	})

	t.Run("Execute Panic Task", func(t *testing.T) {
		lp := NewLoop("test", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Start()
		defer lp.Close()

		var executed atomic.Bool
		lp.Execute(func() {
			executed.Store(true)
			panic("test panic")
		})

		// 应该不会导致循环崩溃
		assert.Eventually(t, func() bool {
			return executed.Load()
		}, time.Second, 10*time.Millisecond)

		// 循环应该仍然可以处理新任务
		var afterPanicExecuted atomic.Bool
		lp.Execute(func() {
			afterPanicExecuted.Store(true)
		})

		assert.Eventually(t, func() bool {
			return afterPanicExecuted.Load()
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Close Loop", func(t *testing.T) {
		lp := NewLoop("test", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Close()
		assert.Equal(t, StateCreated, lp.State())

		lp.Start()
		assert.Equal(t, StateRunning, lp.State())

		lp.Close()
		assert.Equal(t, StateClosed, lp.State())

		// 重复关闭应该安全
		lp.Close()
		assert.Equal(t, StateClosed, lp.State())
	})
}

// TestLoop_DriveTables 测试循环驱动延迟执行表
func TestLoop_DriveTables(t *testing.T) {
	t.Run("Fire Deferred Callback", func(t *testing.T) {
		tb := executor.NewTable("test", 8, nil)
		lp := NewLoop("test", time.Millisecond, tb)

		var fired atomic.Bool
		tok := tb.Schedule(20, func(uint32, any) uint32 {
			fired.Store(true)
			return 0
		}, nil)
		assert.NotEqual(t, executor.InvalidToken, tok)

		lp.Start()
		defer lp.Close()

		assert.Eventually(t, func() bool {
			return fired.Load()
		}, time.Second, 10*time.Millisecond)

		// 执行完后槽位已释放
		assert.Eventually(t, func() bool {
			return tb.Active() == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Repeat Until Stopped", func(t *testing.T) {
		tb := executor.NewTable("test", 8, nil)
		lp := NewLoop("test", time.Millisecond, tb)

		var count atomic.Int32
		tb.Schedule(10, func(uint32, any) uint32 {
			if count.Add(1) >= 3 {
				return 0
			}
			return 10
		}, nil)

		lp.Start()
		defer lp.Close()

		assert.Eventually(t, func() bool {
			return count.Load() == 3
		}, time.Second, 10*time.Millisecond)

		// 再等待一段时间, 确保不会执行第4次
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(3), count.Load())
	})

	t.Run("Drive Multiple Tables", func(t *testing.T) {
		tb1 := executor.NewTable("first", 8, nil)
		tb2 := executor.NewTable("second", 8, nil)
		lp := NewLoop("test", time.Millisecond, tb1, tb2)

		var fired1, fired2 atomic.Bool
		tb1.Schedule(10, func(uint32, any) uint32 {
			fired1.Store(true)
			return 0
		}, nil)
		tb2.Schedule(10, func(uint32, any) uint32 {
			fired2.Store(true)
			return 0
		}, nil)

		lp.Start()
		defer lp.Close()

		assert.Eventually(t, func() bool {
			return fired1.Load() && fired2.Load()
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Schedule Via Execute", func(t *testing.T) {
		tb := executor.NewTable("test", 8, nil)
		lp := NewLoop("test", time.Millisecond, tb)
		lp.Start()
		defer lp.Close()

		// 跨协程的表操作通过 Execute 投递到轮询协程
		var fired atomic.Bool
		ok := lp.Execute(func() {
			tb.Schedule(10, func(uint32, any) uint32 {
				fired.Store(true)
				return 0
			}, nil)
		})
		assert.True(t, ok)

		assert.Eventually(t, func() bool {
			return fired.Load()
		}, time.Second, 10*time.Millisecond)
	})
}

// TestLoop_EdgeCases 边界测试
func TestLoop_EdgeCases(t *testing.T) {
	t.Run("Loop start twice", func(t *testing.T) {
		lp := NewLoop("edge-test", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Start()
		defer lp.Close()

		time.Sleep(50 * time.Millisecond)
		num := runtime.NumGoroutine()

		lp.Start()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, num, runtime.NumGoroutine())
	})

	t.Run("Loop execute after closed", func(t *testing.T) {
		lp := NewLoop("edge-test", time.Millisecond, executor.NewTable("test", 8, nil))
		lp.Start()

		var taskCount atomic.Int32
		lp.Execute(func() {
			taskCount.Add(1)
		})
		assert.Eventually(t, func() bool {
			return taskCount.Load() == 1
		}, 5*time.Second, 1*time.Millisecond)

		lp.Close()

		// 再次投递任务, 应该不会panic, 并且不会执行
		ok := lp.Execute(func() {
			taskCount.Add(1)
		})
		assert.False(t, ok)
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, int32(1), taskCount.Load())
	})

	t.Run("Multiple Loops", func(t *testing.T) {
		lp1 := NewLoop("test1", time.Millisecond, executor.NewTable("t1", 8, nil))
		lp2 := NewLoop("test2", time.Millisecond, executor.NewTable("t2", 8, nil))
		lp1.Start()
		lp2.Start()
		defer lp1.Close()
		defer lp2.Close()

		var count1, count2 atomic.Int32

		lp1.Execute(func() { count1.Add(1) })
		lp2.Execute(func() { count2.Add(1) })

		assert.Eventually(t, func() bool {
			return count1.Load() == 1 && count2.Load() == 1
		}, time.Second, 10*time.Millisecond)
	})
}

// TestLoop_Integration 集成测试
func TestLoop_Integration(t *testing.T) {
	t.Run("Mixed Tasks and Callbacks", func(t *testing.T) {
		tb := executor.NewTable("test", 8, nil)
		lp := NewLoop("integration-test", time.Millisecond, tb)

		var taskCount atomic.Int32
		var fireCount atomic.Int32

		tb.Schedule(10, func(uint32, any) uint32 {
			if fireCount.Add(1) >= 5 {
				return 0
			}
			return 10
		}, nil)

		lp.Start()
		defer lp.Close()

		// 添加普通任务
		for i := 0; i < 10; i++ {
			lp.Execute(func() {
				taskCount.Add(1)
			})
		}

		// 等待所有任务和回调完成
		assert.Eventually(t, func() bool {
			return taskCount.Load() == 10 && fireCount.Load() == 5
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("High Concurrency Stress Test", func(t *testing.T) {
		tb := executor.NewTable("test", 8, nil)
		lp := NewLoop("stress-test", time.Millisecond, tb)
		lp.Start()
		defer lp.Close()

		const numGoroutines = 100
		const numTasksPerGoroutine = 50

		var totalExecuted atomic.Int32
		var wg sync.WaitGroup

		// 并发投递任务
		wg.Add(numGoroutines)
		for i := 0; i < numGoroutines; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < numTasksPerGoroutine; j++ {
					lp.Execute(func() {
						totalExecuted.Add(1)
					})
				}
			}()
		}
		wg.Wait()

		assert.Eventually(t, func() bool {
			return totalExecuted.Load() == numGoroutines*numTasksPerGoroutine
		}, 5*time.Second, 50*time.Millisecond)
	})
}

// BenchmarkLoop 性能测试
func BenchmarkLoop(b *testing.B) {
	lp := NewLoop("benchmark", time.Millisecond, executor.NewTable("test", 8, nil))
	lp.Start()
	defer lp.Close()

	b.Run("Execute Tasks", func(b *testing.B) {
		var counter atomic.Int64

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				lp.Execute(func() {
					counter.Add(1)
				})
			}
		})
	})
}

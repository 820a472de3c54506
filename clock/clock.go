package clock

// Source 单调毫秒时钟源接口. 计数宽度为 32 位, 在 2^32 毫秒(约 49.7 天)后回绕,
// 所有跨时刻的比较都必须通过 Diff/After 做有符号差值判断, 不能直接比较大小.
type Source interface {
	// Now32 返回当前的单调毫秒计数
	Now32() uint32
}

// Diff 计算 a-b 的有符号毫秒差值, 跨越回绕边界时结果依然正确
func Diff(a, b uint32) int32 {
	return int32(a - b)
}

// After 判断时刻 a 是否严格晚于时刻 b
func After(a, b uint32) bool {
	return Diff(a, b) > 0
}

// Elapsed 返回从时刻 since 到当前经过的毫秒数
func Elapsed(src Source, since uint32) uint32 {
	return src.Now32() - since
}

package executor

// Token 延迟执行令牌.
// 每个槽位独占一段连续的令牌分区, 同一槽位被反复申请时在分区内轮转取值,
// 拿着旧令牌的调用方不会误操作已被重新分配的槽位.
type Token uint32

// InvalidToken 保留的无效令牌, 表示申请失败或操作目标不存在
const InvalidToken Token = 0

// Callback 到期回调函数类型.
// triggerTime 是本次计划触发的时刻而不是实际执行时刻, arg 是 Schedule 时传入的参数.
// 返回 0 表示执行完毕并释放槽位; 返回正数表示以本次计划触发时刻为基准,
// 延迟对应毫秒后再次执行.
type Callback func(triggerTime uint32, arg any) uint32

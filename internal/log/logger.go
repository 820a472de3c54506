package log

// Logger 日志接口, 通过 SetLogger 可以替换默认实现
type Logger interface {
	Info(args ...any)
	Error(args ...any)
	Fatal(args ...any)
}

// 对外公开的日志函数
var (
	Info  func(args ...any)
	Error func(args ...any)
	Fatal func(args ...any)
)

func init() {
	SetLogger(NewConsoleLogger())
}

// SetLogger 重写默认的日志实现
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	Info = logger.Info
	Error = logger.Error
	Fatal = logger.Fatal
}

package log

import (
	"log"
	"os"
)

// ConsoleLogger 实现 Logger 接口
var _ Logger = (*ConsoleLogger)(nil)

// ConsoleLogger 输出到标准输出的默认日志实现
type ConsoleLogger log.Logger

// NewConsoleLogger 构造函数
func NewConsoleLogger() *ConsoleLogger {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile)
	return (*ConsoleLogger)(logger)
}

// Info 记录普通日志
func (c *ConsoleLogger) Info(args ...any) {
	_ = (*log.Logger)(c).Output(2, FormatArgs(args...))
}

// Error 记录错误日志
func (c *ConsoleLogger) Error(args ...any) {
	_ = (*log.Logger)(c).Output(2, FormatArgs(args...))
}

// Fatal 记录致命错误日志并退出进程
func (c *ConsoleLogger) Fatal(args ...any) {
	_ = (*log.Logger)(c).Output(2, FormatArgs(args...))
	os.Exit(1)
}

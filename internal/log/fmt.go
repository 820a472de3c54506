package log

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Format 将 args 依次填入 format 中的占位符, 仅支持 %%, %d, %f, %s, %t, %v, %q, %T 几种常见动词.
// 规则:
// 1. 占位符按出现顺序与参数一一对应, 未识别的动词原样保留但消耗对应参数;
// 2. 参数多于占位符时, 剩余参数以空格拼接追加在末尾;
// 3. 占位符多于参数时, 未被替换的占位符原样保留;
// 4. 最后一个参数为 error 类型时, 以 " - 错误信息" 的形式追加在结果末尾.
//
// 示例:
//
//	Format("hello %v", "world")                    // "hello world"
//	Format("slot %d token %v", 3, 257)             // "slot 3 token 257"
//	Format("no placeholders", 1, 2)                // "no placeholders 1 2"
//	Format("%v %v", 1)                             // "1 %v"
//	Format("progress: %d%%", 80)                   // "progress: 80%"
//	Format("poll failed", errors.New("closed"))    // "poll failed - closed"
func Format(format string, args ...any) string {
	//提取末尾的 error
	var trailingErr error
	if n := len(args); n > 0 {
		if e, ok := args[n-1].(error); ok {
			trailingErr = e
			args = args[:n-1]
		}
	}

	// 格式化字符串, 预估平均每个 arg 约 8 个字符
	builder := strings.Builder{}
	builder.Grow(len(format) + len(args)*8)
	argIdx := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			builder.WriteByte(c)
			continue
		}

		// 单独一个 % 在末尾, 原样保留
		if i+1 >= len(format) {
			builder.WriteByte('%')
			break
		}

		// 读取动词, 连续两个 %% 转义为一个 %
		i++
		verb := format[i]
		if verb == '%' {
			builder.WriteByte('%')
			continue
		}

		// 参数不足, 占位符原样保留
		if argIdx >= len(args) {
			builder.WriteByte('%')
			builder.WriteByte(verb)
			continue
		}

		arg := args[argIdx]
		argIdx++
		switch verb {
		case 'd', 'f', 's', 't', 'v':
			builder.WriteString(toString(arg))
		case 'q':
			builder.WriteString(strconv.Quote(toString(arg)))
		case 'T':
			builder.WriteString(toTypeString(arg))
		default:
			builder.WriteByte('%')
			builder.WriteByte(verb)
		}
	}

	// 剩余的参数
	for _, arg := range args[argIdx:] {
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(toString(arg))
	}

	// 末尾 error
	if trailingErr != nil {
		builder.WriteString(" - ")
		builder.WriteString(trailingErr.Error())
	}

	return builder.String()
}

// FormatArgs 格式化参数
func FormatArgs(args ...any) string {
	switch len(args) {
	//没有参数的时候直接返回空字符串
	case 0:
		return ""
	//只有一个参数的时候不处理转义符了, 直接原样返回
	case 1:
		return toString(args[0])
	//多个参数格式化
	default:
		return Format(toString(args[0]), args[1:]...)
	}
}

// toTypeString 获取值的类型字符串
func toTypeString(val any) string {
	if val == nil {
		return "<nil>"
	}
	if typ := reflect.TypeOf(val); typ != nil {
		return typ.String()
	}
	return "<unknown type>"
}

// toString 转换为字符串, 对令牌和毫秒时间常用的整型做了快速路径
func toString(val any) string {
	switch v := val.(type) {
	case int:
		return strconv.Itoa(v)
	case *int:
		if v == nil {
			return "<nil>"
		}
		return strconv.Itoa(*v)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return v
	case *string:
		if v == nil {
			return "<nil>"
		}
		return *v
	default:
		return fmt.Sprint(val)
	}
}

package env

import (
	"time"

	"github.com/lonng/defex/serialize"
	"github.com/lonng/defex/serialize/json"
)

//goland:noinspection GoVarAndConstTypeMayBeOmitted,GoCommentStart
var (
	Debug         bool                 = false                //调试模式
	DieChan       chan bool            = make(chan bool)      //等待停止的 chan
	Serializer    serialize.Serializer = json.NewSerializer() //序列化器, 对象和字节转换
	PollPrecision time.Duration        = time.Millisecond     //轮询循环的走时精度
	//执行器
	DefaultCapacity int = 16 //普通延迟执行表的槽位容量
	CoreCapacity    int = 8  //核心延迟执行表的槽位容量
)

// 初始化对外暴漏的函数
func init() {
	serialize.Marshal = Marshal
	serialize.Unmarshal = Unmarshal
}

// Marshal 序列化数据
func Marshal(v any) ([]byte, error) {
	switch raw := v.(type) {
	case []byte:
		return raw, nil
	case string:
		return []byte(raw), nil
	case *string:
		if raw == nil {
			return []byte{}, nil
		}
		return []byte(*raw), nil
	default:
		return Serializer.Marshal(v)
	}
}

// Unmarshal 反序列化数据
func Unmarshal(data []byte, v any) error {
	switch raw := v.(type) {
	case *[]byte:
		*raw = data
		return nil
	case *string:
		*raw = string(data)
		return nil
	case **string:
		s := string(data)
		*raw = &s
		return nil
	default:
		return Serializer.Unmarshal(data, v)
	}
}

// Close 关闭 DieChan 通道, 以便其他组件可以监听到
func Close() {
	defer func() {
		recover()
	}()
	close(DieChan)
}

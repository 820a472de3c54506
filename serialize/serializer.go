package serialize

// 对外公开序列化函数, 内部不要使用
var (
	Marshal   func(any) ([]byte, error)
	Unmarshal func([]byte, any) error
)

type (
	// Marshaler 序列化接口
	Marshaler interface {
		Marshal(any) ([]byte, error)
	}

	// Unmarshaler 反序列化接口
	Unmarshaler interface {
		Unmarshal([]byte, any) error
	}

	// Serializer 组合 Marshal 和 Unmarshal 两个基本方法的接口
	Serializer interface {
		Marshaler
		Unmarshaler
	}
)

package json

import (
	"github.com/sugawarayuuta/sonnet"

	"github.com/lonng/defex/serialize"
)

// Serializer 实现 serialize.Serializer 接口
var _ serialize.Serializer = (*Serializer)(nil)

// Serializer JSON 序列化器
type Serializer struct{}

// NewSerializer 构造函数
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal 将对象编码为 JSON 字节
func (s *Serializer) Marshal(v any) ([]byte, error) {
	return sonnet.Marshal(v)
}

// Unmarshal 将 JSON 字节解码到对象
func (s *Serializer) Unmarshal(data []byte, v any) error {
	return sonnet.Unmarshal(data, v)
}

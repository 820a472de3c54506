package json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lonng/defex/serialize"
	"github.com/lonng/defex/serialize/json"
)

type tableInfo struct {
	Name   string   `json:"name"`
	Cap    int      `json:"cap"`
	Tokens []uint32 `json:"tokens"`
}

// TestSerializer 测试 JSON 序列化器
func TestSerializer(t *testing.T) {
	s := json.NewSerializer()
	assert.Implements(t, (*serialize.Serializer)(nil), s)

	src := &tableInfo{Name: "default", Cap: 16, Tokens: []uint32{1, 4096, 8192}}
	data, err := s.Marshal(src)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	dst := &tableInfo{}
	assert.NoError(t, s.Unmarshal(data, dst))
	assert.Equal(t, src, dst)

	// 非法输入
	assert.Error(t, s.Unmarshal([]byte("{"), dst))
}

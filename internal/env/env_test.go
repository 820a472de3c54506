package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMarshal 测试序列化的快速路径
func TestMarshal(t *testing.T) {
	t.Run("Bytes Passthrough", func(t *testing.T) {
		raw := []byte("raw-bytes")
		data, err := Marshal(raw)
		assert.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("String", func(t *testing.T) {
		data, err := Marshal("hello")
		assert.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("String Pointer", func(t *testing.T) {
		s := "hello"
		data, err := Marshal(&s)
		assert.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)

		var nilStr *string
		data, err = Marshal(nilStr)
		assert.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Struct Via Serializer", func(t *testing.T) {
		data, err := Marshal(struct {
			Token uint32 `json:"token"`
		}{Token: 42})
		assert.NoError(t, err)
		assert.Equal(t, `{"token":42}`, string(data))
	})
}

// TestUnmarshal 测试反序列化的快速路径
func TestUnmarshal(t *testing.T) {
	t.Run("Bytes Passthrough", func(t *testing.T) {
		var raw []byte
		assert.NoError(t, Unmarshal([]byte("raw-bytes"), &raw))
		assert.Equal(t, []byte("raw-bytes"), raw)
	})

	t.Run("String", func(t *testing.T) {
		var s string
		assert.NoError(t, Unmarshal([]byte("hello"), &s))
		assert.Equal(t, "hello", s)
	})

	t.Run("String Pointer", func(t *testing.T) {
		var s *string
		assert.NoError(t, Unmarshal([]byte("hello"), &s))
		assert.NotNil(t, s)
		assert.Equal(t, "hello", *s)
	})

	t.Run("Struct Via Serializer", func(t *testing.T) {
		var v struct {
			Token uint32 `json:"token"`
		}
		assert.NoError(t, Unmarshal([]byte(`{"token":42}`), &v))
		assert.Equal(t, uint32(42), v.Token)
	})
}

// TestClose 测试重复关闭不会panic
func TestClose(t *testing.T) {
	assert.NotPanics(t, func() {
		Close()
		Close()
	})
}

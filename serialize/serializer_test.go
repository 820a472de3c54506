package serialize_test

import (
	"testing"

	"github.com/lonng/defex"
	"github.com/lonng/defex/serialize"
	"github.com/stretchr/testify/assert"
)

func TestSerialize(t *testing.T) {
	_ = defex.VERSION
	assert.NotNil(t, serialize.Marshal)
	assert.NotNil(t, serialize.Unmarshal)
}

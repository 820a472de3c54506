package monitor

import (
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

// Connections 默认连接服务
var Connections Connection = newSnowflakeConnection()

// Connection 连接服务接口
type Connection interface {
	// Increment 增加连接数
	Increment()

	// Decrement 减少连接数
	Decrement()

	// Count 返回当前连接数
	Count() int64

	// SessionID 返回新的会话ID
	SessionID() int64
}

// snowflakeConnection 基于雪花算法的连接服务
type snowflakeConnection struct {
	count atomic.Int64
	node  *snowflake.Node
}

// newSnowflakeConnection 构造函数
func newSnowflakeConnection() *snowflakeConnection {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return &snowflakeConnection{node: node}
}

// Increment 增加连接数
func (c *snowflakeConnection) Increment() {
	c.count.Add(1)
}

// Decrement 减少连接数
func (c *snowflakeConnection) Decrement() {
	c.count.Add(-1)
}

// Count 返回当前连接数
func (c *snowflakeConnection) Count() int64 {
	return c.count.Load()
}

// SessionID 返回新的会话ID
func (c *snowflakeConnection) SessionID() int64 {
	return c.node.Generate().Int64()
}

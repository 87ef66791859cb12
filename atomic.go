package groovebox

import "sync/atomic"

// atomicCounter is a wait-free int64 counter, used for the engine's
// device-open failure count.
type atomicCounter struct {
	v int64
}

func (c *atomicCounter) add(n int64) { atomic.AddInt64(&c.v, n) }
func (c *atomicCounter) get() int64  { return atomic.LoadInt64(&c.v) }

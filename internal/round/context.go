package round

import (
	"sync"
	"time"
)

// Context holds the number of the current round and when it started.
// The log handler reads it from its own goroutine, hence the lock.
type Context struct {
	mu        sync.RWMutex
	number    int
	startedAt time.Time
	lastEnd   string
}

// NewContext creates a Context before the first round has started.
func NewContext() *Context {
	return &Context{}
}

// Number returns the current round number, 0 before the first round.
func (c *Context) Number() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.number
}

// StartedAt returns the wall time the current round began.
func (c *Context) StartedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startedAt
}

// LastEndMessage returns the message of the most recent round end.
func (c *Context) LastEndMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastEnd
}

// Begin advances to the next round.
func (c *Context) Begin(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.number++
	c.startedAt = now
	return c.number
}

// End records how the current round finished.
func (c *Context) End(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastEnd = message
}

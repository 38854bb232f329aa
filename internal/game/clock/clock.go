// Package clock provides a re-armable one-shot timer for game deadlines.
package clock

import (
	"sync"
	"time"
)

// Timer is a cancelable one-shot. Arming replaces any pending shot, so a
// phase can keep exactly one deadline alive. Callbacks fire on their own
// goroutine; they must re-check game state under the room lock because a
// Stop can race an already-fired shot.
type Timer struct {
	mu sync.Mutex
	t  *time.Timer
}

// Arm schedules fn after d, canceling any previously armed shot.
func (c *Timer) Arm(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t != nil {
		c.t.Stop()
	}
	c.t = time.AfterFunc(d, fn)
}

// Stop cancels the pending shot, if any.
func (c *Timer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t != nil {
		c.t.Stop()
		c.t = nil
	}
}

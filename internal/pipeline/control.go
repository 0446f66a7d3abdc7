package pipeline

import (
	"context"
	"sync"
	"time"
)

// Control carries the run control flags. Pause and Resume toggle a
// cooperative hold that the runner honors at its suspension points;
// Stop is sticky and always wins over pause.
type Control struct {
	mu      sync.Mutex
	paused  bool
	stopped bool
}

func NewControl() *Control {
	return &Control{}
}

// Reset clears both flags so the token can be reused for a new run.
func (c *Control) Reset() {
	c.mu.Lock()
	c.paused = false
	c.stopped = false
	c.mu.Unlock()
}

func (c *Control) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *Control) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

func (c *Control) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Control) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// WaitWhilePaused blocks while the run is paused, polling on a short
// ticker. It returns false when the run should terminate instead of
// continuing, either because Stop was requested or the context ended.
func (c *Control) WaitWhilePaused(ctx context.Context) bool {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		c.mu.Lock()
		stopped, paused := c.stopped, c.paused
		c.mu.Unlock()
		if stopped {
			return false
		}
		if !paused {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

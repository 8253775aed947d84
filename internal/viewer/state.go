package viewer

import (
	"sync"

	"github.com/openmined/healthview/internal/healthsdk"
)

// statusCell owns the current health status. It starts unset and is only
// ever replaced, never cleared.
type statusCell struct {
	mu     sync.RWMutex
	status healthsdk.Status
}

func (c *statusCell) Get() healthsdk.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *statusCell) Set(status healthsdk.Status) {
	if !status.IsSet() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

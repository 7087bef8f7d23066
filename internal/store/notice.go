package store

import (
	"sync"
	"time"
)

// noticeTTL is how long a success message stays visible.
const noticeTTL = 3 * time.Second

// notice is a transient message that clears itself after a fixed delay.
// Setting a new message cancels the pending clear and restarts the timer.
type notice struct {
	mu    sync.Mutex
	msg   string
	timer *time.Timer
	ttl   time.Duration
}

func newNotice(ttl time.Duration) *notice {
	if ttl <= 0 {
		ttl = noticeTTL
	}
	return &notice{ttl: ttl}
}

func (n *notice) set(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.msg = msg
	n.timer = time.AfterFunc(n.ttl, n.clear)
}

func (n *notice) get() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg
}

func (n *notice) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.msg = ""
}

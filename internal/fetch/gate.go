package fetch

import (
	"context"
	"sync"
	"time"
)

// Gate is a stop-the-world switch shared by download workers. While it is
// closed every Wait blocks; it reopens by itself once the pause elapses.
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
	pauses int
}

func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Wait blocks until the gate is open or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		g.mu.Lock()
		g.cond.Broadcast()
		g.mu.Unlock()
	})
	defer stop()

	g.mu.Lock()
	defer g.mu.Unlock()
	for g.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.cond.Wait()
	}
	return ctx.Err()
}

// Pause closes the gate for d. It reports false, and changes nothing, when
// the gate is already closed: the running pause covers the caller too.
func (g *Gate) Pause(d time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.closed = true
	g.pauses++
	time.AfterFunc(d, g.Open)
	return true
}

func (g *Gate) Open() {
	g.mu.Lock()
	g.closed = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

func (g *Gate) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Pauses counts how many times the gate has been closed.
func (g *Gate) Pauses() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pauses
}

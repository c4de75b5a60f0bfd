package worker

import "sync/atomic"

// runGuard admits at most one holder at a time. It never blocks: a caller
// that loses the race is told so and is expected to give up.
type runGuard struct {
	running atomic.Bool
}

// TryAcquire takes the guard and reports whether it succeeded.
func (g *runGuard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release frees the guard.
func (g *runGuard) Release() {
	g.running.Store(false)
}

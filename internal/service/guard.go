package service

// RequestGuard is a single-slot token: at most one holder at a time.
// TryAcquire never blocks.
type RequestGuard struct {
	slot chan struct{}
}

func NewRequestGuard() *RequestGuard {
	return &RequestGuard{slot: make(chan struct{}, 1)}
}

// TryAcquire takes the slot if it is free and reports whether it did.
func (g *RequestGuard) TryAcquire() bool {
	select {
	case g.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the slot. Releasing a free guard is a no-op.
func (g *RequestGuard) Release() {
	select {
	case <-g.slot:
	default:
	}
}

// Busy reports whether the slot is currently held.
func (g *RequestGuard) Busy() bool {
	return len(g.slot) == 1
}

package service

import "sync"

// RunToken identifies one started aggregation run.
type RunToken struct {
	ID      uint64
	Address string
}

// RunTracker keys in-flight aggregation runs so a completed run can be
// discarded when a later-started run superseded it. In-flight calls are not
// cancelled; their results simply must never overwrite a newer run's state.
type RunTracker struct {
	mu  sync.Mutex
	seq uint64
}

// NewRunTracker creates a new RunTracker.
func NewRunTracker() *RunTracker {
	return &RunTracker{}
}

// Begin marks the address as the current aggregation target and returns the
// token for this run; any previously issued token is superseded.
func (t *RunTracker) Begin(address string) RunToken {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	return RunToken{ID: t.seq, Address: address}
}

// Current reports whether the run identified by token has not been
// superseded by a later-started run.
func (t *RunTracker) Current(token RunToken) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token.ID == t.seq
}

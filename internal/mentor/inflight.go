package mentor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Inflight tracks at most one running request per key. Starting a new request
// for a key cancels the one before it, so late answers can be recognised and
// dropped.
type Inflight struct {
	mu      sync.Mutex
	running map[string]task
}

type task struct {
	id     string
	cancel context.CancelFunc
}

func NewInflight() *Inflight {
	return &Inflight{running: make(map[string]task)}
}

// Start cancels any request running under key and returns the id and context
// of the new one.
func (f *Inflight) Start(parent context.Context, key string) (string, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.running[key]; ok {
		prev.cancel()
	}
	f.running[key] = task{id: id, cancel: cancel}
	return id, ctx
}

// Done releases request id and reports whether it was still the current
// request for key. Results of superseded requests should be discarded.
func (f *Inflight) Done(key, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.running[key]
	if !ok || cur.id != id {
		return false
	}
	cur.cancel()
	delete(f.running, key)
	return true
}

// Cancel aborts whatever runs under key.
func (f *Inflight) Cancel(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.running[key]; ok {
		cur.cancel()
		delete(f.running, key)
	}
}

// Pending reports whether a request is running under key.
func (f *Inflight) Pending(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.running[key]
	return ok
}

package client

import (
	"errors"
	"sync"
)

// ErrInFlight is returned when an action is triggered while a previous call of
// the same action has not finished. Callers retry after the first completes.
var ErrInFlight = errors.New("action already in flight")

// inflightGuard enforces at-most-one-in-flight per named action.
type inflightGuard struct {
	mu     *sync.Mutex
	active map[string]struct{}
}

func newInflightGuard() inflightGuard {
	return inflightGuard{mu: &sync.Mutex{}, active: make(map[string]struct{})}
}

// begin claims the action, or fails with ErrInFlight.
func (g inflightGuard) begin(action string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[action]; busy {
		return ErrInFlight
	}
	g.active[action] = struct{}{}
	return nil
}

func (g inflightGuard) end(action string) {
	g.mu.Lock()
	delete(g.active, action)
	g.mu.Unlock()
}

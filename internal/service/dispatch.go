package service

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/spiffcs/codewatch/internal/log"
)

// Dispatcher is the context observers are notified on.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// SerialDispatcher runs functions one at a time in the order they were
// dispatched. The goroutine that dispatches onto an idle dispatcher runs
// the queue until it is empty, so a lone Dispatch call returns only after
// fn has run. A Dispatch from inside a running function is queued behind
// it.
type SerialDispatcher struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// NewSerialDispatcher creates an idle dispatcher.
func NewSerialDispatcher() *SerialDispatcher {
	return &SerialDispatcher{}
}

// Dispatch implements Dispatcher.
func (d *SerialDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true

	for len(d.queue) > 0 {
		next := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		run(next)

		d.mu.Lock()
	}
	d.running = false
	d.mu.Unlock()
}

// run calls fn, keeping a panicking observer from stalling the queue.
func run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("observer panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	fn()
}

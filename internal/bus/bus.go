// Package bus routes decoded server messages to the request waiting for
// them.
//
// Responses carry no request id, only the name of the command they
// answer, so the bus keys listeners by that tag and allows at most one
// listener per tag at a time.  Every listener fires at most once.
package bus

import (
	"fmt"
	"sync"

	ncerr "pavlovrcon/internal/errors"
	"pavlovrcon/internal/frame"
	"pavlovrcon/util"
)

// Handler receives the message matching a registration.
type Handler func(frame.Message)

// Registration is one single-use listener.
type Registration struct {
	bus  *Bus
	tag  string
	fn   Handler
	done chan struct{}
	once sync.Once
}

// Tag returns the tag the registration listens on.
func (r *Registration) Tag() string { return r.tag }

// Done is closed once the registration has been consumed by a message
// or cancelled.
func (r *Registration) Done() <-chan struct{} { return r.done }

// Cancel removes the registration if it is still installed.  It reports
// whether this call removed it.  Cancelling twice, or after the
// listener already fired, is a no-op.
func (r *Registration) Cancel() bool {
	b := r.bus
	b.mu.Lock()
	cur, ok := b.listeners[r.tag]
	if ok && cur == r {
		delete(b.listeners, r.tag)
	}
	b.mu.Unlock()

	if ok && cur == r {
		r.release()
		return true
	}
	return false
}

func (r *Registration) release() {
	r.once.Do(func() { close(r.done) })
}

// Bus maps tags to pending listeners.  All methods are safe for
// concurrent use.
type Bus struct {
	logger *util.Logger

	mu        sync.Mutex
	listeners map[string]*Registration
}

// New returns an empty bus.
func New(logger *util.Logger) *Bus {
	return &Bus{
		logger:    logger,
		listeners: make(map[string]*Registration),
	}
}

// RegisterOnce installs fn as the single listener for tag.  If another
// listener is already installed it returns ErrTagBusy and leaves the
// existing one untouched.
func (b *Bus) RegisterOnce(tag string, fn Handler) (*Registration, error) {
	r := &Registration{bus: b, tag: tag, fn: fn, done: make(chan struct{})}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.listeners[tag]; busy {
		return nil, fmt.Errorf("%w: %q", ncerr.ErrTagBusy, tag)
	}
	b.listeners[tag] = r
	return r, nil
}

// Released returns a channel that is closed when tag has no listener.
// If tag is free the returned channel is already closed.
func (b *Bus) Released(tag string) <-chan struct{} {
	b.mu.Lock()
	r, ok := b.listeners[tag]
	b.mu.Unlock()
	if ok {
		return r.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Dispatch hands msg to the listener registered under tag and removes
// it.  It reports whether a listener consumed the message; when none is
// registered the message is dropped.  A panicking handler is recovered
// and logged so the read loop keeps running.
func (b *Bus) Dispatch(tag string, msg frame.Message) (consumed bool) {
	b.mu.Lock()
	r, ok := b.listeners[tag]
	if ok {
		delete(b.listeners, tag)
	}
	b.mu.Unlock()

	if !ok {
		b.logger.Debug("bus: no listener for %q, dropping", tag)
		return false
	}

	// The message is consumed once its listener is picked, even if the
	// listener panics.
	consumed = true
	defer r.release()
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("bus: listener for %q panicked: %v", tag, p)
		}
	}()
	r.fn(msg)
	return consumed
}

// Remove drops whatever listener is registered under tag.  Removing a
// tag with no listener is a no-op.
func (b *Bus) Remove(tag string) {
	b.mu.Lock()
	r, ok := b.listeners[tag]
	if ok {
		delete(b.listeners, tag)
	}
	b.mu.Unlock()
	if ok {
		r.release()
	}
}

// Len returns the number of listeners registered under tag (0 or 1).
func (b *Bus) Len(tag string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[tag]; ok {
		return 1
	}
	return 0
}

// Pending returns the total number of registered listeners.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

package adapter

import (
	"context"
	"fmt"
	"sync"
)

// Task is the handle of an asynchronous back-end operation. Err is only
// meaningful once Done is closed.
type Task interface {
	Done() <-chan struct{}
	Err() error
}

// Future is a Task completed by whoever started the work
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewFuture returns an unresolved Future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Completed returns a Future that is already resolved with err
func Completed(err error) *Future {
	f := NewFuture()
	f.Resolve(err)
	return f
}

// Go runs fn on a new goroutine and resolves the returned Future with its
// result. A panic in fn resolves the Future with an error.
func Go(fn func() error) *Future {
	f := NewFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Resolve(fmt.Errorf("back-end task panicked: %v", r))
			}
		}()
		f.Resolve(fn())
	}()
	return f
}

// Resolve completes the future. Only the first call has an effect.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done implements Task
func (f *Future) Done() <-chan struct{} { return f.done }

// Err implements Task
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until t completes or ctx is done
func Wait(ctx context.Context, t Task) error {
	select {
	case <-t.Done():
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settled reports whether t already completed and, if so, its error
func settled(t Task) (bool, error) {
	select {
	case <-t.Done():
		return true, t.Err()
	default:
		return false, nil
	}
}

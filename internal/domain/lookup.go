package domain

import (
	"context"
	"fmt"
)

// Lookup is the reply of a best-effort lookup: Found(value) or NotFound.
type Lookup[T any] struct {
	value T
	found bool
}

// Found wraps a resolved value.
func Found[T any](v T) Lookup[T] {
	return Lookup[T]{value: v, found: true}
}

// NotFound is the empty reply.
func NotFound[T any]() Lookup[T] {
	return Lookup[T]{}
}

// Get returns the value and whether it was found.
func (l Lookup[T]) Get() (T, bool) {
	return l.value, l.found
}

func (l Lookup[T]) String() string {
	if !l.found {
		return "NotFound"
	}
	return fmt.Sprintf("Found(%v)", l.value)
}

// Task is a single-reply future for a lookup. Exactly one Lookup is produced.
type Task[T any] struct {
	done   chan struct{}
	result Lookup[T]
}

// StartTask runs fn on its own goroutine. A panic in fn is recovered and
// reported as NotFound so a task can never fail its awaiter.
func StartTask[T any](ctx context.Context, fn func(context.Context) Lookup[T]) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.result = NotFound[T]()
			}
		}()
		t.result = fn(ctx)
	}()
	return t
}

// Resolved returns a task that has already replied with l.
func Resolved[T any](l Lookup[T]) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), result: l}
	close(t.done)
	return t
}

// Done is closed once the reply is available.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the reply arrives. If ctx ends first the caller stops
// waiting and gets NotFound; the task itself keeps running until its own
// timeout.
func (t *Task[T]) Await(ctx context.Context) Lookup[T] {
	select {
	case <-t.done:
		return t.result
	case <-ctx.Done():
		return NotFound[T]()
	}
}

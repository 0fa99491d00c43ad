// Package pipe provides small typed operators for composing single-shot
// computations. The scoring pipeline assembles its stages from these so the
// operator graph is checked at compile time; nothing here is reflective.
package pipe

import "context"

// Step is a deferred computation producing T or an error. A Step runs once;
// composing operators wrap the underlying function without executing it.
type Step[T any] struct {
	run func() (T, error)
}

// New wraps a fallible computation.
func New[T any](fn func() (T, error)) Step[T] {
	return Step[T]{run: fn}
}

// Of lifts a ready value into a Step.
func Of[T any](v T) Step[T] {
	return Step[T]{run: func() (T, error) { return v, nil }}
}

// Fail lifts an error into a Step.
func Fail[T any](err error) Step[T] {
	return Step[T]{run: func() (T, error) {
		var zero T
		return zero, err
	}}
}

// Run executes the composed computation.
func (s Step[T]) Run() (T, error) { return s.run() }

// Map applies an infallible transform. Upstream errors short-circuit.
func Map[I, O any](s Step[I], fn func(I) O) Step[O] {
	return Step[O]{run: func() (O, error) {
		in, err := s.run()
		if err != nil {
			var zero O
			return zero, err
		}
		return fn(in), nil
	}}
}

// TryMap applies a fallible transform. Upstream errors short-circuit.
func TryMap[I, O any](s Step[I], fn func(I) (O, error)) Step[O] {
	return Step[O]{run: func() (O, error) {
		in, err := s.run()
		if err != nil {
			var zero O
			return zero, err
		}
		return fn(in)
	}}
}

// Guard passes the value through when pred holds and fails with err
// otherwise.
func Guard[T any](s Step[T], pred func(T) bool, err error) Step[T] {
	return Step[T]{run: func() (T, error) {
		in, e := s.run()
		if e != nil {
			return in, e
		}
		if !pred(in) {
			var zero T
			return zero, err
		}
		return in, nil
	}}
}

// Filter keeps the slice elements satisfying pred.
func Filter[T any](s Step[[]T], pred func(T) bool) Step[[]T] {
	return Map(s, func(in []T) []T {
		out := make([]T, 0, len(in))
		for _, e := range in {
			if pred(e) {
				out = append(out, e)
			}
		}
		return out
	})
}

// FanOut feeds the upstream value to every branch and collects the outputs
// in branch order. The first branch error fails the whole step.
func FanOut[I, O any](s Step[I], branches ...func(I) (O, error)) Step[[]O] {
	return Step[[]O]{run: func() ([]O, error) {
		in, err := s.run()
		if err != nil {
			return nil, err
		}
		out := make([]O, len(branches))
		for i, branch := range branches {
			o, err := branch(in)
			if err != nil {
				return nil, err
			}
			out[i] = o
		}
		return out, nil
	}}
}

// Task is a computation running in its own goroutine.
type Task[T any] struct {
	done chan outcome[T]
}

type outcome[T any] struct {
	val T
	err error
}

// Spawn starts fn on a goroutine immediately.
func Spawn[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan outcome[T], 1)}
	go func() {
		v, err := fn()
		t.done <- outcome[T]{val: v, err: err}
	}()
	return t
}

// SpawnStep starts a Step on a goroutine immediately.
func SpawnStep[T any](s Step[T]) *Task[T] {
	return Spawn(s.Run)
}

// Await blocks until the task finishes or ctx is cancelled. The spawned
// goroutine always runs to completion; cancellation only abandons the wait.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case out := <-t.done:
		return out.val, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

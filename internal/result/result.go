package result

import (
	"fmt"
	"strings"
)

// Result carries either a stage payload or the human-readable errors that
// explain why the stage failed. A failed Result never carries data.
type Result[T any] struct {
	data   T
	errors []string
	failed bool
}

// Success wraps a payload.
func Success[T any](data T) Result[T] {
	return Result[T]{data: data}
}

// Failure builds a failed Result. Blank messages are dropped; a Failure with no
// usable message still reports "unknown error" so callers always have text.
func Failure[T any](errs ...string) Result[T] {
	cleaned := make([]string, 0, len(errs))
	for _, msg := range errs {
		if msg = strings.TrimSpace(msg); msg != "" {
			cleaned = append(cleaned, msg)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, "unknown error")
	}
	return Result[T]{errors: cleaned, failed: true}
}

// Failuref formats a single failure message.
func Failuref[T any](format string, args ...any) Result[T] {
	return Failure[T](fmt.Sprintf(format, args...))
}

// OK reports whether the Result is a Success.
func (r Result[T]) OK() bool {
	return !r.failed
}

// Failed reports whether the Result is a Failure.
func (r Result[T]) Failed() bool {
	return r.failed
}

// Data returns the payload. It is the zero value for a Failure.
func (r Result[T]) Data() T {
	return r.data
}

// Unwrap returns the payload and whether the Result succeeded.
func (r Result[T]) Unwrap() (T, bool) {
	return r.data, !r.failed
}

// Errors returns a copy of the failure messages.
func (r Result[T]) Errors() []string {
	if len(r.errors) == 0 {
		return nil
	}
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

// Error joins the failure messages; it is empty for a Success.
func (r Result[T]) Error() string {
	return strings.Join(r.errors, "; ")
}

// Then chains a same-typed step. A Failure is returned unchanged.
func (r Result[T]) Then(fn func(T) Result[T]) Result[T] {
	if r.failed {
		return r
	}
	return fn(r.data)
}

// AndThen chains a step that may change the payload type. On a Failure the
// step is not called and the same errors are carried into the new type.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.failed {
		return Result[U]{errors: r.errors, failed: true}
	}
	return fn(r.data)
}

// Map transforms a successful payload.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.failed {
		return Result[U]{errors: r.errors, failed: true}
	}
	return Success(fn(r.data))
}

// FromErrors returns Success(data) when errs is empty and a Failure otherwise.
// It is the bridge for checks that collect plain error lists.
func FromErrors[T any](data T, errs []string) Result[T] {
	if len(errs) == 0 {
		return Success(data)
	}
	return Failure[T](errs...)
}

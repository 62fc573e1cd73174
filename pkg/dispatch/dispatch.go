// Package dispatch is the user-facing surface of specialized-dispatch.
//
// It provides two things:
//
//   - Expand, the compile-time marker that dispatchgen replaces with
//     generated code, and
//   - Table, a runtime type-tag dispatch table for callers who prefer the
//     same selection semantics without code generation.
//
// Go has no compile-time specialization mechanism, so both forms resolve
// the winning arm with one runtime type-identity check: the generated code
// through a type switch, the Table through a map lookup. Unlike the
// compile-time original this is not a zero-cost abstraction — the
// indirection is small and constant, but it exists. The selection rule is
// unchanged: an arm registered for the argument's exact concrete type
// wins, anything else falls back to the default.
package dispatch

import (
	"fmt"
	"reflect"
)

// Expand marks a dispatch invocation for expansion. The spec string uses
// the invocation grammar, usually as a raw string literal:
//
//	result := dispatch.Expand[string](`
//		arg,
//		Arg -> string,
//		default fn <T>(_: T) => "default value",
//		fn (v: uint8) => fmt.Sprintf("u8: %d", v),
//		fn (v: uint16) => fmt.Sprintf("u16: %d", v),
//	`)
//
// Running dispatchgen over the file replaces the call with the generated
// dispatch expression; the marker itself never executes in generated
// builds. Calling it unexpanded panics, which is deliberate: it means the
// generation step was skipped.
func Expand[R any](spec string) R {
	panic("dispatch.Expand: invocation was not expanded; run dispatchgen over this file")
}

// Table is the runtime rendition of one dispatch spec: behaviors keyed by
// concrete argument type, with a mandatory default. A Table is built once
// with a fixed set of arms and is safe for concurrent use afterwards; it
// intentionally has no way to add arms after construction, matching the
// arms-fixed-at-call-site rule of the expanded form.
type Table[R any] struct {
	arms     map[reflect.Type]func(arg any, extras ...any) R
	fallback func(arg any, extras ...any) R
}

// NewTable builds a table around the default behavior.
func NewTable[R any](fallback func(arg any, extras ...any) R) *Table[R] {
	return &Table[R]{
		arms:     make(map[reflect.Type]func(arg any, extras ...any) R),
		fallback: fallback,
	}
}

// On registers the behavior for the concrete type K, the runtime
// counterpart of one specialization arm. Registering the same key twice is
// an error, never a silent first-match-wins.
func On[K any, R any](t *Table[R], arm func(v K, extras ...any) R) error {
	key := reflect.TypeOf((*K)(nil)).Elem()
	if _, dup := t.arms[key]; dup {
		return fmt.Errorf("dispatch: duplicate specialization for type %s", key)
	}
	t.arms[key] = func(arg any, extras ...any) R {
		return arm(arg.(K), extras...)
	}
	return nil
}

// Call selects and runs the arm for arg's concrete type, passing the
// extras through positionally, and falls back to the default on a miss.
func (t *Table[R]) Call(arg any, extras ...any) R {
	if arm, ok := t.arms[reflect.TypeOf(arg)]; ok {
		return arm(arg, extras...)
	}
	return t.fallback(arg, extras...)
}

// Len reports the number of registered specializations.
func (t *Table[R]) Len() int { return len(t.arms) }

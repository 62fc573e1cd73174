package dispatch_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ozars/specialized-dispatch/pkg/dispatch"
)

func numericTable(t *testing.T) *dispatch.Table[string] {
	t.Helper()
	tbl := dispatch.NewTable(func(arg any, extras ...any) string {
		return "default value"
	})
	if err := dispatch.On(tbl, func(v uint8, extras ...any) string {
		return fmt.Sprintf("u8: %d", v)
	}); err != nil {
		t.Fatal(err)
	}
	if err := dispatch.On(tbl, func(v uint16, extras ...any) string {
		return fmt.Sprintf("u16: %d", v)
	}); err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestTableSelection(t *testing.T) {
	tbl := numericTable(t)

	tests := []struct {
		arg  any
		want string
	}{
		{uint8(5), "u8: 5"},
		{uint16(10), "u16: 10"},
		{1.5, "default value"},
		{"text", "default value"},
		{int(5), "default value"},
	}
	for _, tt := range tests {
		if got := tbl.Call(tt.arg); got != tt.want {
			t.Errorf("Call(%v) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestSelectionByExactType(t *testing.T) {
	type myByte uint8
	tbl := numericTable(t)

	// A defined type with a registered underlying type is still a miss.
	if got := tbl.Call(myByte(5)); got != "default value" {
		t.Errorf("Call(myByte) = %q, want the default", got)
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	tbl := numericTable(t)

	err := dispatch.On(tbl, func(v uint8, extras ...any) string { return "again" })
	if err == nil {
		t.Fatal("second uint8 registration succeeded")
	}
	if !strings.Contains(err.Error(), "uint8") {
		t.Errorf("error = %q, want it to name the type", err)
	}
	// The original arm stays in place.
	if got := tbl.Call(uint8(1)); got != "u8: 1" {
		t.Errorf("Call(uint8) = %q after rejected re-registration", got)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestExtrasPassedInOrder(t *testing.T) {
	tbl := dispatch.NewTable(func(arg any, extras ...any) string {
		return fmt.Sprintf("%v %v %v", arg, extras[0], extras[1])
	})
	if err := dispatch.On(tbl, func(v int, extras ...any) string {
		return fmt.Sprintf("%d:%v:%v", v, extras[0], extras[1])
	}); err != nil {
		t.Fatal(err)
	}

	if got, want := tbl.Call(7, "a", "b"), "7:a:b"; got != want {
		t.Errorf("Call = %q, want %q", got, want)
	}
	if got, want := tbl.Call("x", "a", "b"), "x a b"; got != want {
		t.Errorf("Call = %q, want %q", got, want)
	}
}

func TestInterfaceValuedArms(t *testing.T) {
	tbl := dispatch.NewTable(func(arg any, extras ...any) int { return -1 })
	if err := dispatch.On(tbl, func(v error, extras ...any) int { return 1 }); err != nil {
		t.Fatal(err)
	}

	// Dispatch keys on the concrete type, so a concrete error value does
	// not match an arm registered for the error interface.
	if got := tbl.Call(fmt.Errorf("boom")); got != -1 {
		t.Errorf("Call(concrete error) = %d, want the default", got)
	}
}

func TestUnexpandedMarkerPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expand did not panic")
		}
		if !strings.Contains(fmt.Sprint(r), "dispatchgen") {
			t.Errorf("panic %v does not point at the generator", r)
		}
	}()
	dispatch.Expand[string]("v, T -> string, fn <T>(_: T) => \"d\",")
}

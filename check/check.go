// Package check provides typed assertions for harness tests. Every helper
// reports through T.Fail at the caller's location and stops the test on the
// first violation.
package check

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/ethereum-optimism/infra/op-harness/runner"
)

const (
	// Float32Epsilon is the absolute tolerance of EqualFloat32.
	Float32Epsilon float32 = 1e-6
	// Float64Epsilon is the absolute tolerance of EqualFloat64.
	Float64Epsilon float64 = 1e-9
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

func True(t *runner.T, condition bool) {
	if !condition {
		t.Fail("Condition is false", runner.Caller(1))
	}
}

func False(t *runner.T, condition bool) {
	if condition {
		t.Fail("Condition is true", runner.Caller(1))
	}
}

// Nil fails unless v is nil or a typed nil pointer, map, slice, channel, func
// or interface.
func Nil(t *runner.T, v any) {
	if !isNil(v) {
		t.Fail("Pointer is not null", runner.Caller(1))
	}
}

func NotNil(t *runner.T, v any) {
	if isNil(v) {
		t.Fail("Pointer is null", runner.Caller(1))
	}
}

// Equal compares two integers after conversion to int.
func Equal[N Integer](t *runner.T, expected, actual N) {
	if int(expected) != int(actual) {
		t.Fail(fmt.Sprintf("Expected %d, but got %d", int(expected), int(actual)), runner.Caller(1))
	}
}

func EqualInt[N Signed](t *runner.T, expected, actual N) {
	if expected != actual {
		t.Fail(fmt.Sprintf("Expected %d, but got %d", expected, actual), runner.Caller(1))
	}
}

func EqualUint[N Unsigned](t *runner.T, expected, actual N) {
	if expected != actual {
		t.Fail(fmt.Sprintf("Expected %d, but got %d", expected, actual), runner.Caller(1))
	}
}

// EqualHex compares unsigned integers and reports them in hexadecimal, zero
// padded to the width of N.
func EqualHex[N Unsigned](t *runner.T, expected, actual N) {
	if expected != actual {
		t.Fail(hexMessage(expected, actual), runner.Caller(1))
	}
}

// EqualFloat32 passes when the values differ by at most Float32Epsilon.
func EqualFloat32(t *runner.T, expected, actual float32) {
	if !withinFloat32(expected, actual) {
		t.Fail(fmt.Sprintf("Expected %.6f, but got %.6f", expected, actual), runner.Caller(1))
	}
}

// EqualFloat64 passes when the values differ by at most Float64Epsilon.
func EqualFloat64(t *runner.T, expected, actual float64) {
	if !withinFloat64(expected, actual) {
		t.Fail(fmt.Sprintf("Expected %.9f, but got %.9f", expected, actual), runner.Caller(1))
	}
}

func hexMessage[N Unsigned](expected, actual N) string {
	width := int(unsafe.Sizeof(expected)) * 2
	return fmt.Sprintf("Expected 0x%0*X, but got 0x%0*X", width, uint64(expected), width, uint64(actual))
}

func withinFloat32(expected, actual float32) bool {
	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	return !(diff > Float32Epsilon)
}

func withinFloat64(expected, actual float64) bool {
	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	return !(diff > Float64Epsilon)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

package vm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ArturMroz/clox/internal/config"
)

func TestClockNative(t *testing.T) {
	machine, stdout, stderr := newTestVM(config.DefaultOptions())
	defer machine.Free()

	if err := machine.Interpret(`
var start = clock();
var elapsed = clock() - start;
print elapsed >= 0;
print start >= 0;
`); err != nil {
		t.Fatalf("interpret: %v\nstderr: %s", err, stderr.String())
	}
	if got := stdout.String(); got != "true\ntrue\n" {
		t.Errorf("got %q, want %q", got, "true\ntrue\n")
	}
}

func TestNativeArityChecked(t *testing.T) {
	expectRuntimeError(t, "clock(1);", "Expected 0 arguments but got 1.")
	expectRuntimeError(t, "sleep();", "Expected 1 arguments but got 0.")
}

func TestUUIDNative(t *testing.T) {
	machine, stdout, stderr := newTestVM(config.DefaultOptions())
	defer machine.Free()

	if err := machine.Interpret(`
var a = uuid();
var b = uuid();
print a == b;
`); err != nil {
		t.Fatalf("interpret: %v\nstderr: %s", err, stderr.String())
	}
	if got := stdout.String(); got != "false\n" {
		t.Errorf("two uuids compared equal: %q", got)
	}

	stdout.Reset()
	if err := machine.Interpret("print uuid();"); err != nil {
		t.Fatalf("interpret: %v", err)
	}
	id := strings.TrimSuffix(stdout.String(), "\n")
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("doesn't look like a uuid: %q", id)
	}
}

func TestGetenvNative(t *testing.T) {
	t.Setenv("CLOX_TEST_VALUE", "from-env")

	machine, stdout, stderr := newTestVM(config.DefaultOptions())
	defer machine.Free()

	if err := machine.Interpret(`
print getenv("CLOX_TEST_VALUE");
print getenv("CLOX_TEST_VALUE_THAT_DOES_NOT_EXIST");
`); err != nil {
		t.Fatalf("interpret: %v\nstderr: %s", err, stderr.String())
	}
	if got := stdout.String(); got != "from-env\nnil\n" {
		t.Errorf("got %q, want %q", got, "from-env\nnil\n")
	}

	expectRuntimeError(t, "getenv(42);", "getenv: argument must be a string")
}

func TestSleepNativeValidation(t *testing.T) {
	expectRuntimeError(t, `sleep("long");`, "sleep: argument must be a number")
	expectRuntimeError(t, "sleep(-1);", "sleep: argument must not be negative")
	expectOutput(t, `sleep(0); print "woke";`, "woke\n")
}

func TestNativeErrorProducesTrace(t *testing.T) {
	machine, _, stderr := newTestVM(config.DefaultOptions())
	defer machine.Free()

	err := machine.Interpret(`
fun callsBadNative() { sleep(-5); }
callsBadNative();
`)
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected runtime error, got %v", err)
	}

	got := stderr.String()
	if !strings.Contains(got, "sleep: argument must not be negative") {
		t.Errorf("missing native error message:\n%s", got)
	}
	if !strings.Contains(got, "in callsBadNative()") {
		t.Errorf("missing frame trace:\n%s", got)
	}
}

func TestDefineNativeCustom(t *testing.T) {
	machine, stdout, stderr := newTestVM(config.DefaultOptions())
	defer machine.Free()

	machine.DefineNative("double", 1, func(args []Value) (Value, error) {
		if !args[0].IsNumber() {
			return NilVal(), fmt.Errorf("double: argument must be a number")
		}
		return NumberVal(args[0].AsNumber() * 2), nil
	})

	if err := machine.Interpret("print double(21);"); err != nil {
		t.Fatalf("interpret: %v\nstderr: %s", err, stderr.String())
	}
	if got := stdout.String(); got != "42\n" {
		t.Errorf("got %q, want %q", got, "42\n")
	}
}

func TestNativePrintsAsNative(t *testing.T) {
	expectOutput(t, "print clock;", "<native fn>\n")
}

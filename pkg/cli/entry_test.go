package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ozars/specialized-dispatch/pkg/cli"
)

const exprSpec = `v,
	T -> string,
	fn <T>(_: T) => "default",
	fn (v: uint8) => "u8",
`

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = cli.Run(args, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func TestExprMode(t *testing.T) {
	code, stdout, stderr := run(t, "-e", exprSpec)

	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"specializedDispatch_", "case uint8:", "[T]"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestExprModePrintSpec(t *testing.T) {
	code, stdout, stderr := run(t, "-e", exprSpec, "-print-spec")

	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"DispatchExpr", "Type: T -> string", "DefaultArm", "SpecializationArm"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestExprModeReportsDiagnostics(t *testing.T) {
	code, _, stderr := run(t, "-no-color", "-e", `v, T -> string, fn (v: uint8) => "u8",`)

	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "[P003]") {
		t.Errorf("stderr missing the missing-default code:\n%s", stderr)
	}
	if strings.Contains(stderr, "\x1b[") {
		t.Errorf("-no-color left escape codes in:\n%s", stderr)
	}
}

func TestWriteMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host.go")
	src := `package main

import "github.com/ozars/specialized-dispatch/pkg/dispatch"

func describe(v any) string {
	return dispatch.Expand[string](` + "`" + exprSpec + "`" + `)
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := run(t, "-w", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "expanded 1 invocation(s)") {
		t.Errorf("stdout = %q", stdout)
	}

	rewritten, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(rewritten), "dispatch.Expand") {
		t.Errorf("marker survived -w:\n%s", rewritten)
	}
	generated, err := os.ReadFile(filepath.Join(dir, "host_dispatch.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(generated), "case uint8:") {
		t.Errorf("generated file missing dispatch cases:\n%s", generated)
	}
}

func TestOutputOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host.go")
	src := `package main

import "github.com/ozars/specialized-dispatch/pkg/dispatch"

func describe(v any) string {
	return dispatch.Expand[string](` + "`" + exprSpec + "`" + `)
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "generated.go")
	code, _, stderr := run(t, "-w", "-o", out, path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("generated file not at -o path: %v", err)
	}

	code, _, _ = run(t, "-o", out, path, path)
	if code != 2 {
		t.Errorf("exit = %d, want 2 for -o with multiple files", code)
	}
}

func TestNoInputs(t *testing.T) {
	code, _, stderr := run(t)
	if code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
	if !strings.Contains(stderr, "no input files") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestConfigFlag(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "dispatchgen.yaml")
	if err := os.WriteFile(cfgPath, []byte("color: sometimes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := run(t, "-config", cfgPath, "-e", exprSpec)
	if code != 1 {
		t.Errorf("exit = %d, want 1 for a bad config", code)
	}
	if !strings.Contains(stderr, "color") {
		t.Errorf("stderr = %q", stderr)
	}
}

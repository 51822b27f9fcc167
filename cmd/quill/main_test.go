package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/interpreter-go/pkg/config"
	"quill/interpreter-go/pkg/fixture"
	"quill/interpreter-go/pkg/interpreter"
)

const countdown = `
- {type: VarDecl, name: n, init: 3}
- type: While
  cond: {type: Binary, op: ">", left: {type: Var, name: n}, right: 0}
  body:
    - {type: Call, callee: {type: Var, name: print}, args: [{type: Var, name: n}]}
    - {type: Assign, target: {type: Var, name: n}, op: "-", value: 1}
- {type: Binary, op: "*", left: 6, right: 7}
`

func writeFixture(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvOptimize, "")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCommand(t *testing.T) {
	path := writeFixture(t, "countdown.yml", countdown)
	code, stdout, stderr := runCLI(t, "run", "-result", path)
	if code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr)
	}
	if stdout != "3\n2\n1\n42\n" {
		t.Fatalf("unexpected output %q", stdout)
	}

	code, stdout, _ = runCLI(t, path)
	if code != 0 || stdout != "3\n2\n1\n" {
		t.Fatalf("bare fixture argument should run it, got %d %q", code, stdout)
	}
}

func TestRunReportsFaults(t *testing.T) {
	path := writeFixture(t, "div.yml", `[{type: Binary, op: "/", left: 1, right: 0}]`)
	code, _, stderr := runCLI(t, "run", path)
	if code != 1 || !strings.Contains(stderr, "fault") {
		t.Fatalf("expected a reported fault, got %d %q", code, stderr)
	}

	path = writeFixture(t, "unbound.yml", `[{type: Var, name: ghost}]`)
	code, _, stderr = runCLI(t, "run", path)
	if code != 1 || !strings.Contains(stderr, "ghost") {
		t.Fatalf("expected a bind error naming ghost, got %d %q", code, stderr)
	}
}

func TestCheckCommand(t *testing.T) {
	bad := writeFixture(t, "bad.yml", `[{type: If, cond: 1, then: {type: Break}}]`)
	code, _, stderr := runCLI(t, "check", bad)
	if code != 1 || !strings.Contains(stderr, "error:") {
		t.Fatalf("expected check errors, got %d %q", code, stderr)
	}
	good := writeFixture(t, "good.yml", countdown)
	if code, _, stderr := runCLI(t, "check", good); code != 0 {
		t.Fatalf("expected a clean check, got %d %q", code, stderr)
	}
}

func TestPrintCommand(t *testing.T) {
	path := writeFixture(t, "p.yml", `[{type: VarDecl, name: x, init: {type: Binary, op: "+", left: 1, right: 2}}]`)
	code, stdout, stderr := runCLI(t, "print", path)
	if code != 0 || stdout != "var x = 1 + 2;\n" {
		t.Fatalf("unexpected print result %d %q %q", code, stdout, stderr)
	}

	golden := writeFixture(t, "p.golden", "var x = 1 + 3;\n")
	code, _, stderr = runCLI(t, "print", "-check", golden, path)
	if code != 1 || !strings.Contains(stderr, "- var x = 1 + 3;") || !strings.Contains(stderr, "+ var x = 1 + 2;") {
		t.Fatalf("expected a line diff, got %d %q", code, stderr)
	}

	golden = writeFixture(t, "ok.golden", "var x = 1 + 2;\n")
	if code, _, stderr := runCLI(t, "print", "-check", golden, path); code != 0 {
		t.Fatalf("matching golden should pass, got %d %q", code, stderr)
	}
}

func TestOptimizeCommand(t *testing.T) {
	path := writeFixture(t, "fold.yml", `[{type: Binary, op: "*", left: {type: Binary, op: "+", left: 1, right: 2}, right: 4}]`)
	code, stdout, stderr := runCLI(t, "optimize", "-format", "json", path)
	if code != 0 {
		t.Fatalf("optimize exited %d: %s", code, stderr)
	}
	prog, err := fixture.Decode([]byte(stdout))
	if err != nil {
		t.Fatalf("optimized output does not decode: %v\n%s", err, stdout)
	}
	if len(prog.Body) != 1 || !strings.Contains(stdout, "12") || strings.Contains(stdout, "Binary") {
		t.Fatalf("expected a folded literal, got %s", stdout)
	}
}

func TestUsageAndVersion(t *testing.T) {
	if code, _, stderr := runCLI(t); code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected usage, got %d %q", code, stderr)
	}
	if code, stdout, _ := runCLI(t, "version"); code != 0 || !strings.Contains(stdout, cliToolVersion) {
		t.Fatalf("expected version, got %d %q", code, stdout)
	}
	if code, _, _ := runCLI(t, "run"); code != 2 {
		t.Fatalf("run without a fixture should be a usage error, got %d", code)
	}
}

func TestReplSessionKeepsBindings(t *testing.T) {
	var out bytes.Buffer
	repl := newReplSession(context.Background(), interpreter.Options{Stdout: &out})
	inputs := []struct {
		src  string
		want string
	}{
		{`[{type: ClassDecl, name: Point, fields: [x, y]}]`, ""},
		{`[{type: VarDecl, name: p, varType: "instance:Point", init: {type: New, class: {type: Var, name: Point}, args: [3, 4]}}]`, ""},
		{`[{type: FuncDecl, name: sum, params: [q], body: [{type: Return, value: {type: Binary, op: "+", left: {type: Field, target: {type: Var, name: q}, name: x}, right: {type: Field, target: {type: Var, name: q}, name: y}}}]}]`, ""},
		{`[{type: Call, callee: {type: Var, name: sum}, args: [{type: Var, name: p}]}]`, "7"},
	}
	for _, in := range inputs {
		got, err := repl.eval([]byte(in.src))
		if err != nil {
			t.Fatalf("%s: %v", in.src, err)
		}
		if got != in.want {
			t.Fatalf("%s: expected %q, got %q", in.src, in.want, got)
		}
	}

	if _, err := repl.eval([]byte(`[{type: Var, name: missing}]`)); err == nil {
		t.Fatalf("expected an error for an unbound name")
	}
	if got, err := repl.eval([]byte(`[{type: Field, target: {type: Var, name: p}, name: x}]`)); err != nil || got != "3" {
		t.Fatalf("session should survive a failed input, got %q %v", got, err)
	}

	repl.reset()
	if _, err := repl.eval([]byte(`[{type: Var, name: p}]`)); err == nil {
		t.Fatalf("reset should discard p")
	}
}

func TestSingleLineComplete(t *testing.T) {
	probe := fixture.NewDecoder()
	cases := map[string]bool{
		`[{type: Break}]`:           true,
		`{type: Program, body: []}`: true,
		`- {type: Break}`:           false,
		`[{type: Break}`:            false,
		`42`:                        false,
	}
	for line, want := range cases {
		if got := singleLineComplete(probe, line); got != want {
			t.Fatalf("%q: expected %v, got %v", line, want, got)
		}
	}
}

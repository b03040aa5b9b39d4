package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	if code != 0 || out != "tog "+version+"\n" {
		t.Fatalf("version: code %d, output %q", code, out)
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "hello.tog", "#!/usr/bin/env tog\nfn main() {\n\tprint(\"hello \", argv[1])\n}\n")

	for _, args := range [][]string{
		{"run", script, "world"},
		{script, "world"},
	} {
		code, out, errOut := runCLI(t, "", args...)
		if code != 0 {
			t.Fatalf("%v: exit %d, stderr %q", args, code, errOut)
		}
		if out != "hello world\n" {
			t.Fatalf("%v: unexpected output %q", args, out)
		}
	}
}

func TestEntryFlag(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "entry.tog", "fn main() { print(\"main\") }\nfn start() { print(\"start\") }\n")
	code, out, errOut := runCLI(t, "", "-entry", "start", script)
	if code != 0 || out != "start\n" {
		t.Fatalf("exit %d, output %q, stderr %q", code, out, errOut)
	}
}

func TestConfigNextToScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tog.yaml", "entry: start\nbatch_size: 8\n")
	script := writeScript(t, dir, "cfg.tog", "fn start() { print(batch_size()) }\n")
	code, out, errOut := runCLI(t, "", script)
	if code != 0 || out != "8\n" {
		t.Fatalf("exit %d, output %q, stderr %q", code, out, errOut)
	}
}

func TestExplicitConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "custom.yaml", "check_annotations: false\n")
	script := writeScript(t, dir, "loose.tog", "fn main() { let n: int = \"text\"; print(n) }\n")

	code, out, errOut := runCLI(t, "", "-config", cfg, script)
	if code != 0 || out != "text\n" {
		t.Fatalf("exit %d, output %q, stderr %q", code, out, errOut)
	}

	code, _, errOut = runCLI(t, "", script)
	if code != 1 || !strings.Contains(errOut, "TypeError") {
		t.Fatalf("expected annotation failure without config, got %d %q", code, errOut)
	}

	code, _, errOut = runCLI(t, "", "-config", filepath.Join(dir, "absent.yaml"), script)
	if code != 1 || !strings.HasPrefix(errOut, "tog: config: open ") {
		t.Fatalf("expected config error, got %d %q", code, errOut)
	}
}

func TestRunFromStdin(t *testing.T) {
	code, out, errOut := runCLI(t, "fn main() { print(1 + 2) }", "-")
	if code != 0 || out != "3\n" {
		t.Fatalf("exit %d, output %q, stderr %q", code, out, errOut)
	}
}

func TestRuntimeErrorsExitNonZero(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "bad.tog", "fn main() {\n  missing(1)\n}\n")
	code, out, errOut := runCLI(t, "", "run", script)
	if code != 1 || out != "" {
		t.Fatalf("exit %d, output %q", code, out)
	}
	if !strings.HasPrefix(errOut, "tog: ") || !strings.Contains(errOut, "NameError") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "good.tog", "fn main() { undefined_at_runtime() }\n")
	bad := writeScript(t, dir, "bad.tog", "fn main() {\n  let = 3\n}\n")

	if code, out, errOut := runCLI(t, "", "check", good); code != 0 || out != "" || errOut != "" {
		t.Fatalf("check good: %d %q %q", code, out, errOut)
	}
	code, _, errOut := runCLI(t, "", "check", bad)
	if code != 1 || !strings.Contains(errOut, bad+":") || !strings.Contains(errOut, "ParseError") {
		t.Fatalf("check bad: %d %q", code, errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	if code, _, _ := runCLI(t, "", "-nope"); code != 2 {
		t.Fatalf("unknown flag: expected exit 2, got %d", code)
	}
	if code, _, errOut := runCLI(t, "", "run"); code != 2 || !strings.Contains(errOut, "usage:") {
		t.Fatalf("run without file: %d %q", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "check"); code != 2 {
		t.Fatalf("check without file: expected exit 2, got %d", code)
	}
}

func TestBufferedREPL(t *testing.T) {
	input := strings.Join([]string{
		"let x = 2",
		"fn scale(n) {",
		"  n * x",
		"}",
		"scale(21)",
		"",
		"fn scale(n) { n + x }",
		"scale(1)",
		"missing",
		`print("still " + "running")`,
		"1 +",
	}, "\n") + "\n"

	code, out, errOut := runCLI(t, input, "repl")
	if code != 0 {
		t.Fatalf("repl exit %d", code)
	}
	if out != "42\n3\nstill running\n" {
		t.Fatalf("unexpected repl output %q", out)
	}
	if !strings.Contains(errOut, "error: 1:1: NameError: undefined name missing") {
		t.Fatalf("expected name error, got %q", errOut)
	}
	if !strings.Contains(errOut, "parse error: ") {
		t.Fatalf("expected parse error for truncated input, got %q", errOut)
	}
}

package lang

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tog-lang/tog/parser"
)

func newTestEvaluator(t *testing.T, src string) (*Evaluator, *bytes.Buffer, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	ctx, err := Load(prog)
	if err != nil {
		return nil, nil, err
	}
	ev := NewEvaluator(ctx)
	var out bytes.Buffer
	ev.Out = &out
	ev.DefineBuiltin("print", 0, -1, func(ev *Evaluator, args []Value) (Value, error) {
		var b strings.Builder
		for _, arg := range args {
			b.WriteString(arg.String())
		}
		b.WriteByte('\n')
		_, err := ev.Out.Write([]byte(b.String()))
		return Unit, err
	})
	return ev, &out, nil
}

func mustParseProgram(t *testing.T, src string) *parser.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return prog
}

func runProgram(t *testing.T, src string) (Value, string, error) {
	t.Helper()
	ev, out, err := newTestEvaluator(t, src)
	if err != nil {
		return Value{}, "", err
	}
	val, err := ev.Run("main")
	return val, out.String(), err
}

func mustRun(t *testing.T, src string) (Value, string) {
	t.Helper()
	val, out, err := runProgram(t, src)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return val, out
}

func expectKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got no error", kind)
	}
	if !IsKind(err, kind) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
}

func runError(t *testing.T, src string, kind ErrorKind) error {
	t.Helper()
	_, _, err := runProgram(t, src)
	expectKind(t, err, kind)
	return err
}

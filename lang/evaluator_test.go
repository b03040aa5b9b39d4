package lang

import (
	"strings"
	"testing"
)

func TestAutoReturnOfTrailingExpression(t *testing.T) {
	val, _ := mustRun(t, `
fn add(a, b) { a + b }
fn main() { add(2, 3) }
`)
	if val.Type != TypeInt || val.Int() != 5 {
		t.Fatalf("expected 5, got %v", val)
	}
}

func TestTrailingSemicolonYieldsNone(t *testing.T) {
	val, _ := mustRun(t, "fn main() { 1 + 1; }")
	if val.Type != TypeUnit {
		t.Fatalf("expected none, got %v", val)
	}
}

func TestReturnUnwindsNestedBlocks(t *testing.T) {
	val, _ := mustRun(t, `
fn find(xs, target) {
	for x in xs {
		if x == target {
			return "found " + x;
		}
	}
	"missing"
}
fn main() { find([1, 2, 3], 2) + ", " + find([1], 9) }
`)
	if got := val.Str(); got != "found 2, missing" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestReturnInsideExpression(t *testing.T) {
	val, _ := mustRun(t, `
fn pick(flag) {
	let x = if flag { return 10 } else { 20 };
	x + 1
}
fn main() { pick(true) * 100 + pick(false) }
`)
	if val.Int() != 1021 {
		t.Fatalf("expected 1021, got %v", val)
	}
}

func TestStringConcatenationCoercion(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`"Count: " + 42`, "Count: 42"},
		{`"Pi: " + 3.14`, "Pi: 3.14"},
		{`"Whole: " + 2.0`, "Whole: 2"},
		{`"Flag: " + true`, "Flag: true"},
		{`"Nothing: " + none`, "Nothing: none"},
		{`"List: " + [1, 2.5, "x"]`, "List: [1, 2.5, x]"},
		{`1 + "st"`, "1st"},
		{`"Opt: " + Option::Some(3)`, "Opt: Option::Some(3)"},
		{`"Unit: " + Option::None`, "Unit: Option::None"},
	}
	for _, tt := range tests {
		val, _ := mustRun(t, "fn main() { "+tt.expr+" }")
		if val.Type != TypeString || val.Str() != tt.want {
			t.Fatalf("%s: expected %q, got %v", tt.expr, tt.want, val)
		}
	}
}

func TestStructFormatting(t *testing.T) {
	val, _ := mustRun(t, `
struct Point { x: int, y: float }
fn main() { "" + Point { y: 2.5, x: 1 } }
`)
	if got := val.Str(); got != "Point { x: 1, y: 2.5 }" {
		t.Fatalf("unexpected struct text %q", got)
	}
}

func TestEmptyStruct(t *testing.T) {
	val, _ := mustRun(t, `
struct Marker {
	fn label(self) { "marker" }
}
fn main() {
	let m = Marker {};
	m.label() + " " + m
}
`)
	if got := val.Str(); got != "marker Marker {}" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestArithmeticPromotion(t *testing.T) {
	tests := []struct {
		expr  string
		typ   ValueType
		float float64
	}{
		{"7 / 2", TypeInt, 3},
		{"7 % 3", TypeInt, 1},
		{"7.0 / 2", TypeFloat, 3.5},
		{"1 + 0.5", TypeFloat, 1.5},
		{"2 * 3", TypeInt, 6},
		{"-4 - 1", TypeInt, -5},
		{"5.5 % 2", TypeFloat, 1.5},
	}
	for _, tt := range tests {
		val, _ := mustRun(t, "fn main() { "+tt.expr+" }")
		if val.Type != tt.typ || val.Number() != tt.float {
			t.Fatalf("%s: expected %v of type %d, got %v (type %d)", tt.expr, tt.float, tt.typ, val, val.Type)
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	runError(t, "fn main() { 1 / 0 }", ArithmeticError)
	runError(t, "fn main() { 1 % 0 }", ArithmeticError)
	runError(t, `fn main() { 1 - "a" }`, TypeError)
	runError(t, `fn main() { -"a" }`, TypeError)
	runError(t, `fn main() { [1] + [2] }`, TypeError)
}

func TestComparisonAndEquality(t *testing.T) {
	tests := map[string]bool{
		"1 < 2":                 true,
		"2.5 >= 2":              true,
		`"abc" < "abd"`:         true,
		"1 == 1.0":              true,
		"[1, 2] == [1, 2]":      true,
		"[1, 2] != [2, 1]":      true,
		`"a" == 1`:              false,
		"none == none":          true,
		"Option::Some(1) == Option::Some(1)": true,
		"Option::Some(1) == Option::None":    false,
	}
	for expr, want := range tests {
		val, _ := mustRun(t, "fn main() { "+expr+" }")
		if val.Type != TypeBool || val.Bool() != want {
			t.Fatalf("%s: expected %v, got %v", expr, want, val)
		}
	}
	runError(t, `fn main() { 1 < "a" }`, TypeError)
}

func TestLogicalOperatorsShortCircuit(t *testing.T) {
	_, out := mustRun(t, `
fn loud(v) { print("called"); v }
fn main() {
	let a = false && loud(true);
	let b = true || loud(false);
	let c = none || loud(true);
	print(a, " ", b, " ", c, " ", !none, " ", !0)
}
`)
	if out != "called\nfalse true true true false\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestClosuresCaptureScope(t *testing.T) {
	val, _ := mustRun(t, `
fn make_counter() {
	let count = 0;
	fn() { count = count + 1; count }
}
fn main() {
	let next = make_counter();
	next();
	next();
	next()
}
`)
	if val.Int() != 3 {
		t.Fatalf("expected 3, got %v", val)
	}
}

func TestRecursion(t *testing.T) {
	val, _ := mustRun(t, `
fn fib(n: int) -> int {
	if n < 2 { n } else { fib(n - 1) + fib(n - 2) }
}
fn main() { fib(15) }
`)
	if val.Int() != 610 {
		t.Fatalf("expected 610, got %v", val)
	}
}

func TestLoopsWithBreakAndContinue(t *testing.T) {
	val, _ := mustRun(t, `
fn main() {
	let total = 0;
	let i = 0;
	while true {
		i = i + 1;
		if i > 10 { break }
		if i % 2 == 0 { continue }
		total = total + i;
	}
	for c in "abc" { total = total + 100 }
	total
}
`)
	if val.Int() != 325 {
		t.Fatalf("expected 1+3+5+7+9+300 = 325, got %v", val)
	}
}

func TestControlOutsideLoop(t *testing.T) {
	runError(t, "fn main() { break }", ControlError)
	runError(t, "fn f() { continue } fn main() { for i in [1] { f() } }", ControlError)
	runError(t, "return 1", ControlError)
}

func TestAssignmentTargets(t *testing.T) {
	val, _ := mustRun(t, `
struct Box { value: int }
fn bump(b) { b.value = b.value + 1 }
fn main() {
	let arr = [1, 2, 3];
	let alias = arr;
	alias[0] = 10;
	let b = Box { value: 1 };
	bump(b);
	arr[0] + b.value
}
`)
	if val.Int() != 12 {
		t.Fatalf("expected shared mutation to give 12, got %v", val)
	}
	runError(t, "fn main() { missing = 1 }", NameError)
	runError(t, `fn main() { let s = "abc"; s[0] = "x" }`, TypeError)
}

func TestIndexing(t *testing.T) {
	val, _ := mustRun(t, `fn main() { let xs = [10, 20, 30]; xs[1] + xs[2] }`)
	if val.Int() != 50 {
		t.Fatalf("expected 50, got %v", val)
	}
	val, _ = mustRun(t, `fn main() { "héllo"[1] }`)
	if val.Str() != "é" {
		t.Fatalf("expected é, got %v", val)
	}
	runError(t, "fn main() { [1, 2][2] }", IndexError)
	runError(t, "fn main() { [1, 2][-1] }", IndexError)
	runError(t, `fn main() { [1, 2]["0"] }`, TypeError)
}

func TestNameAndCallErrors(t *testing.T) {
	runError(t, "fn main() { undefined_thing }", NameError)
	runError(t, "fn main() { let x = 5; x(1) }", TypeError)
	runError(t, "fn f(a, b) { a } fn main() { f(1) }", ArityError)
	runError(t, "fn f() { 1 } fn main() { f(1, 2) }", ArityError)
	runError(t, "fn main() { Point { x: 1 } }", NameError)
}

func TestArityErrorMessage(t *testing.T) {
	err := runError(t, "fn add(a, b) { a + b }\nfn main() {\n  add(1)\n}", ArityError)
	if !strings.Contains(err.Error(), "3:3: ArityError: add expects 2 arguments, got 1") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}

func TestMissingEntryFunction(t *testing.T) {
	runError(t, "fn helper() { 1 }", NameError)
}

func TestTopLevelStatementsWithoutEntry(t *testing.T) {
	val, out := mustRun(t, `
let greeting = "hi";
print(greeting);
greeting + "!"
`)
	if val.Str() != "hi!" || out != "hi\n" {
		t.Fatalf("unexpected result %v / %q", val, out)
	}
}

func TestTopLevelStatementsRunBeforeEntry(t *testing.T) {
	val, _ := mustRun(t, `
let base = 40;
fn main() { base + 2 }
`)
	if val.Int() != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
}

func TestUserFunctionsShadowBuiltins(t *testing.T) {
	_, out := mustRun(t, `
fn print(x) { 0 }
fn main() { print("swallowed") }
`)
	if out != "" {
		t.Fatalf("expected user print to shadow builtin, got output %q", out)
	}
}

func TestAnnotationChecks(t *testing.T) {
	runError(t, `fn main() { let x: int = "no"; }`, TypeError)
	runError(t, `fn f(x: string) { x } fn main() { f(1) }`, TypeError)
	runError(t, `fn f() -> int { "s" } fn main() { f() }`, TypeError)
	runError(t, `struct P { x: int } fn main() { P { x: 1.5 } }`, TypeError)
	runError(t, `fn main() { let xs: [int] = [1, "a"]; }`, TypeError)

	val, _ := mustRun(t, `fn f(x: float) -> float { x * 2 } fn main() { let y: float = f(2); y }`)
	if val.Type != TypeInt || val.Int() != 4 {
		t.Fatalf("int must satisfy float annotations, got %v", val)
	}
}

func TestAnnotationChecksCanBeDisabled(t *testing.T) {
	ev, _, err := newTestEvaluator(t, `fn main() { let x: int = "fine"; x }`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ev.CheckAnnotations = false
	val, err := ev.Run("main")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if val.Str() != "fine" {
		t.Fatalf("unexpected value %v", val)
	}
}

func TestStructLiteralErrors(t *testing.T) {
	runError(t, `struct P { x: int, y: int } fn main() { P { x: 1 } }`, TypeError)
	runError(t, `struct P { x: int } fn main() { P { x: 1, z: 2 } }`, TypeError)
	runError(t, `struct P { x: int } fn main() { P { x: 1 }.z }`, TypeError)
	runError(t, `fn main() { 5.x }`, TypeError)
}

func TestRecursionDepthLimit(t *testing.T) {
	ev, _, err := newTestEvaluator(t, "fn loop(n) { loop(n + 1) } fn main() { loop(0) }")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ev.MaxDepth = 50
	_, err = ev.Run("main")
	expectKind(t, err, ControlError)
}

func TestExecAddsDefinitionsIncrementally(t *testing.T) {
	ev, _, err := newTestEvaluator(t, "let x = 1;")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := ev.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ev.Context().Redefine = true
	steps := []struct {
		src  string
		want int64
	}{
		{"fn double(n) { n * 2 }", 0},
		{"double(x + 1)", 4},
		{"fn double(n) { n * 3 }", 0},
		{"double(x)", 3},
	}
	for _, step := range steps {
		prog := mustParseProgram(t, step.src)
		val, err := ev.Exec(prog)
		if err != nil {
			t.Fatalf("Exec(%q): %v", step.src, err)
		}
		if step.want != 0 && val.Int() != step.want {
			t.Fatalf("Exec(%q): expected %d, got %v", step.src, step.want, val)
		}
	}
}

func TestLookupBuiltin(t *testing.T) {
	ev, _, err := newTestEvaluator(t, "fn main() { print }")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, ok := ev.LookupBuiltin("print")
	if !ok || b.Name != "print" || b.MaxArgs != -1 {
		t.Fatalf("expected print builtin, got %+v %v", b, ok)
	}
	if _, ok := ev.LookupBuiltin("missing"); ok {
		t.Fatalf("unexpected builtin for missing")
	}
	val, err := ev.Run("main")
	if err != nil || val.Type != TypeBuiltin || val.Builtin() != b {
		t.Fatalf("expected name lookup to resolve the registered builtin, got %v, %v", val, err)
	}
}

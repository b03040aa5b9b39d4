package lang

import (
	"strings"
	"testing"
)

func TestInherentMethodWinsOverTrait(t *testing.T) {
	val, _ := mustRun(t, `
trait Describe {
	fn describe(self) -> string;
}

struct Dog {
	name: string,

	fn describe(self) { "inherent " + self.name }
}

impl Describe for Dog {
	fn describe(self) { "trait " + self.name }
}

fn main() { Dog { name: "rex" }.describe() }
`)
	if val.Str() != "inherent rex" {
		t.Fatalf("expected inherent method, got %v", val)
	}
}

func TestTraitMethodDispatch(t *testing.T) {
	val, _ := mustRun(t, `
trait Area {
	fn area(self) -> float;
	fn scaled(self, k: float) -> float;
}

struct Rect { w: float, h: float }

impl Area for Rect {
	fn area(self) { self.w * self.h }
	fn scaled(self, k) { self.area() * k }
}

fn main() {
	let r = Rect { w: 2, h: 3 };
	r.scaled(10)
}
`)
	if val.Int() != 60 {
		t.Fatalf("expected 60, got %v", val)
	}
}

func TestAmbiguousTraitMethod(t *testing.T) {
	err := runError(t, `
trait B { fn go(self); }
trait A { fn go(self); }
struct S { v: int }
impl B for S { fn go(self) { 2 } }
impl A for S { fn go(self) { 1 } }
fn main() { S { v: 0 }.go() }
`, DispatchError)
	if !strings.Contains(err.Error(), "traits A, B") {
		t.Fatalf("expected sorted trait names in %q", err.Error())
	}
}

func TestInherentMethodResolvesAmbiguity(t *testing.T) {
	val, _ := mustRun(t, `
trait A { fn go(self); }
trait B { fn go(self); }
struct S { v: int }
impl A for S { fn go(self) { 1 } }
impl B for S { fn go(self) { 2 } }
impl S { fn go(self) { 3 } }
fn main() { S { v: 0 }.go() }
`)
	if val.Int() != 3 {
		t.Fatalf("expected inherent result 3, got %v", val)
	}
}

func TestMethodNotFound(t *testing.T) {
	runError(t, "fn main() { 5.missing() }", MethodNotFoundError)
	runError(t, `struct S { v: int } fn main() { S { v: 1 }.v() }`, MethodNotFoundError)
}

func TestImplForBuiltinTypes(t *testing.T) {
	val, _ := mustRun(t, `
trait Double { fn double(self) -> int; }
impl Double for int { fn double(self) { self * 2 } }
impl string { fn shout(self) { self + "!" } }
impl none { fn describe(self) { "nothing" } }
fn main() { "" + 21.double() + " " + "hey".shout() + " " + none.describe() }
`)
	if val.Str() != "42 hey! nothing" {
		t.Fatalf("unexpected result %v", val)
	}
}

func TestMethodsOnEnums(t *testing.T) {
	val, _ := mustRun(t, `
enum Light { Red, Green }
impl Light {
	fn next(self) {
		match self {
			Light::Red => Light::Green,
			Light::Green => Light::Red,
		}
	}
}
fn main() { Light::Red.next().next().next() }
`)
	if val.String() != "Light::Green" {
		t.Fatalf("expected Light::Green, got %v", val)
	}
}

func TestMethodMutatesReceiver(t *testing.T) {
	val, _ := mustRun(t, `
struct Counter {
	n: int,
	fn inc(self) { self.n = self.n + 1; self.n }
}
fn main() {
	let c = Counter { n: 0 };
	c.inc();
	c.inc();
	c.n
}
`)
	if val.Int() != 2 {
		t.Fatalf("expected 2, got %v", val)
	}
}

func TestAssociatedFunctionCall(t *testing.T) {
	val, _ := mustRun(t, `
struct Point { x: int, y: int }
impl Point {
	fn new(x, y) { Point { x: x, y: y } }
	fn sum(self) { self.x + self.y }
}
fn main() { Point::new(1, 2).sum() }
`)
	if val.Int() != 3 {
		t.Fatalf("expected 3, got %v", val)
	}
	runError(t, `struct P { x: int } fn main() { P::missing() }`, MethodNotFoundError)
	runError(t, `fn main() { Nowhere::thing() }`, NameError)
}

func TestCallableFieldFallback(t *testing.T) {
	val, _ := mustRun(t, `
struct Handler { run: function }
fn main() {
	let h = Handler { run: fn(x) { x + 1 } };
	h.run(41)
}
`)
	if val.Int() != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
}

func TestMethodArityError(t *testing.T) {
	runError(t, `
struct S { v: int, fn get(self, k) { k } }
fn main() { S { v: 1 }.get() }
`, ArityError)
}

func TestTraitConformance(t *testing.T) {
	tests := map[string]string{
		"missing method": `
trait T { fn a(self); fn b(self); }
struct S { v: int }
impl T for S { fn a(self) { 1 } }`,
		"extra method": `
trait T { fn a(self); }
struct S { v: int }
impl T for S { fn a(self) { 1 } fn c(self) { 3 } }`,
		"wrong arity": `
trait T { fn a(self, x); }
struct S { v: int }
impl T for S { fn a(self) { 1 } }`,
	}
	for name, src := range tests {
		_, _, err := runProgram(t, src)
		if !IsKind(err, TraitConformanceError) {
			t.Fatalf("%s: expected TraitConformanceError, got %v", name, err)
		}
	}
}

func TestImplDefinitionErrors(t *testing.T) {
	tests := map[string]string{
		"unknown type":      `trait T { fn a(self); } impl T for Missing { fn a(self) { 1 } }`,
		"unknown trait":     `impl Missing for int { fn a(self) { 1 } }`,
		"duplicate impl":    `trait T { fn a(self); } impl T for int { fn a(self) { 1 } } impl T for int { fn a(self) { 2 } }`,
		"duplicate method":  `struct S { v: int, fn a(self) { 1 } } impl S { fn a(self) { 2 } }`,
		"duplicate trait":   `trait T { fn a(self); } trait T { fn b(self); }`,
		"unknown sig type":  `trait T { fn a(self) -> Missing; }`,
		"duplicate sig":     `trait T { fn a(self); fn a(self); }`,
		"impl method twice": `trait T { fn a(self); } impl T for int { fn a(self) { 1 } fn a(self) { 2 } }`,
	}
	for name, src := range tests {
		_, _, err := runProgram(t, src)
		if !IsKind(err, DefinitionError) {
			t.Fatalf("%s: expected DefinitionError, got %v", name, err)
		}
	}
}

func TestResolveMethod(t *testing.T) {
	ev, _, err := newTestEvaluator(t, `
trait Named { fn name(self); }
impl Named for int { fn name(self) { "int" } }
`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fn, err := ev.ResolveMethod("int", "name")
	if err != nil {
		t.Fatalf("ResolveMethod: %v", err)
	}
	if fn.Receiver != "int" || fn.Name != "name" {
		t.Fatalf("unexpected method %+v", fn)
	}
	if _, err := ev.ResolveMethod("float", "name"); !IsKind(err, MethodNotFoundError) {
		t.Fatalf("expected MethodNotFoundError, got %v", err)
	}
	val, err := ev.CallMethod(IntValue(3), "name", nil)
	if err != nil || val.Str() != "int" {
		t.Fatalf("CallMethod = %v, %v", val, err)
	}
}

func TestContextAddIsAtomic(t *testing.T) {
	ctx, err := Load(mustParseProgram(t, "fn a() { 1 }"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = ctx.Add(mustParseProgram(t, "struct S { v: int } fn a() { 2 }"))
	expectKind(t, err, DefinitionError)
	if _, ok := ctx.Structs["S"]; ok {
		t.Fatalf("failed Add must not register struct S")
	}

	old := ctx.Functions["a"]
	ctx.Redefine = true
	if err := ctx.Add(mustParseProgram(t, "struct S { v: int } fn a() { 2 }")); err != nil {
		t.Fatalf("Add with Redefine: %v", err)
	}
	if ctx.Functions["a"] == old {
		t.Fatalf("expected function a to be replaced")
	}
	if _, ok := ctx.Structs["S"]; !ok {
		t.Fatalf("expected struct S to be registered")
	}
}

func TestContextPendingStatements(t *testing.T) {
	ctx, err := Load(mustParseProgram(t, "let x = 1; x + 1"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(ctx.TakePending()); got != 2 {
		t.Fatalf("expected 2 pending statements, got %d", got)
	}
	if got := len(ctx.TakePending()); got != 0 {
		t.Fatalf("expected pending statements to be consumed, got %d", got)
	}
}

func TestIsType(t *testing.T) {
	ctx, err := Load(mustParseProgram(t, "struct P { x: int } enum E { A }"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range []string{"int", "string", "none", "P", "E", "Option", "Result"} {
		if !ctx.IsType(name) {
			t.Fatalf("expected %s to be a type", name)
		}
	}
	if ctx.IsType("Q") {
		t.Fatalf("Q is not a type")
	}
}

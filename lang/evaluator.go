package lang

import (
	"io"
	"os"

	"github.com/tog-lang/tog/parser"
)

// DefaultBatchSize is the value reported by batch_size() unless configured.
const DefaultBatchSize = 1024

const defaultMaxDepth = 10000

// flow reports how evaluation of a statement or expression finished.
type flow int

const (
	flowNormal flow = iota
	flowReturn
	flowBreak
	flowContinue
)

// Evaluator executes loaded TOG programs.
type Evaluator struct {
	Global *Env

	// Out receives print output.
	Out io.Writer
	// BatchSize is reported by the batch_size builtin.
	BatchSize int
	// CheckAnnotations enables run-time checks of let, parameter, field and
	// return type annotations.
	CheckAnnotations bool
	// MaxDepth bounds nested function calls.
	MaxDepth int

	ctx      *Context
	builtins map[string]*Builtin
	bound    map[string]*Function
	depth    int
}

// NewEvaluator constructs an evaluator for ctx rooted at a new global
// environment. A nil ctx starts from an empty program.
func NewEvaluator(ctx *Context) *Evaluator {
	if ctx == nil {
		ctx = NewContext()
	}
	return &Evaluator{
		Global:           NewEnv(nil),
		Out:              os.Stdout,
		BatchSize:        DefaultBatchSize,
		CheckAnnotations: true,
		MaxDepth:         defaultMaxDepth,
		ctx:              ctx,
		builtins:         make(map[string]*Builtin),
		bound:            make(map[string]*Function),
	}
}

// Context returns the program context being evaluated.
func (ev *Evaluator) Context() *Context {
	return ev.ctx
}

// DefineBuiltin registers a builtin function. maxArgs < 0 accepts any number
// of arguments from minArgs up.
func (ev *Evaluator) DefineBuiltin(name string, minArgs, maxArgs int, fn Primitive) {
	ev.builtins[name] = &Builtin{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn}
}

// LookupBuiltin returns a registered builtin.
func (ev *Evaluator) LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := ev.builtins[name]
	return b, ok
}

// Exec adds the declarations of prog to the program and runs its top-level
// statements, returning the value of the last one.
func (ev *Evaluator) Exec(prog *parser.Program) (Value, error) {
	if err := ev.ctx.Add(prog); err != nil {
		return Value{}, err
	}
	val, _, err := ev.init()
	return val, err
}

// Init binds declared functions and runs pending top-level statements.
func (ev *Evaluator) Init() (Value, error) {
	val, _, err := ev.init()
	return val, err
}

func (ev *Evaluator) init() (Value, bool, error) {
	for name, fn := range ev.ctx.Functions {
		if ev.bound[name] != fn {
			ev.Global.Define(name, FunctionValue(fn))
			ev.bound[name] = fn
		}
	}
	stmts := ev.ctx.TakePending()
	last := Unit
	for _, stmt := range stmts {
		val, fl, err := ev.execStmt(stmt, ev.Global)
		if err != nil {
			return Value{}, false, err
		}
		if fl != flowNormal {
			return Value{}, false, errorAt(stmt.Pos(), ControlError, "%s outside of a function", flowName(fl))
		}
		last = val
	}
	return last, len(stmts) > 0, nil
}

// Run runs top-level statements and then calls the entry function with no
// arguments. Without an entry function the value of the last top-level
// statement is returned.
func (ev *Evaluator) Run(entry string) (Value, error) {
	if entry == "" {
		entry = "main"
	}
	last, ran, err := ev.init()
	if err != nil {
		return Value{}, err
	}
	fn, ok := ev.ctx.Functions[entry]
	if !ok {
		if ran {
			return last, nil
		}
		return Value{}, Errorf(NameError, "entry function %s is not defined", entry)
	}
	return ev.callFunction(fn, nil, nil)
}

// Apply invokes a function or builtin value with arguments.
func (ev *Evaluator) Apply(callee Value, args []Value) (Value, error) {
	switch callee.Type {
	case TypeFunction:
		return ev.callFunction(callee.Function(), nil, args)
	case TypeBuiltin:
		b := callee.Builtin()
		if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
			return Value{}, Errorf(ArityError, "%s expects %s, got %d", b.Name, describeArity(b.MinArgs, b.MaxArgs), len(args))
		}
		return b.Fn(ev, args)
	}
	return Value{}, Errorf(TypeError, "value of type %s is not callable", callee.TypeName())
}

func (ev *Evaluator) callFunction(fn *Function, self *Value, args []Value) (Value, error) {
	name := fn.Name
	if name == "" {
		name = "anonymous function"
	}
	if len(args) != len(fn.Params) {
		return Value{}, Errorf(ArityError, "%s expects %s, got %d", name, plural(len(fn.Params), "argument"), len(args))
	}
	if ev.depth >= ev.MaxDepth {
		return Value{}, Errorf(ControlError, "maximum call depth %d exceeded in %s", ev.MaxDepth, name)
	}

	parent := fn.Env
	if parent == nil {
		parent = ev.Global
	}
	scope := NewEnv(parent)
	if self != nil {
		scope.Define("self", *self)
	}
	for i, param := range fn.Params {
		if err := ev.checkType(args[i], param.Type, "parameter "+param.Name+" of "+name); err != nil {
			return Value{}, err
		}
		scope.Define(param.Name, args[i])
	}

	ev.depth++
	val, fl, err := ev.evalBlock(fn.Body, scope)
	ev.depth--
	if err != nil {
		return Value{}, err
	}
	switch fl {
	case flowBreak, flowContinue:
		return Value{}, Errorf(ControlError, "%s outside of a loop", flowName(fl))
	}
	if err := ev.checkType(val, fn.ReturnType, "return value of "+name); err != nil {
		return Value{}, err
	}
	return val, nil
}

func flowName(fl flow) string {
	switch fl {
	case flowReturn:
		return "return"
	case flowBreak:
		return "break"
	case flowContinue:
		return "continue"
	}
	return "statement"
}

func (ev *Evaluator) evalBlock(b *parser.BlockExpr, env *Env) (Value, flow, error) {
	scope := NewEnv(env)
	result := Unit
	for i, stmt := range b.Stmts {
		val, fl, err := ev.execStmt(stmt, scope)
		if err != nil || fl != flowNormal {
			return val, fl, err
		}
		if es, ok := stmt.(*parser.ExprStmt); ok && !es.Semi && i == len(b.Stmts)-1 {
			result = val
		}
	}
	return result, flowNormal, nil
}

func (ev *Evaluator) execStmt(stmt parser.Stmt, env *Env) (Value, flow, error) {
	switch s := stmt.(type) {
	case *parser.LetStmt:
		val, fl, err := ev.eval(s.Value, env)
		if err != nil || fl != flowNormal {
			return val, fl, err
		}
		if err := ev.checkType(val, s.Type, "variable "+s.Name); err != nil {
			return Value{}, flowNormal, withPos(err, s.Posn)
		}
		env.Define(s.Name, val)
		return Unit, flowNormal, nil
	case *parser.ExprStmt:
		return ev.eval(s.Expr, env)
	case *parser.AssignStmt:
		return ev.execAssign(s, env)
	case *parser.ReturnStmt:
		if s.Result == nil {
			return Unit, flowReturn, nil
		}
		val, fl, err := ev.eval(s.Result, env)
		if err != nil || fl != flowNormal {
			return val, fl, err
		}
		return val, flowReturn, nil
	case *parser.WhileStmt:
		return ev.execWhile(s, env)
	case *parser.ForStmt:
		return ev.execFor(s, env)
	case *parser.BreakStmt:
		return Unit, flowBreak, nil
	case *parser.ContinueStmt:
		return Unit, flowContinue, nil
	}
	return Value{}, flowNormal, errorAt(stmt.Pos(), TypeError, "unsupported statement %T", stmt)
}

func (ev *Evaluator) execAssign(s *parser.AssignStmt, env *Env) (Value, flow, error) {
	val, fl, err := ev.eval(s.Value, env)
	if err != nil || fl != flowNormal {
		return val, fl, err
	}
	switch target := s.Target.(type) {
	case *parser.IdentifierExpr:
		if err := env.Set(target.Name, val); err != nil {
			return Value{}, flowNormal, withPos(err, target.Posn)
		}
	case *parser.FieldExpr:
		obj, fl, err := ev.eval(target.Object, env)
		if err != nil || fl != flowNormal {
			return obj, fl, err
		}
		if err := ev.setField(obj, target.Field, val); err != nil {
			return Value{}, flowNormal, withPos(err, target.Posn)
		}
	case *parser.IndexExpr:
		obj, fl, err := ev.eval(target.Object, env)
		if err != nil || fl != flowNormal {
			return obj, fl, err
		}
		idx, fl, err := ev.eval(target.Index, env)
		if err != nil || fl != flowNormal {
			return idx, fl, err
		}
		if err := setIndex(obj, idx, val); err != nil {
			return Value{}, flowNormal, withPos(err, target.Posn)
		}
	default:
		return Value{}, flowNormal, errorAt(s.Posn, TypeError, "cannot assign to %T", s.Target)
	}
	return Unit, flowNormal, nil
}

func (ev *Evaluator) execWhile(s *parser.WhileStmt, env *Env) (Value, flow, error) {
	for {
		cond, fl, err := ev.eval(s.Cond, env)
		if err != nil || fl != flowNormal {
			return cond, fl, err
		}
		if !IsTruthy(cond) {
			return Unit, flowNormal, nil
		}
		val, fl, err := ev.evalBlock(s.Body, env)
		if err != nil {
			return Value{}, flowNormal, err
		}
		switch fl {
		case flowBreak:
			return Unit, flowNormal, nil
		case flowReturn:
			return val, fl, nil
		}
	}
}

func (ev *Evaluator) execFor(s *parser.ForStmt, env *Env) (Value, flow, error) {
	iterable, fl, err := ev.eval(s.Iterable, env)
	if err != nil || fl != flowNormal {
		return iterable, fl, err
	}
	body := func(item Value) (Value, flow, error) {
		scope := NewEnv(env)
		scope.Define(s.Var, item)
		return ev.evalBlock(s.Body, scope)
	}

	var next func(i int64) (Value, bool)
	switch iterable.Type {
	case TypeArray:
		elems := iterable.Elems()
		next = func(i int64) (Value, bool) {
			if i >= int64(len(elems)) {
				return Value{}, false
			}
			return elems[i], true
		}
	case TypeRange:
		r := iterable.Range()
		next = func(i int64) (Value, bool) {
			if i >= r.Len() {
				return Value{}, false
			}
			return IntValue(r.Start + i), true
		}
	case TypeString:
		runes := []rune(iterable.Str())
		next = func(i int64) (Value, bool) {
			if i >= int64(len(runes)) {
				return Value{}, false
			}
			return StringValue(string(runes[i])), true
		}
	default:
		return Value{}, flowNormal, errorAt(s.Iterable.Pos(), TypeError, "cannot iterate over %s", iterable.TypeName())
	}

	for i := int64(0); ; i++ {
		item, ok := next(i)
		if !ok {
			return Unit, flowNormal, nil
		}
		val, fl, err := body(item)
		if err != nil {
			return Value{}, flowNormal, err
		}
		switch fl {
		case flowBreak:
			return Unit, flowNormal, nil
		case flowReturn:
			return val, fl, nil
		}
	}
}

// eval evaluates e and attaches its position to errors raised without one.
func (ev *Evaluator) eval(e parser.Expr, env *Env) (Value, flow, error) {
	val, fl, err := ev.evalExpr(e, env)
	if err != nil {
		return Value{}, flowNormal, withPos(err, e.Pos())
	}
	return val, fl, nil
}

func (ev *Evaluator) evalExpr(e parser.Expr, env *Env) (Value, flow, error) {
	switch e := e.(type) {
	case *parser.IntLit:
		return IntValue(e.Value), flowNormal, nil
	case *parser.FloatLit:
		return FloatValue(e.Value), flowNormal, nil
	case *parser.StringLit:
		return StringValue(e.Value), flowNormal, nil
	case *parser.BoolLit:
		return BoolValue(e.Value), flowNormal, nil
	case *parser.NoneLit:
		return Unit, flowNormal, nil
	case *parser.IdentifierExpr:
		val, err := ev.lookup(e.Name, env)
		return val, flowNormal, err
	case *parser.ArrayExpr:
		elems, fl, err := ev.evalList(e.Elements, env)
		if err != nil || fl != flowNormal {
			return Value{}, fl, err
		}
		return ArrayValue(elems), flowNormal, nil
	case *parser.UnaryExpr:
		val, fl, err := ev.eval(e.Expr, env)
		if err != nil || fl != flowNormal {
			return val, fl, err
		}
		val, err = unaryOp(e.Op, val)
		return val, flowNormal, err
	case *parser.BinaryExpr:
		return ev.evalBinary(e, env)
	case *parser.CallExpr:
		return ev.evalCall(e, env)
	case *parser.MethodCallExpr:
		recv, fl, err := ev.eval(e.Receiver, env)
		if err != nil || fl != flowNormal {
			return recv, fl, err
		}
		args, fl, err := ev.evalList(e.Args, env)
		if err != nil || fl != flowNormal {
			return Value{}, fl, err
		}
		val, err := ev.CallMethod(recv, e.Method, args)
		return val, flowNormal, err
	case *parser.FieldExpr:
		obj, fl, err := ev.eval(e.Object, env)
		if err != nil || fl != flowNormal {
			return obj, fl, err
		}
		val, err := getField(obj, e.Field)
		return val, flowNormal, err
	case *parser.IndexExpr:
		obj, fl, err := ev.eval(e.Object, env)
		if err != nil || fl != flowNormal {
			return obj, fl, err
		}
		idx, fl, err := ev.eval(e.Index, env)
		if err != nil || fl != flowNormal {
			return idx, fl, err
		}
		val, err := getIndex(obj, idx)
		return val, flowNormal, err
	case *parser.BlockExpr:
		return ev.evalBlock(e, env)
	case *parser.IfExpr:
		return ev.evalIf(e, env)
	case *parser.MatchExpr:
		return ev.evalMatch(e, env)
	case *parser.StructLit:
		return ev.evalStructLit(e, env)
	case *parser.VariantExpr:
		return ev.evalVariant(e, env)
	case *parser.FuncLit:
		return FunctionValue(&Function{
			Params:     e.Params,
			ReturnType: e.ReturnType,
			Body:       e.Body,
			Env:        env,
			Posn:       e.Posn,
		}), flowNormal, nil
	}
	return Value{}, flowNormal, Errorf(TypeError, "unsupported expression %T", e)
}

func (ev *Evaluator) evalList(exprs []parser.Expr, env *Env) ([]Value, flow, error) {
	vals := make([]Value, 0, len(exprs))
	for _, x := range exprs {
		val, fl, err := ev.eval(x, env)
		if err != nil || fl != flowNormal {
			return nil, fl, err
		}
		vals = append(vals, val)
	}
	return vals, flowNormal, nil
}

// lookup resolves a name: local scopes first, then builtins.
func (ev *Evaluator) lookup(name string, env *Env) (Value, error) {
	if val, ok := env.Lookup(name); ok {
		return val, nil
	}
	if b, ok := ev.LookupBuiltin(name); ok {
		return BuiltinValue(b), nil
	}
	return Value{}, Errorf(NameError, "undefined name %s", name)
}

func (ev *Evaluator) evalBinary(e *parser.BinaryExpr, env *Env) (Value, flow, error) {
	left, fl, err := ev.eval(e.Left, env)
	if err != nil || fl != flowNormal {
		return left, fl, err
	}
	switch e.Op {
	case "&&":
		if !IsTruthy(left) {
			return BoolValue(false), flowNormal, nil
		}
		right, fl, err := ev.eval(e.Right, env)
		if err != nil || fl != flowNormal {
			return right, fl, err
		}
		return BoolValue(IsTruthy(right)), flowNormal, nil
	case "||":
		if IsTruthy(left) {
			return BoolValue(true), flowNormal, nil
		}
		right, fl, err := ev.eval(e.Right, env)
		if err != nil || fl != flowNormal {
			return right, fl, err
		}
		return BoolValue(IsTruthy(right)), flowNormal, nil
	}
	right, fl, err := ev.eval(e.Right, env)
	if err != nil || fl != flowNormal {
		return right, fl, err
	}
	val, err := binaryOp(e.Op, left, right)
	return val, flowNormal, err
}

func (ev *Evaluator) evalCall(e *parser.CallExpr, env *Env) (Value, flow, error) {
	callee, fl, err := ev.eval(e.Callee, env)
	if err != nil || fl != flowNormal {
		return callee, fl, err
	}
	args, fl, err := ev.evalList(e.Args, env)
	if err != nil || fl != flowNormal {
		return Value{}, fl, err
	}
	val, err := ev.Apply(callee, args)
	return val, flowNormal, err
}

func (ev *Evaluator) evalIf(e *parser.IfExpr, env *Env) (Value, flow, error) {
	cond, fl, err := ev.eval(e.Cond, env)
	if err != nil || fl != flowNormal {
		return cond, fl, err
	}
	if IsTruthy(cond) {
		return ev.evalBlock(e.Then, env)
	}
	if e.Else != nil {
		return ev.eval(e.Else, env)
	}
	return Unit, flowNormal, nil
}

func (ev *Evaluator) evalStructLit(e *parser.StructLit, env *Env) (Value, flow, error) {
	def, ok := ev.ctx.Structs[e.Type]
	if !ok {
		return Value{}, flowNormal, Errorf(NameError, "unknown struct %s", e.Type)
	}
	fields := make([]Value, len(def.Fields))
	set := make([]bool, len(def.Fields))
	for _, init := range e.Fields {
		idx, ok := def.FieldIndex(init.Name)
		if !ok {
			return Value{}, flowNormal, errorAt(init.Posn, TypeError, "struct %s has no field %s", def.Name, init.Name)
		}
		if set[idx] {
			return Value{}, flowNormal, errorAt(init.Posn, TypeError, "field %s given twice", init.Name)
		}
		val, fl, err := ev.eval(init.Value, env)
		if err != nil || fl != flowNormal {
			return val, fl, err
		}
		if err := ev.checkType(val, def.Fields[idx].Type, "field "+def.Name+"."+init.Name); err != nil {
			return Value{}, flowNormal, withPos(err, init.Posn)
		}
		fields[idx] = val
		set[idx] = true
	}
	for i, ok := range set {
		if !ok {
			return Value{}, flowNormal, Errorf(TypeError, "missing field %s in %s literal", def.Fields[i].Name, def.Name)
		}
	}
	return StructValue(&StructInstance{Def: def, Fields: fields}), flowNormal, nil
}

func (ev *Evaluator) setField(obj Value, field string, val Value) error {
	s := obj.Struct()
	if s == nil {
		return Errorf(TypeError, "cannot set field %s on %s", field, obj.TypeName())
	}
	idx, ok := s.Def.FieldIndex(field)
	if !ok {
		return Errorf(TypeError, "struct %s has no field %s", s.Def.Name, field)
	}
	if err := ev.checkType(val, s.Def.Fields[idx].Type, "field "+s.Def.Name+"."+field); err != nil {
		return err
	}
	s.Fields[idx] = val
	return nil
}

func getField(obj Value, field string) (Value, error) {
	s := obj.Struct()
	if s == nil {
		return Value{}, Errorf(TypeError, "cannot access field %s on %s", field, obj.TypeName())
	}
	val, ok := s.Field(field)
	if !ok {
		return Value{}, Errorf(TypeError, "struct %s has no field %s", s.Def.Name, field)
	}
	return val, nil
}

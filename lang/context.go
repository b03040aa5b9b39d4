package lang

import (
	"github.com/tog-lang/tog/parser"
)

// StructDef is a loaded struct declaration.
type StructDef struct {
	Name   string
	Fields []parser.FieldDecl
	index  map[string]int
}

// FieldIndex returns the slot of a field.
func (d *StructDef) FieldIndex(name string) (int, bool) {
	idx, ok := d.index[name]
	return idx, ok
}

// EnumDef is a loaded enum declaration.
type EnumDef struct {
	Name     string
	Variants []parser.VariantDecl
	index    map[string]int
}

// VariantIndex returns the position of a variant.
func (d *EnumDef) VariantIndex(name string) (int, bool) {
	idx, ok := d.index[name]
	return idx, ok
}

// TraitDef is a loaded trait declaration.
type TraitDef struct {
	Name    string
	Methods []parser.MethodSig
}

// builtinTypes are the receiver names of values that have no declaration.
var builtinTypes = map[string]bool{
	"int":      true,
	"float":    true,
	"string":   true,
	"bool":     true,
	"array":    true,
	"none":     true,
	"range":    true,
	"function": true,
}

// Context is the loaded program: every declared type, trait, function and
// method, plus top-level statements that have not run yet.
type Context struct {
	Structs   map[string]*StructDef
	Enums     map[string]*EnumDef
	Traits    map[string]*TraitDef
	Functions map[string]*Function

	inherent map[string]map[string]*Function            // type -> method
	traits   map[string]map[string]map[string]*Function // type -> trait -> method

	// Redefine lets a later Add replace functions instead of rejecting them.
	Redefine bool

	pending []parser.Stmt
}

// NewContext returns a context holding only the prelude enums.
func NewContext() *Context {
	ctx := &Context{
		Structs:   make(map[string]*StructDef),
		Enums:     make(map[string]*EnumDef),
		Traits:    make(map[string]*TraitDef),
		Functions: make(map[string]*Function),
		inherent:  make(map[string]map[string]*Function),
		traits:    make(map[string]map[string]map[string]*Function),
	}
	for _, decl := range preludeEnums() {
		ctx.Enums[decl.Name] = newEnumDef(decl)
	}
	return ctx
}

func preludeEnums() []*parser.EnumDecl {
	payload := func(name string) *parser.TypeExpr { return &parser.TypeExpr{Name: name} }
	return []*parser.EnumDecl{
		{Name: "Option", Variants: []parser.VariantDecl{
			{Name: "Some", Payload: payload("T")},
			{Name: "None"},
		}},
		{Name: "Result", Variants: []parser.VariantDecl{
			{Name: "Ok", Payload: payload("T")},
			{Name: "Err", Payload: payload("E")},
		}},
	}
}

func isPrelude(name string) bool {
	return name == "Option" || name == "Result"
}

func newEnumDef(decl *parser.EnumDecl) *EnumDef {
	def := &EnumDef{Name: decl.Name, Variants: decl.Variants, index: make(map[string]int)}
	for i, v := range decl.Variants {
		def.index[v.Name] = i
	}
	return def
}

// Load builds a program context and runs the definition checks.
func Load(prog *parser.Program) (*Context, error) {
	ctx := NewContext()
	if err := ctx.Add(prog); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Add registers the declarations of prog. Nothing is registered when a
// check fails.
func (ctx *Context) Add(prog *parser.Program) error {
	next := ctx.clone()
	if err := next.add(prog); err != nil {
		return err
	}
	*ctx = *next
	return nil
}

// TakePending returns the top-level statements added since the last call.
func (ctx *Context) TakePending() []parser.Stmt {
	stmts := ctx.pending
	ctx.pending = nil
	return stmts
}

// IsType reports whether name is a builtin, struct or enum type.
func (ctx *Context) IsType(name string) bool {
	if builtinTypes[name] {
		return true
	}
	_, isStruct := ctx.Structs[name]
	_, isEnum := ctx.Enums[name]
	return isStruct || isEnum
}

// InherentMethod returns the method declared directly on typeName.
func (ctx *Context) InherentMethod(typeName, method string) (*Function, bool) {
	fn, ok := ctx.inherent[typeName][method]
	return fn, ok
}

// TraitMethods returns the implementations of method provided by traits
// implemented for typeName, keyed by trait name.
func (ctx *Context) TraitMethods(typeName, method string) map[string]*Function {
	found := make(map[string]*Function)
	for trait, methods := range ctx.traits[typeName] {
		if fn, ok := methods[method]; ok {
			found[trait] = fn
		}
	}
	return found
}

// Implements reports whether typeName has an impl of trait.
func (ctx *Context) Implements(typeName, trait string) bool {
	_, ok := ctx.traits[typeName][trait]
	return ok
}

func (ctx *Context) clone() *Context {
	next := &Context{
		Structs:   make(map[string]*StructDef, len(ctx.Structs)),
		Enums:     make(map[string]*EnumDef, len(ctx.Enums)),
		Traits:    make(map[string]*TraitDef, len(ctx.Traits)),
		Functions: make(map[string]*Function, len(ctx.Functions)),
		inherent:  make(map[string]map[string]*Function, len(ctx.inherent)),
		traits:    make(map[string]map[string]map[string]*Function, len(ctx.traits)),
		Redefine:  ctx.Redefine,
		pending:   append([]parser.Stmt(nil), ctx.pending...),
	}
	for k, v := range ctx.Structs {
		next.Structs[k] = v
	}
	for k, v := range ctx.Enums {
		next.Enums[k] = v
	}
	for k, v := range ctx.Traits {
		next.Traits[k] = v
	}
	for k, v := range ctx.Functions {
		next.Functions[k] = v
	}
	for typ, methods := range ctx.inherent {
		copied := make(map[string]*Function, len(methods))
		for k, v := range methods {
			copied[k] = v
		}
		next.inherent[typ] = copied
	}
	for typ, impls := range ctx.traits {
		copied := make(map[string]map[string]*Function, len(impls))
		for k, v := range impls {
			copied[k] = v
		}
		next.traits[typ] = copied
	}
	return next
}

func (ctx *Context) add(prog *parser.Program) error {
	var (
		structs []*parser.StructDecl
		impls   []*parser.ImplDecl
		funcs   []*Function
		stmts   []parser.Stmt
	)

	for _, item := range prog.Items {
		switch decl := item.(type) {
		case *parser.StructDecl:
			if err := ctx.declareStruct(decl); err != nil {
				return err
			}
			structs = append(structs, decl)
		case *parser.EnumDecl:
			if err := ctx.declareEnum(decl); err != nil {
				return err
			}
		case *parser.TraitDecl:
			if err := ctx.declareTrait(decl); err != nil {
				return err
			}
		case *parser.FuncDecl:
			if _, dup := ctx.Functions[decl.Name]; dup && !ctx.Redefine {
				return errorAt(decl.Posn, DefinitionError, "function %s is already defined", decl.Name)
			}
			fn := newFunction(decl, "")
			ctx.Functions[decl.Name] = fn
			funcs = append(funcs, fn)
		case *parser.ImplDecl:
			impls = append(impls, decl)
		case *parser.StmtItem:
			stmts = append(stmts, decl.Stmt)
		}
	}

	for _, decl := range structs {
		for _, m := range decl.Methods {
			fn := newFunction(m, decl.Name)
			if err := ctx.addInherent(decl.Name, fn, m.Posn); err != nil {
				return err
			}
			funcs = append(funcs, fn)
		}
	}
	for _, decl := range impls {
		methods, err := ctx.addImpl(decl)
		if err != nil {
			return err
		}
		funcs = append(funcs, methods...)
	}

	if err := ctx.checkDeclaredTypes(); err != nil {
		return err
	}
	for _, fn := range funcs {
		if err := ctx.checkFunction(fn); err != nil {
			return err
		}
	}
	for _, stmt := range stmts {
		if err := walkStmt(stmt, ctx.checkNode); err != nil {
			return err
		}
	}
	ctx.pending = append(ctx.pending, stmts...)
	return nil
}

func newFunction(decl *parser.FuncDecl, receiver string) *Function {
	return &Function{
		Name:       decl.Name,
		Params:     decl.Params,
		HasSelf:    decl.HasSelf,
		ReturnType: decl.ReturnType,
		Body:       decl.Body,
		Receiver:   receiver,
		Posn:       decl.Posn,
	}
}

func (ctx *Context) declareType(name string, pos parser.Position) error {
	if isPrelude(name) {
		return errorAt(pos, DefinitionError, "cannot redeclare builtin enum %s", name)
	}
	if ctx.IsType(name) {
		return errorAt(pos, DefinitionError, "type %s is already defined", name)
	}
	return nil
}

func (ctx *Context) declareStruct(decl *parser.StructDecl) error {
	if err := ctx.declareType(decl.Name, decl.Posn); err != nil {
		return err
	}
	def := &StructDef{Name: decl.Name, Fields: decl.Fields, index: make(map[string]int)}
	for i, f := range decl.Fields {
		if _, dup := def.index[f.Name]; dup {
			return errorAt(f.Posn, DefinitionError, "duplicate field %s in struct %s", f.Name, decl.Name)
		}
		def.index[f.Name] = i
	}
	ctx.Structs[decl.Name] = def
	return nil
}

func (ctx *Context) declareEnum(decl *parser.EnumDecl) error {
	if err := ctx.declareType(decl.Name, decl.Posn); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, v := range decl.Variants {
		if seen[v.Name] {
			return errorAt(v.Posn, DefinitionError, "duplicate variant %s in enum %s", v.Name, decl.Name)
		}
		seen[v.Name] = true
	}
	ctx.Enums[decl.Name] = newEnumDef(decl)
	return nil
}

func (ctx *Context) declareTrait(decl *parser.TraitDecl) error {
	if _, dup := ctx.Traits[decl.Name]; dup {
		return errorAt(decl.Posn, DefinitionError, "trait %s is already defined", decl.Name)
	}
	seen := make(map[string]bool)
	for _, m := range decl.Methods {
		if seen[m.Name] {
			return errorAt(m.Posn, DefinitionError, "duplicate method %s in trait %s", m.Name, decl.Name)
		}
		seen[m.Name] = true
	}
	ctx.Traits[decl.Name] = &TraitDef{Name: decl.Name, Methods: decl.Methods}
	return nil
}

func (ctx *Context) addInherent(typeName string, fn *Function, pos parser.Position) error {
	methods := ctx.inherent[typeName]
	if methods == nil {
		methods = make(map[string]*Function)
		ctx.inherent[typeName] = methods
	}
	if _, dup := methods[fn.Name]; dup {
		return errorAt(pos, DefinitionError, "method %s is already defined for %s", fn.Name, typeName)
	}
	methods[fn.Name] = fn
	return nil
}

func (ctx *Context) addImpl(decl *parser.ImplDecl) ([]*Function, error) {
	if !ctx.IsType(decl.Type) {
		return nil, errorAt(decl.Posn, DefinitionError, "impl for unknown type %s", decl.Type)
	}
	var funcs []*Function
	if decl.Trait == "" {
		for _, m := range decl.Methods {
			fn := newFunction(m, decl.Type)
			if err := ctx.addInherent(decl.Type, fn, m.Posn); err != nil {
				return nil, err
			}
			funcs = append(funcs, fn)
		}
		return funcs, nil
	}

	trait, ok := ctx.Traits[decl.Trait]
	if !ok {
		return nil, errorAt(decl.Posn, DefinitionError, "impl of unknown trait %s", decl.Trait)
	}
	if ctx.Implements(decl.Type, decl.Trait) {
		return nil, errorAt(decl.Posn, DefinitionError, "trait %s is already implemented for %s", decl.Trait, decl.Type)
	}

	methods := make(map[string]*Function)
	for _, m := range decl.Methods {
		if _, dup := methods[m.Name]; dup {
			return nil, errorAt(m.Posn, DefinitionError, "method %s is already defined in impl %s for %s", m.Name, decl.Trait, decl.Type)
		}
		fn := newFunction(m, decl.Type)
		methods[m.Name] = fn
		funcs = append(funcs, fn)
	}
	if err := checkConformance(trait, decl, methods); err != nil {
		return nil, err
	}

	impls := ctx.traits[decl.Type]
	if impls == nil {
		impls = make(map[string]map[string]*Function)
		ctx.traits[decl.Type] = impls
	}
	impls[decl.Trait] = methods
	return funcs, nil
}

func checkConformance(trait *TraitDef, decl *parser.ImplDecl, methods map[string]*Function) error {
	declared := make(map[string]bool, len(trait.Methods))
	for _, sig := range trait.Methods {
		declared[sig.Name] = true
		fn, ok := methods[sig.Name]
		if !ok {
			return errorAt(decl.Posn, TraitConformanceError, "impl %s for %s is missing method %s", trait.Name, decl.Type, sig.Name)
		}
		if len(fn.Params) != len(sig.Params) {
			return errorAt(fn.Posn, TraitConformanceError,
				"method %s of impl %s for %s takes %d parameters, trait declares %d",
				sig.Name, trait.Name, decl.Type, len(fn.Params), len(sig.Params))
		}
	}
	for _, m := range decl.Methods {
		if !declared[m.Name] {
			return errorAt(m.Posn, TraitConformanceError, "method %s is not declared by trait %s", m.Name, trait.Name)
		}
	}
	return nil
}

// checkDeclaredTypes verifies that field and payload annotations name known types.
func (ctx *Context) checkDeclaredTypes() error {
	for _, def := range ctx.Structs {
		for _, f := range def.Fields {
			if err := ctx.checkAnnotation(f.Type); err != nil {
				return err
			}
		}
	}
	for _, def := range ctx.Enums {
		if isPrelude(def.Name) {
			continue
		}
		for _, v := range def.Variants {
			if err := ctx.checkAnnotation(v.Payload); err != nil {
				return err
			}
		}
	}
	for _, def := range ctx.Traits {
		for _, sig := range def.Methods {
			if err := ctx.checkSignature(sig.Params, sig.ReturnType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ctx *Context) checkSignature(params []parser.Param, ret *parser.TypeExpr) error {
	for _, p := range params {
		if err := ctx.checkAnnotation(p.Type); err != nil {
			return err
		}
	}
	return ctx.checkAnnotation(ret)
}

func (ctx *Context) checkAnnotation(t *parser.TypeExpr) error {
	for ; t != nil; t = t.Elem {
		if t.Name == "any" || t.Name == "fn" || ctx.IsType(t.Name) {
			continue
		}
		return errorAt(t.Posn, DefinitionError, "unknown type %s", t.Name)
	}
	return nil
}

func (ctx *Context) checkFunction(fn *Function) error {
	if err := ctx.checkSignature(fn.Params, fn.ReturnType); err != nil {
		return err
	}
	return walkBlock(fn.Body, ctx.checkNode)
}

// checkNode validates annotations and enum variant usage in a body.
func (ctx *Context) checkNode(node parser.Node) error {
	switch n := node.(type) {
	case *parser.LetStmt:
		return ctx.checkAnnotation(n.Type)
	case *parser.FuncLit:
		return ctx.checkSignature(n.Params, n.ReturnType)
	case *parser.VariantExpr:
		def, ok := ctx.Enums[n.Enum]
		if !ok {
			return nil
		}
		return checkVariantArity(def, n.Variant, len(n.Args), n.Posn)
	case *parser.VariantPattern:
		def, ok := ctx.Enums[n.Enum]
		if !ok {
			return nil
		}
		argc := 0
		if n.HasPayload {
			argc = 1
		}
		return checkVariantArity(def, n.Variant, argc, n.Posn)
	}
	return nil
}

func checkVariantArity(def *EnumDef, variant string, argc int, pos parser.Position) error {
	idx, ok := def.VariantIndex(variant)
	if !ok {
		return errorAt(pos, DefinitionError, "enum %s has no variant %s", def.Name, variant)
	}
	if def.Variants[idx].Payload != nil {
		if argc != 1 {
			return errorAt(pos, DefinitionError, "variant %s::%s takes exactly one value, got %d", def.Name, variant, argc)
		}
		return nil
	}
	if argc != 0 {
		return errorAt(pos, DefinitionError, "variant %s::%s takes no value, got %d", def.Name, variant, argc)
	}
	return nil
}

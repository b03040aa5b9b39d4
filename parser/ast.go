package parser

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Program is the root of a parsed TOG file.
type Program struct {
	Items []Item
}

// Item represents a top-level declaration or statement.
type Item interface {
	Node
	itemNode()
}

// Stmt represents a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression.
type Expr interface {
	Node
	exprNode()
}

// Pattern is the left-hand side of a match arm.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is an optional type annotation.
type TypeExpr struct {
	Name string    // int, float, string, bool, none, array or a declared type
	Elem *TypeExpr // element type for arrays, may be nil
	Posn Position
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "any"
	}
	if t.Name == "array" && t.Elem != nil {
		return "array[" + t.Elem.String() + "]"
	}
	return t.Name
}

// Param is one function parameter.
type Param struct {
	Name string
	Type *TypeExpr // may be nil
	Posn Position
}

// FuncDecl declares a named function or a method inside a struct/impl body.
type FuncDecl struct {
	Name       string
	Params     []Param
	HasSelf    bool // method declared with a leading self parameter
	ReturnType *TypeExpr
	Body       *BlockExpr
	Posn       Position
}

func (d *FuncDecl) Pos() Position { return d.Posn }
func (*FuncDecl) itemNode()       {}

// FieldDecl is one struct field.
type FieldDecl struct {
	Name string
	Type *TypeExpr
	Posn Position
}

// StructDecl declares a record type; Methods are inherent methods written inline.
type StructDecl struct {
	Name    string
	Fields  []FieldDecl
	Methods []*FuncDecl
	Posn    Position
}

func (d *StructDecl) Pos() Position { return d.Posn }
func (*StructDecl) itemNode()       {}

// VariantDecl is one enum alternative.
type VariantDecl struct {
	Name    string
	Payload *TypeExpr // nil when the variant carries no data
	Posn    Position
}

// EnumDecl declares a tagged union.
type EnumDecl struct {
	Name     string
	Variants []VariantDecl
	Posn     Position
}

func (d *EnumDecl) Pos() Position { return d.Posn }
func (*EnumDecl) itemNode()       {}

// MethodSig is a trait method signature without a body.
type MethodSig struct {
	Name       string
	Params     []Param
	HasSelf    bool
	ReturnType *TypeExpr
	Posn       Position
}

// TraitDecl declares a named set of method signatures.
type TraitDecl struct {
	Name    string
	Methods []MethodSig
	Posn    Position
}

func (d *TraitDecl) Pos() Position { return d.Posn }
func (*TraitDecl) itemNode()       {}

// ImplDecl attaches methods to a type, through a trait when Trait is set.
type ImplDecl struct {
	Trait   string // empty for inherent impls
	Type    string
	Methods []*FuncDecl
	Posn    Position
}

func (d *ImplDecl) Pos() Position { return d.Posn }
func (*ImplDecl) itemNode()       {}

// StmtItem is a statement written at the top level.
type StmtItem struct {
	Stmt Stmt
}

func (d *StmtItem) Pos() Position { return d.Stmt.Pos() }
func (*StmtItem) itemNode()       {}

// LetStmt introduces a binding in the current scope.
type LetStmt struct {
	Name  string
	Type  *TypeExpr // may be nil
	Value Expr
	Posn  Position
}

func (s *LetStmt) Pos() Position { return s.Posn }
func (*LetStmt) stmtNode()       {}

// ExprStmt evaluates an expression; without Semi it is the block's trailing value.
type ExprStmt struct {
	Expr Expr
	Semi bool
	Posn Position
}

func (s *ExprStmt) Pos() Position { return s.Posn }
func (*ExprStmt) stmtNode()       {}

// AssignStmt stores into a variable, a struct field or an array element.
type AssignStmt struct {
	Target Expr // *IdentifierExpr, *FieldExpr or *IndexExpr
	Value  Expr
	Posn   Position
}

func (s *AssignStmt) Pos() Position { return s.Posn }
func (*AssignStmt) stmtNode()       {}

// ReturnStmt exits the current function, optionally with a value.
type ReturnStmt struct {
	Result Expr // may be nil
	Posn   Position
}

func (s *ReturnStmt) Pos() Position { return s.Posn }
func (*ReturnStmt) stmtNode()       {}

// WhileStmt repeats while the condition is truthy.
type WhileStmt struct {
	Cond Expr
	Body *BlockExpr
	Posn Position
}

func (s *WhileStmt) Pos() Position { return s.Posn }
func (*WhileStmt) stmtNode()       {}

// ForStmt iterates over an array, range or string.
type ForStmt struct {
	Var      string
	Iterable Expr
	Body     *BlockExpr
	Posn     Position
}

func (s *ForStmt) Pos() Position { return s.Posn }
func (*ForStmt) stmtNode()       {}

// BreakStmt leaves the innermost loop.
type BreakStmt struct {
	Posn Position
}

func (s *BreakStmt) Pos() Position { return s.Posn }
func (*BreakStmt) stmtNode()       {}

// ContinueStmt skips to the next loop iteration.
type ContinueStmt struct {
	Posn Position
}

func (s *ContinueStmt) Pos() Position { return s.Posn }
func (*ContinueStmt) stmtNode()       {}

// IdentifierExpr refers to a variable or function name.
type IdentifierExpr struct {
	Name string
	Posn Position
}

func (e *IdentifierExpr) Pos() Position { return e.Posn }
func (*IdentifierExpr) exprNode()       {}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Posn  Position
}

func (e *IntLit) Pos() Position { return e.Posn }
func (*IntLit) exprNode()       {}
func (*IntLit) patternNode()    {}

// FloatLit is a floating point literal.
type FloatLit struct {
	Value float64
	Posn  Position
}

func (e *FloatLit) Pos() Position { return e.Posn }
func (*FloatLit) exprNode()       {}
func (*FloatLit) patternNode()    {}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
	Posn  Position
}

func (e *StringLit) Pos() Position { return e.Posn }
func (*StringLit) exprNode()       {}
func (*StringLit) patternNode()    {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	Posn  Position
}

func (e *BoolLit) Pos() Position { return e.Posn }
func (*BoolLit) exprNode()       {}
func (*BoolLit) patternNode()    {}

// NoneLit is the unit value literal.
type NoneLit struct {
	Posn Position
}

func (e *NoneLit) Pos() Position { return e.Posn }
func (*NoneLit) exprNode()       {}
func (*NoneLit) patternNode()    {}

// ArrayExpr is a literal array [a, b, ...].
type ArrayExpr struct {
	Elements []Expr
	Posn     Position
}

func (e *ArrayExpr) Pos() Position { return e.Posn }
func (*ArrayExpr) exprNode()       {}

// UnaryExpr represents prefix operator application.
type UnaryExpr struct {
	Op   string // "-" or "!"
	Expr Expr
	Posn Position
}

func (e *UnaryExpr) Pos() Position { return e.Posn }
func (*UnaryExpr) exprNode()       {}

// BinaryExpr represents infix operator application.
type BinaryExpr struct {
	Op          string // source spelling, e.g. "+" or "&&"
	Left, Right Expr
	Posn        Position
}

func (e *BinaryExpr) Pos() Position { return e.Posn }
func (*BinaryExpr) exprNode()       {}

// CallExpr invokes an expression with arguments.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Posn   Position
}

func (e *CallExpr) Pos() Position { return e.Posn }
func (*CallExpr) exprNode()       {}

// MethodCallExpr is receiver.method(args).
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Posn     Position
}

func (e *MethodCallExpr) Pos() Position { return e.Posn }
func (*MethodCallExpr) exprNode()       {}

// FieldExpr reads a struct field.
type FieldExpr struct {
	Object Expr
	Field  string
	Posn   Position
}

func (e *FieldExpr) Pos() Position { return e.Posn }
func (*FieldExpr) exprNode()       {}

// IndexExpr reads an element of an array, range or string.
type IndexExpr struct {
	Object Expr
	Index  Expr
	Posn   Position
}

func (e *IndexExpr) Pos() Position { return e.Posn }
func (*IndexExpr) exprNode()       {}

// BlockExpr is a braced statement sequence whose trailing expression is its value.
type BlockExpr struct {
	Stmts []Stmt
	Posn  Position
}

func (e *BlockExpr) Pos() Position { return e.Posn }
func (*BlockExpr) exprNode()       {}

// IfExpr is an expression-valued conditional. Else is a *BlockExpr or *IfExpr.
type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else Expr // may be nil
	Posn Position
}

func (e *IfExpr) Pos() Position { return e.Posn }
func (*IfExpr) exprNode()       {}

// MatchArm is one pattern => body clause.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
	Posn    Position
}

// MatchExpr selects the first arm whose pattern matches the scrutinee.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
	Posn      Position
}

func (e *MatchExpr) Pos() Position { return e.Posn }
func (*MatchExpr) exprNode()       {}

// FieldInit is one name: value pair in a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
	Posn  Position
}

// StructLit constructs a struct instance.
type StructLit struct {
	Type   string
	Fields []FieldInit
	Posn   Position
}

func (e *StructLit) Pos() Position { return e.Posn }
func (*StructLit) exprNode()       {}

// VariantExpr is Type::Name or Type::Name(args). For enums it constructs a
// variant, where a payload is exactly one argument; for other types it calls
// an associated function.
type VariantExpr struct {
	Enum    string
	Variant string
	Args    []Expr
	Posn    Position
}

func (e *VariantExpr) Pos() Position { return e.Posn }
func (*VariantExpr) exprNode()       {}

// FuncLit is an anonymous function that captures its defining scope.
type FuncLit struct {
	Params     []Param
	ReturnType *TypeExpr
	Body       *BlockExpr
	Posn       Position
}

func (e *FuncLit) Pos() Position { return e.Posn }
func (*FuncLit) exprNode()       {}

// WildcardPattern is `_`.
type WildcardPattern struct {
	Posn Position
}

func (p *WildcardPattern) Pos() Position { return p.Posn }
func (*WildcardPattern) patternNode()    {}

// BindingPattern binds the scrutinee to Name.
type BindingPattern struct {
	Name string
	Posn Position
}

func (p *BindingPattern) Pos() Position { return p.Posn }
func (*BindingPattern) patternNode()    {}

// VariantPattern matches Type::Variant, optionally binding its payload.
type VariantPattern struct {
	Enum       string
	Variant    string
	HasPayload bool   // written with parentheses
	Binder     string // empty or "_" binds nothing
	Posn       Position
}

func (p *VariantPattern) Pos() Position { return p.Posn }
func (*VariantPattern) patternNode()    {}

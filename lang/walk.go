package lang

import "github.com/tog-lang/tog/parser"

// visitor is called for every statement, expression and pattern reached by
// walk. Returning an error stops the walk.
type visitor func(node parser.Node) error

func walkBlock(b *parser.BlockExpr, visit visitor) error {
	if b == nil {
		return nil
	}
	return walkExpr(b, visit)
}

func walkStmt(s parser.Stmt, visit visitor) error {
	if err := visit(s); err != nil {
		return err
	}
	switch s := s.(type) {
	case *parser.LetStmt:
		return walkExpr(s.Value, visit)
	case *parser.ExprStmt:
		return walkExpr(s.Expr, visit)
	case *parser.AssignStmt:
		if err := walkExpr(s.Target, visit); err != nil {
			return err
		}
		return walkExpr(s.Value, visit)
	case *parser.ReturnStmt:
		if s.Result != nil {
			return walkExpr(s.Result, visit)
		}
	case *parser.WhileStmt:
		if err := walkExpr(s.Cond, visit); err != nil {
			return err
		}
		return walkBlock(s.Body, visit)
	case *parser.ForStmt:
		if err := walkExpr(s.Iterable, visit); err != nil {
			return err
		}
		return walkBlock(s.Body, visit)
	}
	return nil
}

func walkExprs(exprs []parser.Expr, visit visitor) error {
	for _, e := range exprs {
		if err := walkExpr(e, visit); err != nil {
			return err
		}
	}
	return nil
}

func walkExpr(e parser.Expr, visit visitor) error {
	if e == nil {
		return nil
	}
	if err := visit(e); err != nil {
		return err
	}
	switch e := e.(type) {
	case *parser.ArrayExpr:
		return walkExprs(e.Elements, visit)
	case *parser.UnaryExpr:
		return walkExpr(e.Expr, visit)
	case *parser.BinaryExpr:
		if err := walkExpr(e.Left, visit); err != nil {
			return err
		}
		return walkExpr(e.Right, visit)
	case *parser.CallExpr:
		if err := walkExpr(e.Callee, visit); err != nil {
			return err
		}
		return walkExprs(e.Args, visit)
	case *parser.MethodCallExpr:
		if err := walkExpr(e.Receiver, visit); err != nil {
			return err
		}
		return walkExprs(e.Args, visit)
	case *parser.FieldExpr:
		return walkExpr(e.Object, visit)
	case *parser.IndexExpr:
		if err := walkExpr(e.Object, visit); err != nil {
			return err
		}
		return walkExpr(e.Index, visit)
	case *parser.BlockExpr:
		for _, s := range e.Stmts {
			if err := walkStmt(s, visit); err != nil {
				return err
			}
		}
	case *parser.IfExpr:
		if err := walkExpr(e.Cond, visit); err != nil {
			return err
		}
		if err := walkBlock(e.Then, visit); err != nil {
			return err
		}
		return walkExpr(e.Else, visit)
	case *parser.MatchExpr:
		if err := walkExpr(e.Scrutinee, visit); err != nil {
			return err
		}
		for _, arm := range e.Arms {
			if err := visit(arm.Pattern); err != nil {
				return err
			}
			if err := walkExpr(arm.Body, visit); err != nil {
				return err
			}
		}
	case *parser.StructLit:
		for _, f := range e.Fields {
			if err := walkExpr(f.Value, visit); err != nil {
				return err
			}
		}
	case *parser.VariantExpr:
		return walkExprs(e.Args, visit)
	case *parser.FuncLit:
		return walkBlock(e.Body, visit)
	}
	return nil
}

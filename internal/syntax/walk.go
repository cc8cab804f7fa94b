package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, d := range n.Defs {
			Walk(d, v)
		}

	case *GlobalVar:
		Walk(n.Var, v)

	case *FuncDecl:
		Walk(n.Name, v)
		for _, p := range n.Params {
			Walk(p, v)
		}
		Walk(n.Body, v)

	case *Param:
		Walk(n.Name, v)

	// Expressions
	case *Name, *NumberLit, *BoolLit:
		// leaves

	case *CallExpr:
		Walk(n.Fun, v)
		walkList(n.Args, v)

	case *ConstructExpr:
		walkList(n.Args, v)

	case *IndexExpr:
		Walk(n.X, v)
		Walk(n.Index, v)

	case *BinaryExpr:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *PrefixExpr:
		Walk(n.X, v)

	case *PostfixExpr:
		Walk(n.X, v)

	case *MemberExpr:
		Walk(n.X, v)
		Walk(n.Sel, v)

	case *CondExpr:
		Walk(n.Cond, v)
		Walk(n.Then, v)
		Walk(n.Else, v)

	case *SeqExpr:
		walkList(n.List, v)

	// Statements
	case *EmptyStmt, *BranchStmt:
		// leaves

	case *ExprStmt:
		Walk(n.X, v)

	case *VarDecl:
		Walk(n.Name, v)
		if n.Init != nil {
			Walk(n.Init, v)
		}

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *IfStmt:
		Walk(n.Cond, v)
		Walk(n.Then, v)
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *ForStmt:
		if n.Init != nil {
			Walk(n.Init, v)
		}
		if n.Cond != nil {
			Walk(n.Cond, v)
		}
		if n.Post != nil {
			Walk(n.Post, v)
		}
		Walk(n.Body, v)

	case *WhileStmt:
		Walk(n.Cond, v)
		Walk(n.Body, v)

	case *DoStmt:
		Walk(n.Body, v)
		Walk(n.Cond, v)

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, v)
		}
	}
}

func walkList(list []Expr, v Visitor) {
	for _, x := range list {
		Walk(x, v)
	}
}

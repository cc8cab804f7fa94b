package syntax

import (
	"encoding/json"
	"io"

	"github.com/geraltigas/glslc/internal/types"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

type object = map[string]interface{}

// newObject starts the JSON object of n. Expressions carry their type once
// it is known.
func newObject(kind string, n Node) object {
	m := object{"type": kind, "pos": n.Pos().String()}
	if x, ok := n.(Expr); ok {
		if t := x.Type(); t != types.Error {
			m["exprtype"] = t.String()
		}
	}
	return m
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		m := newObject("Program", n)
		if n.Version != 0 {
			m["version"] = n.Version
		}
		defs := make([]interface{}, len(n.Defs))
		for i, d := range n.Defs {
			defs[i] = toJSON(d)
		}
		m["defs"] = defs
		return m

	case *GlobalVar:
		m := newObject("GlobalVar", n)
		if n.Storage != NoStorage {
			m["storage"] = n.Storage.String()
		}
		if len(n.Layout) > 0 {
			layout := make([]interface{}, len(n.Layout))
			for i, id := range n.Layout {
				layout[i] = object{"name": id.Name, "value": id.Value}
			}
			m["layout"] = layout
		}
		m["var"] = toJSON(n.Var)
		return m

	case *FuncDecl:
		m := newObject("FuncDecl", n)
		m["name"] = n.Name.Value
		m["result"] = n.Result.String()
		params := make([]interface{}, len(n.Params))
		for i, p := range n.Params {
			params[i] = toJSON(p)
		}
		m["params"] = params
		m["body"] = toJSON(n.Body)
		return m

	case *Param:
		m := newObject("Param", n)
		m["name"] = n.Name.Value
		m["paramtype"] = n.Type.String()
		if n.Qual != NoStorage {
			m["qual"] = n.Qual.String()
		}
		return m

	// Expressions
	case *Name:
		m := newObject("Name", n)
		m["value"] = n.Value
		return m

	case *NumberLit:
		m := newObject("NumberLit", n)
		m["kind"] = n.Kind.String()
		m["value"] = n.Value
		return m

	case *BoolLit:
		m := newObject("BoolLit", n)
		m["value"] = n.Value
		return m

	case *CallExpr:
		m := newObject("CallExpr", n)
		m["fun"] = n.Fun.Value
		m["args"] = exprList(n.Args)
		return m

	case *ConstructExpr:
		m := newObject("ConstructExpr", n)
		m["construct"] = n.Typ.String()
		m["args"] = exprList(n.Args)
		return m

	case *IndexExpr:
		m := newObject("IndexExpr", n)
		m["x"] = toJSON(n.X)
		m["index"] = toJSON(n.Index)
		return m

	case *BinaryExpr:
		m := newObject("BinaryExpr", n)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		m["y"] = toJSON(n.Y)
		return m

	case *PrefixExpr:
		m := newObject("PrefixExpr", n)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		return m

	case *PostfixExpr:
		m := newObject("PostfixExpr", n)
		m["op"] = n.Op.String()
		m["x"] = toJSON(n.X)
		return m

	case *MemberExpr:
		m := newObject("MemberExpr", n)
		m["x"] = toJSON(n.X)
		m["sel"] = n.Sel.Value
		return m

	case *CondExpr:
		m := newObject("CondExpr", n)
		m["cond"] = toJSON(n.Cond)
		m["then"] = toJSON(n.Then)
		m["else"] = toJSON(n.Else)
		return m

	case *SeqExpr:
		m := newObject("SeqExpr", n)
		m["list"] = exprList(n.List)
		return m

	// Statements
	case *EmptyStmt:
		return newObject("EmptyStmt", n)

	case *ExprStmt:
		m := newObject("ExprStmt", n)
		m["x"] = toJSON(n.X)
		return m

	case *VarDecl:
		m := newObject("VarDecl", n)
		m["name"] = n.Name.Value
		m["vartype"] = n.Type.String()
		if n.Const {
			m["const"] = true
		}
		if n.Init != nil {
			m["init"] = toJSON(n.Init)
		}
		return m

	case *BlockStmt:
		m := newObject("BlockStmt", n)
		stmts := make([]interface{}, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = toJSON(s)
		}
		m["stmts"] = stmts
		return m

	case *IfStmt:
		m := newObject("IfStmt", n)
		m["cond"] = toJSON(n.Cond)
		m["then"] = toJSON(n.Then)
		if n.Else != nil {
			m["else"] = toJSON(n.Else)
		}
		return m

	case *ForStmt:
		m := newObject("ForStmt", n)
		if n.Init != nil {
			m["init"] = toJSON(n.Init)
		}
		if n.Cond != nil {
			m["cond"] = toJSON(n.Cond)
		}
		if n.Post != nil {
			m["post"] = toJSON(n.Post)
		}
		m["body"] = toJSON(n.Body)
		return m

	case *WhileStmt:
		m := newObject("WhileStmt", n)
		m["cond"] = toJSON(n.Cond)
		m["body"] = toJSON(n.Body)
		return m

	case *DoStmt:
		m := newObject("DoStmt", n)
		m["body"] = toJSON(n.Body)
		m["cond"] = toJSON(n.Cond)
		return m

	case *BranchStmt:
		m := newObject("BranchStmt", n)
		m["token"] = n.Tok.String()
		return m

	case *ReturnStmt:
		m := newObject("ReturnStmt", n)
		if n.Result != nil {
			m["result"] = toJSON(n.Result)
		}
		return m
	}

	return object{"type": "Unknown"}
}

func exprList(list []Expr) []interface{} {
	out := make([]interface{}, len(list))
	for i, x := range list {
		out[i] = toJSON(x)
	}
	return out
}

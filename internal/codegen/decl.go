package codegen

import (
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// program lowers every definition of prog in three phases: function
// signatures, globals in source order, then function bodies. Calls may
// therefore refer to functions defined later in the file.
func (g *generator) program(prog *syntax.Program) {
	// Phase 1: declare functions.
	for _, d := range prog.Defs {
		fd, ok := d.(*syntax.FuncDecl)
		if !ok {
			continue
		}
		if err := g.declareFunc(fd); err != nil {
			g.report(err)
			if g.stop() {
				return
			}
		}
	}

	// Phase 2: globals and their initializers.
	for _, d := range prog.Defs {
		gv, ok := d.(*syntax.GlobalVar)
		if !ok {
			continue
		}
		if err := g.globalVar(gv); err != nil {
			g.report(errors.Wrapf(err, "global %s", gv.Var.Name.Value))
			if g.stop() {
				return
			}
		}
	}
	if g.conf.SynthesizePosition {
		if _, ok := g.scopes.Lookup(syntax.GLPosition); !ok {
			g.declareGlobal(syntax.GLPosition, types.Vec4, ir.Output, nil)
		}
	}
	if g.initFn != nil {
		g.em.BeginFunc(g.initFn)
		g.em.Ret(nil)
		g.em.EndFunc()
	}

	// Phase 3: function bodies.
	for _, d := range prog.Defs {
		fd, ok := d.(*syntax.FuncDecl)
		if !ok {
			continue
		}
		fn := g.funcs[fd.Name.Value]
		if fn == nil || fn.decl != fd {
			continue // declaration failed
		}
		if err := g.funcBody(fn); err != nil {
			g.report(errors.Wrapf(err, "function %s", fd.Name.Value))
			if g.stop() {
				return
			}
		}
	}
}

// declareFunc records the signature of fd.
func (g *generator) declareFunc(fd *syntax.FuncDecl) error {
	name := fd.Name.Value
	if prev := g.funcs[name]; prev != nil {
		return errorf(fd.Name.Pos(), "function %s redeclared (previous declaration at %s)",
			name, prev.decl.Pos())
	}

	params := make([]ir.Param, len(fd.Params))
	for i, p := range fd.Params {
		if !p.Type.IsValid() || p.Type == types.Void {
			return errorf(p.Pos(), "invalid parameter type %s", p.Type)
		}
		params[i] = ir.Param{Name: p.Name.Value, Type: p.Type, Out: p.Qual == syntax.Out}
	}

	fd.Name.Bind(fd.Result)
	g.funcs[name] = &function{
		decl:   fd,
		f:      g.em.DeclareFunc(name, fd.Result, params),
		result: fd.Result,
		params: params,
	}
	return nil
}

// globalVar declares a module-level variable and lowers its initializer
// into the init function.
func (g *generator) globalVar(gv *syntax.GlobalVar) error {
	d := gv.Var
	name := d.Name.Value
	storage := storageOf(gv.Storage)

	switch {
	case d.Type == types.Void || !d.Type.IsValid():
		return errorf(d.Name.Pos(), "invalid variable type %s", d.Type)
	case d.Init != nil && storage.External():
		return errorf(d.Init.Pos(), "cannot initialize %s variable %s", storage, name)
	case d.Const && d.Init == nil:
		return errorf(d.Name.Pos(), "missing initializer for const %s", name)
	}

	// The implicit gl_Position may be declared again by the program.
	if sym, ok := g.scopes.Lookup(name); ok && name == syntax.GLPosition && sym.Type == d.Type && d.Init == nil {
		d.Name.Bind(sym.Type)
		return nil
	}

	layout := make([]ir.Layout, len(gv.Layout))
	for i, id := range gv.Layout {
		layout[i] = ir.Layout{Name: id.Name, Value: id.Value}
	}

	// The initializer is resolved before the name is in scope. A failing
	// initializer still declares the variable.
	var init operand
	var initErr error
	if d.Init != nil {
		g.em.BeginFunc(g.initFunc())
		defer g.em.EndFunc()
		init, initErr = g.expr(d.Init)
	}

	sym, err := g.declareGlobal(name, d.Type, storage, layout)
	if err != nil {
		return errorf(d.Name.Pos(), "%v", err)
	}
	sym.Const = d.Const
	d.Name.Bind(d.Type)
	if initErr != nil {
		return initErr
	}

	if d.Init != nil {
		v, err := g.initValue(d.Type, init)
		if err != nil {
			return err
		}
		g.em.Store(v, sym.Handle)
	}
	return nil
}

func (g *generator) declareGlobal(name string, typ types.AstType, storage ir.Storage, layout []ir.Layout) (*types.Symbol[value.Value], error) {
	addr := g.em.DeclareGlobal(ir.Global{Name: name, Type: typ, Storage: storage, Layout: layout})
	return g.scopes.Declare(name, typ, addr)
}

// initFunc returns the function running global initializers, creating
// it on first use.
func (g *generator) initFunc() *llir.Func {
	if g.initFn == nil {
		g.initFn = g.em.DeclareFunc(InitFunc, types.Void, nil)
	}
	return g.initFn
}

func storageOf(s syntax.Storage) ir.Storage {
	switch s {
	case syntax.Uniform:
		return ir.Uniform
	case syntax.In:
		return ir.Input
	case syntax.Out:
		return ir.Output
	}
	return ir.Private
}

// funcBody lowers the body of fn. Parameters are bound in the function
// scope, which the top-level statements of the body share. Blocks left
// without a terminator return the zero value of the result type.
func (g *generator) funcBody(fn *function) error {
	fd := fn.decl
	g.em.BeginFunc(fn.f)
	g.scopes.Enter()
	g.fn = fn
	defer func() {
		for _, blk := range g.em.Unterminated() {
			g.em.SetInsertPoint(blk)
			if fn.result == types.Void {
				g.em.Ret(nil)
			} else {
				g.em.Ret(g.em.Zero(fn.result))
			}
		}
		g.loops = nil
		g.fn = nil
		g.scopes.Exit()
		g.em.EndFunc()
	}()

	for i, p := range fd.Params {
		arg := fn.f.Params[i]
		var addr value.Value = arg
		if !fn.params[i].Out {
			addr = g.em.Alloca(p.Type, p.Name.Value)
			g.em.Store(arg, addr)
		}
		if _, err := g.scopes.Declare(p.Name.Value, p.Type, addr); err != nil {
			return errorf(p.Name.Pos(), "%v", err)
		}
		p.Name.Bind(p.Type)
	}

	if fd.Name.Value == "main" && g.initFn != nil {
		g.em.Call(g.initFn)
	}

	return g.stmts(fd.Body.Stmts)
}

// Package codegen lowers a parsed shader program into IR by walking the
// syntax tree and driving an ir.Emitter.
package codegen

import (
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/geraltigas/glslc/internal/ir"
	"github.com/geraltigas/glslc/internal/syntax"
	"github.com/geraltigas/glslc/internal/types"
)

// InitFunc is the name of the function that runs global initializers.
// main calls it on entry.
const InitFunc = "glslc.init"

// Config specifies the configuration for lowering.
type Config struct {
	// Error is called for each lowering error.
	// If nil, errors are only returned.
	Error ErrorHandler

	// Strict stops lowering at the first failing definition. Otherwise
	// the failing definition is skipped and lowering continues.
	Strict bool

	// SynthesizePosition declares out vec4 gl_Position if the program
	// does not declare it.
	SynthesizePosition bool
}

// Generate lowers prog into em. It returns the first error encountered,
// or nil. In relaxed mode every error is reported through conf.Error.
func Generate(prog *syntax.Program, em ir.Emitter, conf *Config) error {
	if conf == nil {
		conf = &Config{}
	}
	g := &generator{
		conf:   conf,
		em:     em,
		scopes: types.NewChain[value.Value](),
		funcs:  make(map[string]*function),
	}
	g.program(prog)
	if g.errors > 0 {
		return g.first
	}
	return nil
}

// generator holds the state of one lowering walk.
type generator struct {
	conf   *Config
	em     ir.Emitter
	scopes *types.Chain[value.Value] // name -> storage address

	funcs  map[string]*function
	initFn *llir.Func // nil until a global has an initializer
	fn     *function  // function being lowered
	loops  []loop     // enclosing loops, innermost last

	// Error tracking
	errors int
	first  error
}

// function is a declared function of the program.
type function struct {
	decl   *syntax.FuncDecl
	f      *llir.Func
	result types.AstType
	params []ir.Param
}

// loop holds the branch targets of an enclosing loop.
type loop struct {
	brk, cont *llir.Block
}

// report records err, which wraps an *Error, and passes it to the
// error handler.
func (g *generator) report(err error) {
	if g.errors == 0 {
		g.first = err
	}
	g.errors++

	if g.conf.Error == nil {
		return
	}
	if e, ok := errors.Cause(err).(*Error); ok {
		g.conf.Error(e.Pos, e.Msg)
		return
	}
	g.conf.Error(syntax.Pos{}, err.Error())
}

// stop reports whether lowering should end after an error.
func (g *generator) stop() bool {
	return g.conf.Strict && g.errors > 0
}

// Package passes runs function-level transformations over emitted IR.
package passes

import (
	"fmt"
	"io"
	"os"

	llir "github.com/llir/llvm/ir"
	"github.com/pkg/errors"

	"github.com/geraltigas/glslc/internal/ir"
)

// Pass describes a single IR pass.
type Pass struct {
	Name string
	Fn   func(f *llir.Func)
}

// Default is the pipeline the driver runs on every function.
var Default = []Pass{
	{Name: "deadblocks", Fn: RemoveUnreachable},
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string    // dump IR before this pass ("*" for all)
	DumpAfter  string    // dump IR after this pass ("*" for all)
	Verify     bool      // verify IR before/after each pass
	DumpFunc   string    // restrict dumps to this function name
	Out        io.Writer // dump destination; os.Stderr if nil
}

// Run executes the given passes on every defined function of m.
func Run(m *llir.Module, passes []Pass, cfg Config) error {
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		if err := RunFunc(f, passes, cfg); err != nil {
			return err
		}
	}
	return nil
}

// RunFunc executes the given passes on f in order.
func RunFunc(f *llir.Func, passes []Pass, cfg Config) error {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	name := f.Name()

	for _, p := range passes {
		if shouldDump(cfg.DumpBefore, p.Name) && matchFunc(cfg.DumpFunc, name) {
			dump(out, "before", p.Name, f)
		}

		if cfg.Verify {
			if err := ir.VerifyFunc(f); err != nil {
				return errors.Wrapf(err, "verify before %s", p.Name)
			}
		}

		p.Fn(f)

		if cfg.Verify {
			if err := ir.VerifyFunc(f); err != nil {
				return errors.Wrapf(err, "verify after %s", p.Name)
			}
		}

		if shouldDump(cfg.DumpAfter, p.Name) && matchFunc(cfg.DumpFunc, name) {
			dump(out, "after", p.Name, f)
		}
	}
	return nil
}

func dump(w io.Writer, when, pass string, f *llir.Func) {
	fmt.Fprintf(w, "--- %s %s (%s) ---\n", when, pass, f.Name())
	if err := f.AssignIDs(); err != nil {
		fmt.Fprintf(w, "; %v\n", err)
	}
	fmt.Fprintln(w, f.LLString())
	fmt.Fprintln(w)
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func matchFunc(filter, name string) bool {
	return filter == "" || filter == name
}

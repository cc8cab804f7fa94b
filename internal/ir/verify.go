package ir

import (
	"fmt"
	"strings"

	llir "github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
)

// Verify checks the structural integrity of every defined function of m.
// It returns an error describing all violations found, or nil if valid.
func Verify(m *llir.Module) error {
	var errs []string
	for _, f := range m.Funcs {
		errs = append(errs, verifyFunc(f)...)
	}
	return combineErrors(errs)
}

// VerifyFunc checks a single function.
func VerifyFunc(f *llir.Func) error {
	return combineErrors(verifyFunc(f))
}

func verifyFunc(f *llir.Func) []string {
	var errs []string
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// Declarations have no body.
	if len(f.Blocks) == 0 {
		return nil
	}
	name := f.Name()

	blocks := make(map[*llir.Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		blocks[b] = true
	}

	preds := make(map[*llir.Block][]*llir.Block)
	for _, b := range f.Blocks {
		if b.Term == nil {
			add("func %s, block %s: missing terminator", name, b.Name())
			continue
		}
		for _, s := range b.Term.Succs() {
			if !blocks[s] {
				add("func %s, block %s: branch to block %s of another function",
					name, b.Name(), s.Name())
				continue
			}
			preds[s] = append(preds[s], b)
		}
		if ret, ok := b.Term.(*llir.TermRet); ok {
			verifyRet(f, b, ret, add)
		}
	}

	entry := f.Blocks[0]
	if n := len(preds[entry]); n != 0 {
		add("func %s: entry block has %d predecessors, want 0", name, n)
	}

	for _, b := range f.Blocks {
		seenNonPhi := false
		for _, inst := range b.Insts {
			phi, ok := inst.(*llir.InstPhi)
			if !ok {
				seenNonPhi = true
				continue
			}
			if seenNonPhi {
				add("func %s, block %s: phi after non-phi instruction", name, b.Name())
			}
			verifyPhi(name, b, phi, preds[b], add)
		}
	}
	return errs
}

func verifyRet(f *llir.Func, b *llir.Block, ret *llir.TermRet, add func(string, ...interface{})) {
	want := f.Sig.RetType
	switch {
	case ret.X == nil && !want.Equal(lltypes.Void):
		add("func %s, block %s: void return in function returning %s", f.Name(), b.Name(), want)
	case ret.X != nil && !ret.X.Type().Equal(want):
		add("func %s, block %s: return of %s in function returning %s",
			f.Name(), b.Name(), ret.X.Type(), want)
	}
}

func verifyPhi(fname string, b *llir.Block, phi *llir.InstPhi, preds []*llir.Block, add func(string, ...interface{})) {
	if len(phi.Incs) != len(preds) {
		add("func %s, block %s: phi has %d incoming values, block has %d predecessors",
			fname, b.Name(), len(phi.Incs), len(preds))
	}
	for _, inc := range phi.Incs {
		pred, ok := inc.Pred.(*llir.Block)
		if !ok || !containsBlock(preds, pred) {
			add("func %s, block %s: phi incoming from non-predecessor %s",
				fname, b.Name(), inc.Pred.Ident())
		}
	}
}

func containsBlock(list []*llir.Block, b *llir.Block) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

// combineErrors creates an error from a list of violations, or returns nil.
func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Errorf("IR verification failed:\n  %s", strings.Join(errs, "\n  "))
}

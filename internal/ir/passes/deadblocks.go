package passes

import (
	llir "github.com/llir/llvm/ir"
)

// RemoveUnreachable deletes the blocks that cannot be reached from the
// entry block, and drops the phi operands flowing in from them.
func RemoveUnreachable(f *llir.Func) {
	if len(f.Blocks) == 0 {
		return
	}

	live := make(map[*llir.Block]bool, len(f.Blocks))
	work := []*llir.Block{f.Blocks[0]}
	live[f.Blocks[0]] = true
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if b.Term == nil {
			continue
		}
		for _, s := range b.Term.Succs() {
			if !live[s] {
				live[s] = true
				work = append(work, s)
			}
		}
	}

	if len(live) == len(f.Blocks) {
		return
	}

	kept := f.Blocks[:0]
	for _, b := range f.Blocks {
		if live[b] {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(f.Blocks); i++ {
		f.Blocks[i] = nil
	}
	f.Blocks = kept

	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			phi, ok := inst.(*llir.InstPhi)
			if !ok {
				continue
			}
			incs := phi.Incs[:0]
			for _, inc := range phi.Incs {
				if pred, ok := inc.Pred.(*llir.Block); ok && live[pred] {
					incs = append(incs, inc)
				}
			}
			phi.Incs = incs
		}
	}
}

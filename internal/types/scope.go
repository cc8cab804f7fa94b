package types

import (
	"github.com/pkg/errors"
)

// ErrRedeclared is returned when a name is declared twice in one scope.
var ErrRedeclared = errors.New("redeclared in this block")

// Symbol is a named binding: the declared type and the storage handle
// the code emitter produced for it.
type Symbol[H any] struct {
	Name   string
	Type   AstType
	Handle H
	Const  bool
}

// scope is one lexical scope; the outermost scope of a chain holds the
// globals of a program.
type scope[H any] struct {
	parent *scope[H]
	elems  map[string]*Symbol[H]
}

func newScope[H any](parent *scope[H]) *scope[H] {
	return &scope[H]{parent: parent, elems: make(map[string]*Symbol[H])}
}

// insert adds sym to s. If s already binds the name, insert returns the
// existing symbol and leaves s unchanged.
func (s *scope[H]) insert(sym *Symbol[H]) *Symbol[H] {
	if existing := s.elems[sym.Name]; existing != nil {
		return existing
	}
	s.elems[sym.Name] = sym
	return nil
}

// lookupParent searches s and then each enclosing scope.
func (s *scope[H]) lookupParent(name string) *Symbol[H] {
	for sc := s; sc != nil; sc = sc.parent {
		if sym := sc.elems[name]; sym != nil {
			return sym
		}
	}
	return nil
}

// Chain tracks the innermost open scope of a walk over nested blocks.
// Every Enter must be paired with an Exit.
type Chain[H any] struct {
	root *scope[H]
	cur  *scope[H]
}

// NewChain returns a chain holding only the outermost scope.
func NewChain[H any]() *Chain[H] {
	root := newScope[H](nil)
	return &Chain[H]{root: root, cur: root}
}

// Enter opens a child of the current scope and makes it current.
func (c *Chain[H]) Enter() {
	c.cur = newScope(c.cur)
}

// Exit closes the current scope; its parent becomes current.
// Exiting the root scope is a bug in the caller.
func (c *Chain[H]) Exit() {
	if c.cur == c.root {
		panic("types: Exit called on root scope")
	}
	c.cur = c.cur.parent
}

// Declare binds name in the current scope. A binding of the same name in
// an enclosing scope is shadowed; one in the current scope is an error.
func (c *Chain[H]) Declare(name string, typ AstType, h H) (*Symbol[H], error) {
	sym := &Symbol[H]{Name: name, Type: typ, Handle: h}
	if existing := c.cur.insert(sym); existing != nil {
		return existing, errors.Wrap(ErrRedeclared, name)
	}
	return sym, nil
}

// Lookup resolves name in the current scope, then in each enclosing scope.
func (c *Chain[H]) Lookup(name string) (*Symbol[H], bool) {
	sym := c.cur.lookupParent(name)
	return sym, sym != nil
}

package types

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// Handles are plain ints in these tests.

func TestScopeInsertAndLookup(t *testing.T) {
	s := newScope[int](nil)

	x := &Symbol[int]{Name: "x", Type: Int, Handle: 1}
	if existing := s.insert(x); existing != nil {
		t.Errorf("insert() returned non-nil for first insert")
	}
	if s.lookupParent("x") != x {
		t.Errorf("lookupParent() did not return inserted symbol")
	}

	// Insert duplicate
	if existing := s.insert(&Symbol[int]{Name: "x", Type: Float, Handle: 2}); existing != x {
		t.Errorf("insert() should return first symbol for duplicate")
	}
	if s.lookupParent("x").Type != Int {
		t.Errorf("duplicate insert() overwrote the first symbol")
	}
}

func TestScopeLookupParent(t *testing.T) {
	parent := newScope[int](nil)
	child := newScope(parent)

	x := &Symbol[int]{Name: "x", Type: Int, Handle: 1}
	parent.insert(x)

	if child.lookupParent("x") != x {
		t.Errorf("lookupParent() did not find parent's symbol")
	}
	if child.elems["x"] != nil {
		t.Errorf("parent's symbol leaked into the child scope")
	}
	if s := child.lookupParent("y"); s != nil {
		t.Errorf("lookupParent(y) = %v, want nil", s)
	}
}

func TestChainShadowing(t *testing.T) {
	c := NewChain[int]()
	if _, err := c.Declare("x", Int, 1); err != nil {
		t.Fatal(err)
	}

	c.Enter()
	if _, err := c.Declare("x", Float, 2); err != nil {
		t.Fatalf("shadowing declaration failed: %v", err)
	}
	s, ok := c.Lookup("x")
	if !ok || s.Handle != 2 || s.Type != Float {
		t.Errorf("inner Lookup(x) = %+v, want inner binding", s)
	}
	c.Exit()

	s, ok = c.Lookup("x")
	if !ok || s.Handle != 1 || s.Type != Int {
		t.Errorf("outer Lookup(x) = %+v, want outer binding", s)
	}
	if _, ok := c.Lookup("y"); ok {
		t.Errorf("Lookup(y) found an undeclared name")
	}
}

func TestChainRedeclaration(t *testing.T) {
	c := NewChain[int]()
	first, _ := c.Declare("x", Int, 1)

	existing, err := c.Declare("x", Float, 2)
	if err == nil {
		t.Fatal("Declare() of duplicate name succeeded")
	}
	if errors.Cause(err) != ErrRedeclared {
		t.Errorf("Cause = %v, want ErrRedeclared", errors.Cause(err))
	}
	if !strings.HasPrefix(err.Error(), "x: ") {
		t.Errorf("error %q does not name the symbol", err)
	}
	if existing != first {
		t.Errorf("Declare() should return the existing symbol")
	}
}

func TestChainEnterExit(t *testing.T) {
	c := NewChain[int]()
	c.Declare("g", Int, 1)
	c.Enter()
	c.Declare("a", Int, 2)
	c.Enter()
	c.Declare("b", Int, 3)

	for _, name := range []string{"g", "a", "b"} {
		if _, ok := c.Lookup(name); !ok {
			t.Errorf("Lookup(%s) failed two scopes deep", name)
		}
	}
	c.Exit()
	if _, ok := c.Lookup("b"); ok {
		t.Errorf("b visible after its scope closed")
	}
	c.Exit()
	if _, ok := c.Lookup("a"); ok {
		t.Errorf("a visible after its scope closed")
	}
	if c.cur != c.root {
		t.Errorf("Exit() did not return to root")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Exit() on root did not panic")
		}
	}()
	c.Exit()
}

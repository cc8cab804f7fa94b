package syntax

import (
	"strings"
	"testing"
)

func TestStreamPeekPastEnd(t *testing.T) {
	s := Tokenize("test", strings.NewReader("a b"), nil)

	if got := s.Peek(0).Lit; got != "a" {
		t.Errorf("Peek(0) = %q, want a", got)
	}
	if got := s.Peek(1).Lit; got != "b" {
		t.Errorf("Peek(1) = %q, want b", got)
	}
	for _, off := range []int{2, 3, 100} {
		if got := s.Peek(off).Tok; got != _EOF {
			t.Errorf("Peek(%d) = %s, want EOF", off, got)
		}
	}
}

func TestStreamNextStopsAtEOF(t *testing.T) {
	s := Tokenize("test", strings.NewReader("x"), nil)

	if it := s.Next(); it.Tok != _Name {
		t.Fatalf("first Next = %s, want NAME", it.Tok)
	}
	for i := 0; i < 3; i++ {
		if it := s.Next(); it.Tok != _EOF {
			t.Fatalf("Next past end = %s, want EOF", it.Tok)
		}
	}
	if got := s.Mark(); got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
}

func TestStreamMarkReset(t *testing.T) {
	s := Tokenize("test", strings.NewReader("a + b ;"), nil)

	m := s.Mark()
	s.Next()
	s.Next()
	if got := s.Peek(0).Lit; got != "b" {
		t.Fatalf("Peek(0) = %q, want b", got)
	}
	s.Reset(m)
	if got := s.Peek(0).Lit; got != "a" {
		t.Errorf("after Reset, Peek(0) = %q, want a", got)
	}
	if got := s.Furthest().Lit; got != "b" {
		t.Errorf("Furthest = %q, want b", got)
	}
}

func TestNewStreamAppendsEOF(t *testing.T) {
	s := NewStream([]Item{{Tok: _Name, Lit: "a", Pos: NewPos("", 1, 1)}})
	items := s.Items()
	if len(items) != 2 || items[1].Tok != _EOF {
		t.Fatalf("items = %v, want trailing EOF", items)
	}
	if !items[1].Pos.IsValid() {
		t.Error("synthesized EOF has no position")
	}

	empty := NewStream(nil)
	if got := empty.Peek(0).Tok; got != _EOF {
		t.Errorf("empty stream Peek(0) = %s, want EOF", got)
	}
}

func TestTokenizeKinds(t *testing.T) {
	s := Tokenize("test", strings.NewReader("1u 2.0f"), nil)
	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Kind != UintLit || items[1].Kind != FloatLit {
		t.Errorf("kinds = %s, %s; want uint, float", items[0].Kind, items[1].Kind)
	}
}

package syntax

import "io"

// Item is one scanned token.
type Item struct {
	Tok  Token
	Lit  string
	Kind LitKind // only valid when Tok == _Number
	Pos  Pos
}

// Mark is a saved cursor position of a Stream.
type Mark int

// Stream is a finite, fully scanned token sequence with a cursor.
// It always ends in an _EOF item; reading past the end keeps returning it.
// Backtracking is done by saving the cursor with Mark and restoring it
// with Reset; items are never modified.
type Stream struct {
	items []Item
	cur   int
	far   int // furthest cursor position reached so far
}

// Tokenize scans all of src into a Stream. Lexical errors are reported
// through errh and appear in the stream as _Error items.
func Tokenize(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Stream {
	s := NewScanner(filename, src, errh)
	var items []Item
	for {
		s.Next()
		items = append(items, Item{Tok: s.Token(), Lit: s.Literal(), Kind: s.LitKind(), Pos: s.Pos()})
		if s.Token() == _EOF {
			break
		}
	}
	return NewStream(items)
}

// NewStream returns a stream over items, appending an _EOF item if the
// sequence does not end in one.
func NewStream(items []Item) *Stream {
	if n := len(items); n == 0 || items[n-1].Tok != _EOF {
		var pos Pos
		if n > 0 {
			pos = items[n-1].Pos
		}
		items = append(items, Item{Tok: _EOF, Pos: pos})
	}
	return &Stream{items: items}
}

// Peek returns the item offset positions after the cursor.
func (s *Stream) Peek(offset int) Item {
	i := s.cur + offset
	if i >= len(s.items) {
		i = len(s.items) - 1
	}
	if i < 0 {
		i = 0
	}
	return s.items[i]
}

// Next returns the item at the cursor and advances past it.
// The cursor never moves past the final _EOF item.
func (s *Stream) Next() Item {
	it := s.items[s.cur]
	if s.cur < len(s.items)-1 {
		s.cur++
		if s.cur > s.far {
			s.far = s.cur
		}
	}
	return it
}

// Mark returns the current cursor position.
func (s *Stream) Mark() Mark {
	return Mark(s.cur)
}

// Reset moves the cursor back to m.
func (s *Stream) Reset(m Mark) {
	s.cur = int(m)
}

// Furthest returns the item at the furthest position the cursor has
// reached. Syntax errors are reported there.
func (s *Stream) Furthest() Item {
	return s.items[s.far]
}

// Items returns every item of the stream, including the final _EOF.
func (s *Stream) Items() []Item {
	return s.items
}

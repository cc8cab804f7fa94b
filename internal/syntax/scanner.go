package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Scanner performs lexical analysis on shader source code.
type Scanner struct {
	source

	tok    Token
	lit    string  // token text (identifier, number, operator spelling)
	kind   LitKind // only valid when tok == _Number
	tokPos Pos

	litBuf strings.Builder
}

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: *newSource(filename, src, errh)}
}

// Next advances to the next token.
func (s *Scanner) Next() {
redo:
	for isWhitespace(s.ch) {
		s.nextch()
	}

	s.tokPos = s.pos()

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch), s.ch == '.' && isDigit(s.peekch()):
		s.scanNumber()

	case s.ch == '#':
		s.scanDirective()

	case isOperatorStart(s.ch):
		if s.scanOperator() {
			goto redo
		}

	default:
		s.error(fmt.Sprintf("unexpected character %q", s.ch))
		s.tok = _Error
		s.lit = string(s.ch)
		s.nextch()
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's text.
func (s *Scanner) Literal() string {
	return s.lit
}

// LitKind returns the current literal's kind (only valid when Token() == _Number).
func (s *Scanner) LitKind() LitKind {
	return s.kind
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
	s.nextch()
}

// scanIdent scans an identifier, keyword or type name.
func (s *Scanner) scanIdent() {
	s.litBuf.Reset()
	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
	}
	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans digits [. digits] [exponent] [suffix].
// A fraction or an exponent makes the literal double, or float with an
// f suffix; a u suffix makes an integer literal unsigned. An f suffix
// needs a fraction or an exponent, so 3f is an error.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.tok = _Number
	s.kind = IntLit

	for isDigit(s.ch) {
		s.continueLit()
	}
	if s.ch == '.' {
		s.kind = DoubleLit
		s.continueLit()
		for isDigit(s.ch) {
			s.continueLit()
		}
	}
	if lower(s.ch) == 'e' {
		s.kind = DoubleLit
		s.continueLit()
		if s.ch == '+' || s.ch == '-' {
			s.continueLit()
		}
		if !isDigit(s.ch) {
			s.error("exponent has no digits")
			s.tok = _Error
		}
		for isDigit(s.ch) {
			s.continueLit()
		}
	}

	switch lower(s.ch) {
	case 'f':
		if s.kind == IntLit {
			s.error("float suffix on integer literal")
			s.tok = _Error
		}
		s.kind = FloatLit
		s.continueLit()
	case 'u':
		if s.kind != IntLit {
			s.error("unsigned suffix on floating-point literal")
			s.tok = _Error
		}
		s.kind = UintLit
		s.continueLit()
	}

	if isLetter(s.ch) || isDigit(s.ch) || s.ch == '.' {
		for isLetter(s.ch) || isDigit(s.ch) || s.ch == '.' {
			s.continueLit()
		}
		s.error(fmt.Sprintf("malformed number %q", s.litBuf.String()))
		s.tok = _Error
	}

	s.lit = s.litBuf.String()
}

// scanDirective scans a preprocessor-style directive. Only #version is
// recognized.
func (s *Scanner) scanDirective() {
	s.nextch() // skip #
	for s.ch == ' ' || s.ch == '\t' {
		s.nextch()
	}
	s.litBuf.Reset()
	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
	}
	name := s.litBuf.String()
	if name == "version" {
		s.tok = _Version
		s.lit = "#version"
		return
	}
	s.error(fmt.Sprintf("unknown directive #%s", name))
	s.tok = _Error
	s.lit = "#" + name
}

// op sets the current token to tok, or to asg when the next character
// is '='. asg is _EOF for operators without such a form.
func (s *Scanner) op(tok, asg Token) {
	if asg != _EOF && s.ch == '=' {
		s.nextch()
		tok = asg
	}
	s.tok = tok
	s.lit = tok.String()
}

// scanOperator scans an operator or delimiter.
// Returns true if a comment was skipped (caller should rescan).
func (s *Scanner) scanOperator() bool {
	ch := s.ch
	s.nextch()

	switch ch {
	case '+':
		if s.ch == '+' {
			s.nextch()
			s.op(_Inc, _EOF)
			break
		}
		s.op(_Add, _AddAssign)
	case '-':
		if s.ch == '-' {
			s.nextch()
			s.op(_Dec, _EOF)
			break
		}
		s.op(_Sub, _SubAssign)
	case '*':
		s.op(_Mul, _MulAssign)
	case '/':
		switch s.ch {
		case '/':
			s.skipLineComment()
			return true
		case '*':
			s.skipBlockComment()
			return true
		}
		s.op(_Div, _DivAssign)
	case '%':
		s.op(_Rem, _RemAssign)
	case '&':
		if s.ch == '&' {
			s.nextch()
			s.op(_AndAnd, _EOF)
			break
		}
		s.op(_And, _AndAssign)
	case '|':
		if s.ch == '|' {
			s.nextch()
			s.op(_OrOr, _EOF)
			break
		}
		s.op(_Or, _OrAssign)
	case '^':
		if s.ch == '^' {
			s.nextch()
			s.op(_XorXor, _EOF)
			break
		}
		s.op(_Xor, _XorAssign)
	case '<':
		if s.ch == '<' {
			s.nextch()
			s.op(_Shl, _ShlAssign)
			break
		}
		s.op(_Lss, _Leq)
	case '>':
		if s.ch == '>' {
			s.nextch()
			s.op(_Shr, _ShrAssign)
			break
		}
		s.op(_Gtr, _Geq)
	case '=':
		s.op(_Assign, _Eql)
	case '!':
		s.op(_Not, _Neq)
	case '~':
		s.op(_Tilde, _EOF)
	case '?':
		s.op(_Question, _EOF)
	case ':':
		s.op(_Colon, _EOF)
	case '(':
		s.op(_Lparen, _EOF)
	case ')':
		s.op(_Rparen, _EOF)
	case '[':
		s.op(_Lbrack, _EOF)
	case ']':
		s.op(_Rbrack, _EOF)
	case '{':
		s.op(_Lbrace, _EOF)
	case '}':
		s.op(_Rbrace, _EOF)
	case ',':
		s.op(_Comma, _EOF)
	case ';':
		s.op(_Semi, _EOF)
	case '.':
		s.op(_Dot, _EOF)
	}

	return false
}

// skipLineComment skips a line comment (from // to end of line).
func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// skipBlockComment skips a /* */ comment; the opening / has been consumed
// and s.ch is the '*'.
func (s *Scanner) skipBlockComment() {
	line, col := s.line, s.col-1
	s.nextch()
	for s.ch >= 0 {
		if s.ch == '*' && s.peekch() == '/' {
			s.nextch()
			s.nextch()
			return
		}
		s.nextch()
	}
	if s.errh != nil {
		s.errh(line, col, "comment not terminated")
	}
}

package syntax

import (
	"fmt"
	"testing"
)

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{_EOF, "EOF"},
		{_Error, "ERROR"},
		{_Name, "NAME"},
		{_TypeName, "TYPE"},
		{_Number, "NUMBER"},
		{_Version, "#version"},
		{_ShlAssign, "<<="},
		{_XorXor, "^^"},
		{_Question, "?"},
		{_Tilde, "~"},
		{_Inc, "++"},
		{_Dot, "."},
		{_Uniform, "uniform"},
		{_While, "while"},
	}

	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("Token(%d).String() = %q, want %q", tt.tok, got, tt.want)
		}
	}
	if got := (tokenCount + 1).String(); got != fmt.Sprintf("token(%d)", tokenCount+1) {
		t.Errorf("out of range token prints as %q", got)
	}
}

func TestTokenNamesComplete(t *testing.T) {
	for tok := Token(0); tok < tokenCount; tok++ {
		if tokenNames[tok] == "" {
			t.Errorf("token %d has no name", tok)
		}
	}
}

func TestTokenClasses(t *testing.T) {
	for kw, tok := range keywords {
		if !tok.IsKeyword() {
			t.Errorf("%q: IsKeyword() = false", kw)
		}
		if tok.IsOperator() {
			t.Errorf("%q: IsOperator() = true", kw)
		}
		if tok.String() != kw {
			t.Errorf("keyword %q prints as %q", kw, tok.String())
		}
	}
	for _, tok := range []Token{_Assign, _OrOr, _Shl, _Tilde} {
		if !tok.IsOperator() || tok.IsKeyword() {
			t.Errorf("%s: wrong class", tok)
		}
	}
	if !_EOF.IsEOF() || _Semi.IsEOF() {
		t.Error("IsEOF misclassifies tokens")
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		ident string
		want  Token
	}{
		{"if", _If},
		{"uniform", _Uniform},
		{"layout", _Layout},
		{"true", _True},
		{"float", _TypeName},
		{"vec3", _TypeName},
		{"mat4", _TypeName},
		{"void", _TypeName},
		{"main", _Name},
		{"gl_Position", _Name},
		{"vec5", _Name},
		{"error", _Name},
	}

	for _, tt := range tests {
		if got := LookupKeyword(tt.ident); got != tt.want {
			t.Errorf("LookupKeyword(%q) = %s, want %s", tt.ident, got, tt.want)
		}
	}
}

func TestLitKindString(t *testing.T) {
	tests := []struct {
		kind LitKind
		want string
	}{
		{IntLit, "int"},
		{UintLit, "uint"},
		{FloatLit, "float"},
		{DoubleLit, "double"},
		{LitKind(9), "LitKind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("LitKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

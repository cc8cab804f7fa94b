// Package syntax implements lexical and syntactic analysis for the
// shading language: a scanner, a rewindable token stream and a
// backtracking recursive-descent parser producing an AST.
package syntax

import (
	"fmt"

	"github.com/geraltigas/glslc/internal/types"
)

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF   Token = iota // end of file
	_Error              // lexical error

	// Literals
	_Name     // identifier: foo, gl_Position
	_TypeName // type name: float, vec3, mat4
	_Number   // numeric literal (used with LitKind)
	_Version  // #version directive

	// Assignment operators
	_Assign    // =
	_AddAssign // +=
	_SubAssign // -=
	_MulAssign // *=
	_DivAssign // /=
	_RemAssign // %=
	_ShlAssign // <<=
	_ShrAssign // >>=
	_AndAssign // &=
	_XorAssign // ^=
	_OrAssign  // |=

	// Conditional
	_Question // ?
	_Colon    // :

	// Logical operators
	_OrOr   // ||
	_XorXor // ^^
	_AndAnd // &&

	// Bitwise operators
	_Or  // |
	_Xor // ^
	_And // &

	// Comparison operators
	_Eql // ==
	_Neq // !=
	_Lss // <
	_Leq // <=
	_Gtr // >
	_Geq // >=

	// Shift, additive and multiplicative operators
	_Shl // <<
	_Shr // >>
	_Add // +
	_Sub // -
	_Mul // *
	_Div // /
	_Rem // %

	// Unary operators
	_Inc   // ++
	_Dec   // --
	_Not   // !
	_Tilde // ~

	// Delimiters
	_Lparen // (
	_Rparen // )
	_Lbrack // [
	_Rbrack // ]
	_Lbrace // {
	_Rbrace // }
	_Comma  // ,
	_Semi   // ;
	_Dot    // .

	// Keywords
	_Binding
	_Break
	_Const
	_Continue
	_Do
	_Else
	_False
	_For
	_If
	_In
	_Layout
	_Location
	_Out
	_Return
	_True
	_Uniform
	_While

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	_EOF:   "EOF",
	_Error: "ERROR",

	_Name:     "NAME",
	_TypeName: "TYPE",
	_Number:   "NUMBER",
	_Version:  "#version",

	_Assign:    "=",
	_AddAssign: "+=",
	_SubAssign: "-=",
	_MulAssign: "*=",
	_DivAssign: "/=",
	_RemAssign: "%=",
	_ShlAssign: "<<=",
	_ShrAssign: ">>=",
	_AndAssign: "&=",
	_XorAssign: "^=",
	_OrAssign:  "|=",

	_Question: "?",
	_Colon:    ":",

	_OrOr:   "||",
	_XorXor: "^^",
	_AndAnd: "&&",

	_Or:  "|",
	_Xor: "^",
	_And: "&",

	_Eql: "==",
	_Neq: "!=",
	_Lss: "<",
	_Leq: "<=",
	_Gtr: ">",
	_Geq: ">=",

	_Shl: "<<",
	_Shr: ">>",
	_Add: "+",
	_Sub: "-",
	_Mul: "*",
	_Div: "/",
	_Rem: "%",

	_Inc:   "++",
	_Dec:   "--",
	_Not:   "!",
	_Tilde: "~",

	_Lparen: "(",
	_Rparen: ")",
	_Lbrack: "[",
	_Rbrack: "]",
	_Lbrace: "{",
	_Rbrace: "}",
	_Comma:  ",",
	_Semi:   ";",
	_Dot:    ".",

	_Binding:  "binding",
	_Break:    "break",
	_Const:    "const",
	_Continue: "continue",
	_Do:       "do",
	_Else:     "else",
	_False:    "false",
	_For:      "for",
	_If:       "if",
	_In:       "in",
	_Layout:   "layout",
	_Location: "location",
	_Out:      "out",
	_Return:   "return",
	_True:     "true",
	_Uniform:  "uniform",
	_While:    "while",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Binding && t <= _While
}

// IsOperator reports whether t is an operator token.
func (t Token) IsOperator() bool {
	return t >= _Assign && t <= _Tilde
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// LitKind represents the kind of a numeric literal.
type LitKind uint8

const (
	IntLit    LitKind = iota // 42
	UintLit                  // 42u
	FloatLit                 // 1.5f
	DoubleLit                // 1.5
)

var litKindNames = [...]string{
	IntLit:    "int",
	UintLit:   "uint",
	FloatLit:  "float",
	DoubleLit: "double",
}

// String returns the string representation of the literal kind.
func (k LitKind) String() string {
	if k <= DoubleLit {
		return litKindNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

// keywords maps keyword strings to their token type.
// Type names are not keywords; the scanner reports them as _TypeName.
var keywords = map[string]Token{
	"binding":  _Binding,
	"break":    _Break,
	"const":    _Const,
	"continue": _Continue,
	"do":       _Do,
	"else":     _Else,
	"false":    _False,
	"for":      _For,
	"if":       _If,
	"in":       _In,
	"layout":   _Layout,
	"location": _Location,
	"out":      _Out,
	"return":   _Return,
	"true":     _True,
	"uniform":  _Uniform,
	"while":    _While,
}

// LookupKeyword returns the token for the given identifier string:
// a keyword token, _TypeName for a type name, or _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if _, ok := types.Lookup(ident); ok {
		return _TypeName
	}
	return _Name
}

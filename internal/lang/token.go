// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lang

import "fmt"

type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type Span struct {
	Start *Location
	End   *Location
}

type Token struct {
	Span  *Span
	Kind  TokenKind
	Value string
}

type TokenKind uint16

const (
	TokenKindLBrace    TokenKind = 0
	TokenKindRBrace    TokenKind = 1
	TokenKindLBracket  TokenKind = 2
	TokenKindRBracket  TokenKind = 3
	TokenKindComma     TokenKind = 4
	TokenKindColon     TokenKind = 5
	TokenKindSemicolon TokenKind = 6
	TokenKindString    TokenKind = 7
	TokenKindNumber    TokenKind = 8
	TokenKindTrue      TokenKind = 9
	TokenKindFalse     TokenKind = 10
	TokenKindNull      TokenKind = 11
	TokenKindEOF       TokenKind = 12
)

func (k TokenKind) String() string {
	switch k {
	case TokenKindLBrace:
		return "LBRACE"
	case TokenKindRBrace:
		return "RBRACE"
	case TokenKindLBracket:
		return "LBRACKET"
	case TokenKindRBracket:
		return "RBRACKET"
	case TokenKindComma:
		return "COMMA"
	case TokenKindColon:
		return "COLON"
	case TokenKindSemicolon:
		return "SEMICOLON"
	case TokenKindString:
		return "STRING"
	case TokenKindNumber:
		return "NUMBER"
	case TokenKindTrue:
		return "TRUE"
	case TokenKindFalse:
		return "FALSE"
	case TokenKindNull:
		return "NULL"
	case TokenKindEOF:
		return "EOF"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint16(k))
	}
}

// HasValue reports whether tokens of this kind carry a literal value.
func (k TokenKind) HasValue() bool {
	return k == TokenKindString || k == TokenKindNumber
}

// String renders the canonical one-line text form of the token. The
// tokens package parses this form back into a Token.
func (t Token) String() string {
	switch t.Kind {
	case TokenKindString:
		return "<STR, " + t.Value + ">"
	case TokenKindNumber:
		return "<NUM, " + t.Value + ">"
	case TokenKindLBrace:
		return "<{>"
	case TokenKindRBrace:
		return "<}>"
	case TokenKindLBracket:
		return "<[>"
	case TokenKindRBracket:
		return "<]>"
	case TokenKindComma:
		return "<,>"
	case TokenKindColon:
		return "<:>"
	case TokenKindSemicolon:
		return "<;>"
	case TokenKindTrue:
		return "<true>"
	case TokenKindFalse:
		return "<false>"
	case TokenKindNull:
		return "<NULL>"
	case TokenKindEOF:
		return "<EOF>"
	default:
		return "<" + t.Kind.String() + ">"
	}
}

// Equal compares kind and value. Spans are ignored because the same token
// read from raw text and from a token file has different positions.
func (t Token) Equal(o Token) bool {
	return t.Kind == o.Kind && t.Value == o.Value
}

// Start returns the start location of the token or the zero Location when
// the token has no span.
func (t Token) Start() Location {
	if t.Span == nil || t.Span.Start == nil {
		return Location{}
	}
	return *t.Span.Start
}

func NewToken(kind TokenKind, value string, span *Span) *Token {
	return &Token{
		Span:  span,
		Kind:  kind,
		Value: value,
	}
}

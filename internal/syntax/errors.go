package syntax

import (
	"fmt"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// LexicalKind selects the recognizer that failed.
type LexicalKind uint8

const (
	LexicalCharacter LexicalKind = iota + 1
	LexicalString
	LexicalKeyword
)

// LexicalError is reported by the lexer. Position is the zero based rune
// index into the input.
type LexicalError struct {
	Kind      LexicalKind
	Position  int64
	Character string
	Span      lang.Location
	URI       string
}

var _ exc.Exception = (*LexicalError)(nil)

func (e *LexicalError) Code() string {
	switch e.Kind {
	case LexicalString:
		return exc.CodeUnterminatedString
	case LexicalKeyword:
		return exc.CodeInvalidKeyword
	default:
		return exc.CodeInvalidCharacter
	}
}

func (e *LexicalError) Message() string {
	switch e.Kind {
	case LexicalString:
		return fmt.Sprintf("Invalid string at position %d, character %s", e.Position, e.Character)
	case LexicalKeyword:
		return fmt.Sprintf("Invalid boolean (true/false/null) at position %d, character: %s", e.Position, e.Character)
	default:
		return fmt.Sprintf("Invalid character '%s' at position %d", e.Character, e.Position)
	}
}

func (e *LexicalError) Location() exc.Location {
	return exc.At(e.URI, e.Span)
}

func (e *LexicalError) Error() string {
	return errorString(e)
}

// Production names the grammar rule that was running when a syntax error
// was found.
type Production uint8

const (
	ProductionValue Production = iota + 1
	ProductionDict
	ProductionList
	ProductionPair
)

func (p Production) phrase() string {
	switch p {
	case ProductionDict:
		return "in dictionary"
	case ProductionList:
		return "in list"
	case ProductionPair:
		return "in pair"
	default:
		return "as value"
	}
}

// SyntaxError is reported by the parser when a production cannot match the
// current token. Index is the one based position of the token in the stream.
type SyntaxError struct {
	Production Production
	Token      lang.Token
	Index      int
	Detail     string
	URI        string
	code       string
}

var _ exc.Exception = (*SyntaxError)(nil)

func (e *SyntaxError) Code() string {
	return e.code
}

func (e *SyntaxError) Message() string {
	return fmt.Sprintf("Error trying to parse %s %s: %s", e.Token, e.Production.phrase(), e.Detail)
}

func (e *SyntaxError) Location() exc.Location {
	return exc.At(e.URI, e.Token.Start())
}

func (e *SyntaxError) Error() string {
	return errorString(e)
}

func errorString(e exc.Exception) string {
	loc := e.Location()
	return fmt.Sprintf("%s:%d:%d -- %s: %s", loc.URI, loc.Line, loc.Column, e.Code(), e.Message())
}

package frontend

import (
	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
	"gopkg.microglot.org/rjson.go/internal/syntax"
	"gopkg.microglot.org/rjson.go/internal/tokens"
)

// Processor builds the lexer used for one kind of input file. Every lexer
// feeds the same parser.
type Processor func(reporter exc.Reporter) lang.Lexer

func DefaultProcessors() map[lang.FileKind]Processor {
	return map[lang.FileKind]Processor{
		lang.FileKindText: func(r exc.Reporter) lang.Lexer {
			return syntax.NewLexer(r)
		},
		lang.FileKindTokenText: func(r exc.Reporter) lang.Lexer {
			return tokens.NewTextLexer(r)
		},
		lang.FileKindTokenBinary: func(r exc.Reporter) lang.Lexer {
			return tokens.NewWireLexer(r)
		},
	}
}

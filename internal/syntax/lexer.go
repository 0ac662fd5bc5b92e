// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package syntax

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/fs"
	"gopkg.microglot.org/rjson.go/internal/iter"
	"gopkg.microglot.org/rjson.go/internal/lang"
	"gopkg.microglot.org/rjson.go/internal/optional"
)

const (
	lexerLookahead = 1
	byteOrderMark  = '\uFEFF'
)

// Lexer scans raw text into tokens in a single pass without backtracking.
// Problems are reported and skipped so scanning never fails.
type Lexer struct {
	reporter exc.Reporter
}

var _ lang.Lexer = (*Lexer)(nil)

func NewLexer(reporter exc.Reporter) *Lexer {
	return &Lexer{reporter: reporter}
}

func (self *Lexer) Lex(ctx context.Context, f lang.File) (lang.LexerFile, error) {
	return &lexerFile{
		File:     f,
		reporter: self.reporter,
	}, nil
}

// Tokenize scans text and returns every token before EOF.
func Tokenize(ctx context.Context, text string, reporter exc.Reporter) []lang.Token {
	lf, _ := NewLexer(reporter).Lex(ctx, fs.NewFileString("", text, lang.FileKindText))
	it, err := lf.Tokens(ctx)
	if err != nil {
		return nil
	}
	toks, _ := iter.Collect(ctx, it)
	out := make([]lang.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == lang.TokenKindEOF {
			break
		}
		out = append(out, *t)
	}
	return out
}

type lexerFile struct {
	lang.File
	reporter exc.Reporter
}

func (self *lexerFile) Tokens(ctx context.Context) (lang.Iterator[*lang.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerLookahead)
	return &lexerFileTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
		position: -1,
	}, nil
}

type lexerFileTokens struct {
	uri      string
	body     lang.Lookahead[lang.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	// offset is the byte offset of the current code point and nextOffset is the
	// byte offset of the one after it.
	offset     int64
	nextOffset int64
	// position is the rune index of the current code point. Diagnostics
	// report it.
	position int64
	newline  bool
	done     bool
}

func (self *lexerFileTokens) Next(ctx context.Context) optional.Optional[*lang.Token] {
	if self.done {
		return optional.None[*lang.Token]()
	}
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		if r == byteOrderMark && self.position == 0 {
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '{':
			return self.single(lang.TokenKindLBrace)
		case '}':
			return self.single(lang.TokenKindRBrace)
		case '[':
			return self.single(lang.TokenKindLBracket)
		case ']':
			return self.single(lang.TokenKindRBracket)
		case ',':
			return self.single(lang.TokenKindComma)
		case ':':
			return self.single(lang.TokenKindColon)
		case ';':
			return self.single(lang.TokenKindSemicolon)
		case '"':
			return self.readString(ctx)
		}
		if unicode.IsDigit(r) || r == '-' || r == '+' {
			return self.readNumber(ctx, r)
		}
		if unicode.IsLetter(r) {
			if tok := self.readKeyword(ctx, r); tok.IsPresent() {
				return tok
			}
			continue
		}
		self.report(&LexicalError{
			Kind:      LexicalCharacter,
			Position:  self.position,
			Character: string(r),
			Span:      self.here(),
		})
	}
	self.done = true
	end := self.after()
	return optional.Some(lang.NewToken(lang.TokenKindEOF, "", &lang.Span{Start: &end, End: &end}))
}

// readString consumes everything up to the closing quote. Running out of
// input first reports the string and yields an empty STRING token.
func (self *lexerFileTokens) readString(ctx context.Context) optional.Optional[*lang.Token] {
	start := self.here()
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			self.report(&LexicalError{
				Kind:      LexicalString,
				Position:  self.position + 1,
				Character: "EOF",
				Span:      self.after(),
			})
			return self.token(start, lang.TokenKindString, "")
		}
		_ = self.next(ctx)
		if n.Value() == '"' {
			return self.token(start, lang.TokenKindString, builder.String())
		}
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

// readNumber greedily takes digits, dots, exponent markers and signs. Shape
// is validated later by the parser.
func (self *lexerFileTokens) readNumber(ctx context.Context, first rune) optional.Optional[*lang.Token] {
	start := self.here()
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || !isNumberRune(rune(n.Value())) {
			return self.token(start, lang.TokenKindNumber, builder.String())
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

func isNumberRune(r rune) bool {
	switch r {
	case '.', 'e', 'E', '-', '+':
		return true
	default:
		return unicode.IsDigit(r)
	}
}

// readKeyword consumes a run of letters. Anything other than true, false or
// null is reported and produces no token.
func (self *lexerFileTokens) readKeyword(ctx context.Context, first rune) optional.Optional[*lang.Token] {
	start := self.here()
	position := self.position
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || !unicode.IsLetter(rune(n.Value())) {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	switch word := builder.String(); word {
	case "true":
		return self.token(start, lang.TokenKindTrue, "")
	case "false":
		return self.token(start, lang.TokenKindFalse, "")
	case "null":
		return self.token(start, lang.TokenKindNull, "")
	default:
		self.report(&LexicalError{
			Kind:      LexicalKeyword,
			Position:  position,
			Character: word,
			Span:      start,
		})
		return optional.None[*lang.Token]()
	}
}

func (self *lexerFileTokens) next(ctx context.Context) optional.Optional[lang.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.advance(rune(n.Value()))
	}
	return n
}

func (self *lexerFileTokens) advance(r rune) {
	if self.newline {
		self.line = self.line + 1
		self.col = 0
		self.newline = false
	}
	self.col = self.col + 1
	self.position = self.position + 1
	self.offset = self.nextOffset
	size := utf8.RuneLen(r)
	if size < 0 {
		size = 1
	}
	self.nextOffset = self.nextOffset + int64(size)
	if r == '\n' {
		self.newline = true
	}
}

// here is the location of the current code point.
func (self *lexerFileTokens) here() lang.Location {
	return lang.Location{Line: self.line, Column: self.col, Offset: self.offset}
}

// after is the location just past the current code point.
func (self *lexerFileTokens) after() lang.Location {
	return lang.Location{Line: self.line, Column: self.col + 1, Offset: self.nextOffset}
}

func (self *lexerFileTokens) single(kind lang.TokenKind) optional.Optional[*lang.Token] {
	return self.token(self.here(), kind, "")
}

func (self *lexerFileTokens) token(start lang.Location, kind lang.TokenKind, value string) optional.Optional[*lang.Token] {
	end := self.after()
	return optional.Some(lang.NewToken(kind, value, &lang.Span{Start: &start, End: &end}))
}

func (self *lexerFileTokens) report(e *LexicalError) {
	e.URI = self.uri
	_ = self.reporter.Report(e)
}

func (self *lexerFileTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

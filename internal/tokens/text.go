package tokens

import (
	"bufio"
	"context"
	"io"
	"strings"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/iter"
	"gopkg.microglot.org/rjson.go/internal/lang"
	"gopkg.microglot.org/rjson.go/internal/optional"
)

const (
	stringPrefix = "<STR, "
	numberPrefix = "<NUM, "
	closeMarker  = ">"
)

var fixed = map[string]lang.TokenKind{
	"<{>":     lang.TokenKindLBrace,
	"<}>":     lang.TokenKindRBrace,
	"<[>":     lang.TokenKindLBracket,
	"<]>":     lang.TokenKindRBracket,
	"<,>":     lang.TokenKindComma,
	"<:>":     lang.TokenKindColon,
	"<;>":     lang.TokenKindSemicolon,
	"<true>":  lang.TokenKindTrue,
	"<false>": lang.TokenKindFalse,
	"<NULL>":  lang.TokenKindNull,
	"<EOF>":   lang.TokenKindEOF,
}

// ParseLine converts one line of canonical token text back into a token.
// Blank lines and quote marker lines hold no token. Any other line that is
// not a canonical token is an error.
func ParseLine(line string) (lang.Token, bool, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "", "<'>", `<">`:
		return lang.Token{}, false, nil
	}
	if kind, ok := fixed[line]; ok {
		return lang.Token{Kind: kind}, true, nil
	}
	if v, ok := valued(line, stringPrefix); ok {
		return lang.Token{Kind: lang.TokenKindString, Value: v}, true, nil
	}
	if v, ok := valued(line, numberPrefix); ok {
		return lang.Token{Kind: lang.TokenKindNumber, Value: v}, true, nil
	}
	return lang.Token{}, false, exc.New(exc.Location{}, exc.CodeMalformedToken, "Unknown type of Token: "+line)
}

func valued(line string, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, closeMarker) || len(line) < len(prefix)+len(closeMarker) {
		return "", false
	}
	return line[len(prefix) : len(line)-len(closeMarker)], true
}

// WriteText writes the canonical form of each token on its own line.
func WriteText(w io.Writer, toks []lang.Token) error {
	bw := bufio.NewWriter(w)
	for _, tok := range toks {
		if _, err := bw.WriteString(tok.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// TextLexer reads files holding one canonical token per line.
type TextLexer struct {
	reporter exc.Reporter
}

var _ lang.Lexer = (*TextLexer)(nil)

func NewTextLexer(reporter exc.Reporter) *TextLexer {
	return &TextLexer{reporter: reporter}
}

func (self *TextLexer) Lex(ctx context.Context, f lang.File) (lang.LexerFile, error) {
	return &textFile{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type textFile struct {
	lang.File
	reporter exc.Reporter
}

func (self *textFile) Tokens(ctx context.Context) (lang.Iterator[*lang.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	return &textFileTokens{
		uri:      self.File.Path(ctx),
		lines:    iter.NewLineFileBodyCtx(ctx, b),
		reporter: self.reporter,
	}, nil
}

type textFileTokens struct {
	uri      string
	lines    lang.Iterator[string]
	reporter exc.Reporter
	line     int32
	err      error
}

// Next ends the stream at the first malformed line. The failure is returned
// again by Close.
func (self *textFileTokens) Next(ctx context.Context) optional.Optional[*lang.Token] {
	if self.err != nil {
		return optional.None[*lang.Token]()
	}
	for line := self.lines.Next(ctx); line.IsPresent(); line = self.lines.Next(ctx) {
		self.line = self.line + 1
		tok, ok, err := ParseLine(line.Value())
		if err != nil {
			e := exc.Wrap(exc.At(self.uri, lang.Location{Line: self.line, Column: 1}), exc.CodeMalformedToken, err)
			if fatal := self.reporter.Report(e); fatal != nil {
				self.err = fatal
				return optional.None[*lang.Token]()
			}
			continue
		}
		if !ok {
			continue
		}
		start := lang.Location{Line: self.line, Column: 1}
		end := lang.Location{Line: self.line, Column: int32(len([]rune(line.Value()))) + 1}
		tok.Span = &lang.Span{Start: &start, End: &end}
		return optional.Some(&tok)
	}
	return optional.None[*lang.Token]()
}

func (self *textFileTokens) Close(ctx context.Context) error {
	err := self.lines.Close(ctx)
	if self.err != nil {
		return self.err
	}
	return err
}

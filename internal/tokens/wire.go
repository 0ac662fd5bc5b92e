package tokens

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/fs"
	"gopkg.microglot.org/rjson.go/internal/iter"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// The binary stream is a sequence of length delimited token records, each
// one tagged with fieldToken. A record holds the kind, the value when there
// is one and the start position of the token.
const (
	fieldToken protowire.Number = 1

	fieldKind   protowire.Number = 1
	fieldValue  protowire.Number = 2
	fieldLine   protowire.Number = 3
	fieldColumn protowire.Number = 4
)

// AppendWire appends the binary record of tok to b.
func AppendWire(b []byte, tok lang.Token) []byte {
	var rec []byte
	rec = protowire.AppendTag(rec, fieldKind, protowire.VarintType)
	rec = protowire.AppendVarint(rec, uint64(tok.Kind))
	if tok.Kind.HasValue() {
		rec = protowire.AppendTag(rec, fieldValue, protowire.BytesType)
		rec = protowire.AppendString(rec, tok.Value)
	}
	if start := tok.Start(); start.Line > 0 {
		rec = protowire.AppendTag(rec, fieldLine, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(start.Line))
		rec = protowire.AppendTag(rec, fieldColumn, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(start.Column))
	}
	b = protowire.AppendTag(b, fieldToken, protowire.BytesType)
	return protowire.AppendBytes(b, rec)
}

// WriteWire writes the binary form of toks to w.
func WriteWire(w io.Writer, toks []lang.Token) error {
	var b []byte
	for _, tok := range toks {
		b = AppendWire(b, tok)
	}
	_, err := w.Write(b)
	return err
}

// DecodeWire reads every token record in b. Unknown fields are skipped. The
// tokens decoded before a failure are returned with the error.
func DecodeWire(b []byte) ([]lang.Token, error) {
	var out []lang.Token
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return out, protowire.ParseError(n)
		}
		b = b[n:]
		if num != fieldToken || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return out, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		rec, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return out, protowire.ParseError(n)
		}
		b = b[n:]
		tok, err := decodeRecord(rec)
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func decodeRecord(b []byte) (lang.Token, error) {
	var tok lang.Token
	var start lang.Location
	hasKind := false
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return tok, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return tok, protowire.ParseError(n)
			}
			if v > uint64(lang.TokenKindEOF) {
				return tok, fmt.Errorf("unknown token kind %d", v)
			}
			tok.Kind = lang.TokenKind(v)
			hasKind = true
			b = b[n:]
		case num == fieldValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return tok, protowire.ParseError(n)
			}
			tok.Value = v
			b = b[n:]
		case (num == fieldLine || num == fieldColumn) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return tok, protowire.ParseError(n)
			}
			if num == fieldLine {
				start.Line = int32(v)
			} else {
				start.Column = int32(v)
			}
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return tok, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	if !hasKind {
		return tok, errors.New("token record without a kind")
	}
	if start.Line > 0 {
		tok.Span = &lang.Span{Start: &start, End: &start}
	}
	return tok, nil
}

// WireLexer reads files written by WriteWire.
type WireLexer struct {
	reporter exc.Reporter
}

var _ lang.Lexer = (*WireLexer)(nil)

func NewWireLexer(reporter exc.Reporter) *WireLexer {
	return &WireLexer{reporter: reporter}
}

func (self *WireLexer) Lex(ctx context.Context, f lang.File) (lang.LexerFile, error) {
	return &wireFile{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type wireFile struct {
	lang.File
	reporter exc.Reporter
}

// Tokens decodes the whole file up front. A corrupt stream yields the tokens
// before the damage and the failure is returned by Close.
func (self *wireFile) Tokens(ctx context.Context) (lang.Iterator[*lang.Token], error) {
	b, err := fs.ReadAll(ctx, self.File)
	if err != nil {
		return nil, err
	}
	toks, err := DecodeWire(b)
	ptrs := make([]*lang.Token, 0, len(toks))
	for x := range toks {
		ptrs = append(ptrs, &toks[x])
	}
	result := &wireFileTokens{Iterator: iter.NewSlice(ptrs)}
	if err != nil {
		e := exc.Wrap(exc.Location{URI: self.File.Path(ctx)}, exc.CodeMalformedWire, err)
		if fatal := self.reporter.Report(e); fatal != nil {
			result.err = fatal
		}
	}
	return result, nil
}

type wireFileTokens struct {
	lang.Iterator[*lang.Token]
	err error
}

func (self *wireFileTokens) Close(ctx context.Context) error {
	if err := self.Iterator.Close(ctx); err != nil {
		return err
	}
	return self.err
}

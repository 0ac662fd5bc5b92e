// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lang

import (
	"context"
	"fmt"
	"io"

	"gopkg.microglot.org/rjson.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	// FileKindText is raw source text in the relaxed JSON dialect.
	FileKindText
	// FileKindTokenText is a pre-lexed stream with one canonical token per line.
	FileKindTokenText
	// FileKindTokenBinary is a pre-lexed stream in protobuf wire format.
	FileKindTokenBinary
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindText:
		return "text"
	case FileKindTokenText:
		return "token-text"
	case FileKindTokenBinary:
		return "token-binary"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
	// Create opens a sink for streamed output such as an error log. The
	// caller owns the returned handle and must close it.
	Create(ctx context.Context, uri string) (io.WriteCloser, error)
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

type Frontend interface {
	Process(ctx context.Context, req *ProcessRequest) (*ProcessResponse, error)
}

// TokenFormat selects how a token stream is written next to its input.
type TokenFormat uint8

const (
	TokenFormatNone TokenFormat = iota
	TokenFormatText
	TokenFormatBinary
)

func (f TokenFormat) String() string {
	switch f {
	case TokenFormatText:
		return "text"
	case TokenFormatBinary:
		return "binary"
	default:
		return "none"
	}
}

type ProcessRequest struct {
	Files []string
	// Document parses every top-level value in the input instead of only
	// the first one.
	Document bool
	// CheckLists runs the list element type consistency pass over each
	// finished tree.
	CheckLists bool
	// DumpTokens writes the token stream of each raw text input next to it.
	DumpTokens TokenFormat
	// LexOnly stops after lexing. No tree or error log is produced.
	LexOnly bool
	// WriteTree writes the rendered tree of each input next to it.
	WriteTree bool
}

type ProcessResponse struct {
	Results []*FileResult
}

type FileResult struct {
	URI   string
	RunID string
	Kind  FileKind
	// Tokens is the lexed stream, EOF excluded. It is only filled when the
	// tokens were dumped or LexOnly was requested.
	Tokens []Token
	Roots  []*Node
	// Console is everything printed for the file: diagnostics, dumped tokens
	// and rendered trees, in order.
	Console string
	// Diagnostics holds every lexical, syntax and semantic diagnostic
	// reported while processing the file.
	Diagnostics []error
	// Outputs lists the URIs of sidecar files written for the input.
	Outputs []string
}

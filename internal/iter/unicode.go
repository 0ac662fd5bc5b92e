// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"gopkg.microglot.org/rjson.go/internal/lang"
	"gopkg.microglot.org/rjson.go/internal/optional"
)

// NewUnicodeFileBody converts a FileBody into an iterator of code points.
func NewUnicodeFileBody(b lang.FileBody) lang.Iterator[lang.CodePoint] {
	return NewUnicodeFileBodyCtx(context.Background(), b)
}

// NewUnicodeFileBodyCtx is the same as NewUnicodeFileBody but uses the given
// context for all read operations for cancellation or other purposes.
func NewUnicodeFileBodyCtx(ctx context.Context, b lang.FileBody) lang.Iterator[lang.CodePoint] {
	return newFileBody(ctx, b, bufio.ScanRunes)
}

// NewLineFileBodyCtx converts a FileBody into an iterator of lines with the
// line terminators removed.
func NewLineFileBodyCtx(ctx context.Context, b lang.FileBody) lang.Iterator[string] {
	body := newFileBody(ctx, b, bufio.ScanLines)
	body.scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	return &lineBody{fileBody: body}
}

// maxLineSize bounds a single line read by a line iterator. A token file
// holds one token per line so this is also the longest string literal that
// survives a round trip through the text token format.
const maxLineSize = 1 << 30

type fileBody struct {
	readCloser io.ReadCloser
	scanner    *bufio.Scanner
}

func newFileBody(ctx context.Context, r lang.FileBody, split bufio.SplitFunc) *fileBody {
	rc := &FileBodyIO{
		Ctx:  ctx,
		Body: r,
	}
	scanner := bufio.NewScanner(rc)
	scanner.Split(split)
	return &fileBody{
		readCloser: rc,
		scanner:    scanner,
	}
}

func (f *fileBody) Next(ctx context.Context) optional.Optional[lang.CodePoint] {
	ok := f.scanner.Scan()
	if !ok {
		return optional.None[lang.CodePoint]()
	}
	r, _ := utf8.DecodeRune(f.scanner.Bytes())
	return optional.Some(lang.CodePoint(r))
}

func (f *fileBody) Close(context.Context) error {
	_ = f.readCloser.Close()
	return f.scanner.Err()
}

type lineBody struct {
	*fileBody
}

func (l *lineBody) Next(ctx context.Context) optional.Optional[string] {
	if !l.scanner.Scan() {
		return optional.None[string]()
	}
	return optional.Some(l.scanner.Text())
}

// FileBodyIO adapts a FileBody to io.ReadCloser for use with libraries that
// consume the standard interfaces.
type FileBodyIO struct {
	Ctx  context.Context
	Body lang.FileBody
}

func (self *FileBodyIO) Read(p []byte) (int, error) {
	b, err := self.Body.Read(self.Ctx, int32(len(p)))
	if err != nil && !errors.Is(err, io.EOF) {
		return len(b), err
	}
	copy(p, b)
	if errors.Is(err, io.EOF) {
		return len(b), io.EOF
	}
	return len(b), nil
}

func (self *FileBodyIO) Close() error {
	return self.Body.Close(self.Ctx)
}

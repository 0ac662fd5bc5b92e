// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// NewFileString wraps static string content in lang.File.
func NewFileString(path string, content string, kind lang.FileKind) lang.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, kind)
}

// NewFileBytes wraps static binary content in lang.File. The slice is not
// copied and must not be modified while the file is in use.
func NewFileBytes(path string, content []byte, kind lang.FileKind) lang.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}, kind)
}

// NewFileFN is intended to wrap actual file based content in the lang.File
// interface. The given body function is used each time there is a call to the
// lang.File.Body method so it must return a new io.ReadCloser handle.
func NewFileFN(path string, body func() (io.ReadCloser, error), kind lang.FileKind) lang.File {
	return &fileIOFunc{
		path: path,
		kind: kind,
		body: body,
	}
}

type fileIOFunc struct {
	path string
	kind lang.FileKind
	body func() (io.ReadCloser, error)
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}

func (f *fileIOFunc) Kind(ctx context.Context) lang.FileKind {
	return f.kind
}

func (f *fileIOFunc) Body(ctx context.Context) (lang.FileBody, error) {
	rc, err := f.body()
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: f.path}, err)
	}
	return &ioFileBody{
		r:  bufio.NewReader(rc),
		rc: rc,
	}, nil
}

// ReadAll reads the complete body of a file and closes it.
func ReadAll(ctx context.Context, f lang.File) ([]byte, error) {
	body, err := f.Body(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close(ctx)
	var out bytes.Buffer
	for {
		b, err := body.Read(ctx, 4096)
		out.Write(b)
		if errors.Is(err, io.EOF) {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

type ioFileBody struct {
	r  *bufio.Reader
	rc io.Closer
	b  []byte
}

// Read returns at most size bytes. The returned slice is reused by the next
// call. End of input is reported as an exception wrapping io.EOF.
func (self *ioFileBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if len(self.b) < int(size) {
		self.b = make([]byte, size)
	}
	count, err := self.r.Read(self.b[:size])
	if err != nil && err != io.EOF {
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	if err == io.EOF {
		return self.b[:count], exc.Wrap(exc.Location{}, exc.CodeEOF, err)
	}
	return self.b[:count], nil
}

func (self *ioFileBody) Close(ctx context.Context) error {
	return self.rc.Close()
}

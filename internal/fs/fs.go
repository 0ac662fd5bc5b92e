// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

const (
	fileExt         = ".json"       // Raw source text
	fileRelaxedExt  = ".rjson"      // Raw source text using the relaxed dialect
	plainTextExt    = ".txt"        // Treated as raw source text
	tokenTextExt    = ".tok"        // One canonical token per line
	tokenBinaryExt  = ".tokbin"     // Token stream in protobuf wire format
	tokenTextSuffix = "_tokens.txt" // Token files written by the lex command
)

var knownExts = map[string]lang.FileKind{
	fileExt:        lang.FileKindText,
	fileRelaxedExt: lang.FileKindText,
	plainTextExt:   lang.FileKindText,
	tokenTextExt:   lang.FileKindTokenText,
	tokenBinaryExt: lang.FileKindTokenBinary,
}

// KindOf classifies a path by its suffix. Files produced by the lex command
// are recognized by their "_tokens" suffix before the extension is checked.
func KindOf(path string) lang.FileKind {
	if strings.HasSuffix(path, tokenTextSuffix) {
		return lang.FileKindTokenText
	}
	return knownExts[strings.ToLower(filepath.Ext(path))]
}

var _ lang.FileSystem = FileSystemMulti{}

// FileSystemMulti is an ordered set of FileSystem implementations that are
// tried in order when opening. Writes always go to the first backend.
type FileSystemMulti []lang.FileSystem

func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]lang.File, error) {
	for _, fs := range r {
		files, err := fs.Open(ctx, uri)
		if err != nil {
			continue
		}
		return files, nil
	}
	return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("could not open %s from any file system", uri))
}

func (r FileSystemMulti) Write(ctx context.Context, uri string, content string) error {
	if len(r) < 1 {
		return exc.New(exc.Location{URI: uri}, exc.CodeUnsupportedFileSystemOperation, "cannot write to an empty composite file system")
	}
	return r[0].Write(ctx, uri, content)
}

func (r FileSystemMulti) Create(ctx context.Context, uri string) (io.WriteCloser, error) {
	if len(r) < 1 {
		return nil, exc.New(exc.Location{URI: uri}, exc.CodeUnsupportedFileSystemOperation, "cannot create files in an empty composite file system")
	}
	return r[0].Create(ctx, uri)
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. The string
// value provided to the factory function is the root directory of the file
// system. All paths given to open or write are considered relative to this
// root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default accepts any file whose kind is
// known and skips sidecar outputs such as error logs and rendered trees.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
}

// NewFileSystemLocal creates a new FileSystem that uses the local file system.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (lang.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	result := &fileSystemLocal{
		root:       absroot,
		fsFactory:  os.DirFS,
		fileFilter: defaultFileFilter,
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

func defaultFileFilter(ctx context.Context, fname string) bool {
	if strings.HasSuffix(fname, "_errors.txt") || strings.HasSuffix(fname, "_tree.txt") {
		return false
	}
	return KindOf(fname) != lang.FileKindNone
}

func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]lang.File, error) {
	path := uriPath(uri)
	path = filepath.Join("/", path)

	dir := r.fsFactory(r.root)
	p := filepath.Clean(path)
	if p == "" || p == "/" {
		// If the entire path was a root then set to '.' to satisfy the
		// fs.ValidPath method which only allows, and requires, '.' when
		// it is expressing the root path.
		p = "."
	}
	// Trim the first slash character if present because fs.FS requires an
	// un-rooted path.
	p = strings.TrimPrefix(p, "/")
	d, err := dir.Open(p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	defer d.Close()
	stat, err := d.Stat()
	if err != nil {
		return nil, fsErr(p, err)
	}
	if !stat.IsDir() {
		f := NewFileFN(path, func() (io.ReadCloser, error) {
			return dir.Open(p)
		}, KindOf(p))
		return []lang.File{f}, nil
	}
	rd, ok := d.(fs.ReadDirFile)
	if !ok {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeUnsupportedFileSystemOperation, "directory listing is not supported")
	}
	dfs, err := rd.ReadDir(0)
	if err != nil {
		return nil, fsErr(p, err)
	}
	files := make([]lang.File, 0, len(dfs))
	for _, df := range dfs {
		if df.IsDir() {
			continue
		}
		if !r.fileFilter(ctx, df.Name()) {
			continue
		}
		dfPath := filepath.Join(p, df.Name())
		f := NewFileFN(filepath.Join("/", dfPath), func() (io.ReadCloser, error) {
			return dir.Open(dfPath)
		}, KindOf(dfPath))
		files = append(files, f)
	}
	if len(files) < 1 {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it is empty", path))
	}
	return files, nil
}

func (r *fileSystemLocal) Write(ctx context.Context, uri string, content string) error {
	w, err := r.Create(ctx, uri)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, content); err != nil {
		_ = w.Close()
		return fsErr(uri, err)
	}
	return w.Close()
}

func (r *fileSystemLocal) Create(ctx context.Context, uri string) (io.WriteCloser, error) {
	path := filepath.Join(r.root, "/", uriPath(uri))
	p := filepath.Clean(path)

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, os.ModeDir|0o755); err != nil {
		return nil, fsErr(d, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	return f, nil
}

func uriPath(uri string) string {
	u, err := url.Parse(uri)
	if err == nil && u.Path != "" {
		return u.Path
	}
	return uri
}

func fsErr(path string, err error) error {
	if errT, ok := err.(*fs.PathError); ok {
		switch {
		case errT.Err == fs.ErrInvalid:
			return exc.WrapUnknown(exc.Location{URI: errT.Path}, errT)
		case errT.Err == fs.ErrNotExist || os.IsNotExist(errT):
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodeFileNotFound, errT)
		case errT.Err == fs.ErrPermission || os.IsPermission(errT):
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodePermissionDenied, errT)
		default:
			return exc.WrapUnknown(exc.Location{URI: errT.Path}, errT)
		}
	}
	return exc.WrapUnknown(exc.Location{URI: path}, err)
}

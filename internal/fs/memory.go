package fs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

// FileSystemMemory keeps file content in a map keyed by cleaned absolute
// path. It is safe for concurrent use and is mostly useful in tests and for
// callers that want to capture sidecar outputs without touching disk.
type FileSystemMemory struct {
	lock  sync.Mutex
	files map[string][]byte
}

var _ lang.FileSystem = (*FileSystemMemory)(nil)

func NewFileSystemMemory(files map[string]string) *FileSystemMemory {
	m := &FileSystemMemory{files: make(map[string][]byte, len(files))}
	for k, v := range files {
		m.files[memPath(k)] = []byte(v)
	}
	return m
}

func memPath(uri string) string {
	return path.Clean("/" + uriPath(uri))
}

func (m *FileSystemMemory) Open(ctx context.Context, uri string) ([]lang.File, error) {
	p := memPath(uri)
	m.lock.Lock()
	defer m.lock.Unlock()
	if content, ok := m.files[p]; ok {
		return []lang.File{NewFileBytes(p, content, KindOf(p))}, nil
	}
	prefix := strings.TrimSuffix(p, "/") + "/"
	var names []string
	for name := range m.files {
		if !strings.HasPrefix(name, prefix) || strings.Contains(name[len(prefix):], "/") {
			continue
		}
		if !defaultFileFilter(ctx, name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) < 1 {
		return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("%s not found", uri))
	}
	sort.Strings(names)
	files := make([]lang.File, 0, len(names))
	for _, name := range names {
		files = append(files, NewFileBytes(name, m.files[name], KindOf(name)))
	}
	return files, nil
}

func (m *FileSystemMemory) Write(ctx context.Context, uri string, content string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.files[memPath(uri)] = []byte(content)
	return nil
}

// Create returns a buffer whose content is stored when it is closed.
func (m *FileSystemMemory) Create(ctx context.Context, uri string) (io.WriteCloser, error) {
	return &memWriter{fs: m, path: memPath(uri)}, nil
}

// Content returns the stored content for uri.
func (m *FileSystemMemory) Content(uri string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	b, ok := m.files[memPath(uri)]
	return string(b), ok
}

type memWriter struct {
	bytes.Buffer
	fs     *FileSystemMemory
	path   string
	closed bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, exc.New(exc.Location{URI: w.path}, exc.CodeUnsupportedFileSystemOperation, "write after close")
	}
	return w.Buffer.Write(p)
}

func (w *memWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.fs.lock.Lock()
	defer w.fs.lock.Unlock()
	w.fs.files[w.path] = bytes.Clone(w.Buffer.Bytes())
	return nil
}

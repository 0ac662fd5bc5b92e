package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path     string
		expected lang.FileKind
	}{
		{"/a.json", lang.FileKindText},
		{"/a.RJSON", lang.FileKindText},
		{"/test_input_1.txt", lang.FileKindText},
		{"/test_input_1_tokens.txt", lang.FileKindTokenText},
		{"/a.tok", lang.FileKindTokenText},
		{"/a.tokbin", lang.FileKindTokenBinary},
		{"/a.yaml", lang.FileKindNone},
		{"/noext", lang.FileKindNone},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.path, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, KindOf(testCase.path))
		})
	}
}

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"), []byte(`{"a": 1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a_errors.txt"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte(""), 0o644))

	lfs, err := NewFileSystemLocal(root)
	require.NoError(t, err)

	files, err := lfs.Open(ctx, "/a.json")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "/a.json", files[0].Path(ctx))
	require.Equal(t, lang.FileKindText, files[0].Kind(ctx))
	content, err := ReadAll(ctx, files[0])
	require.NoError(t, err)
	require.Equal(t, `{"a": 1}`, string(content))

	files, err = lfs.Open(ctx, "/")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "/a.json", files[0].Path(ctx))

	_, err = lfs.Open(ctx, "/missing.json")
	require.Error(t, err)
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())

	require.NoError(t, lfs.Write(ctx, "/out/a_tree.txt", "value\n"))
	b, err := os.ReadFile(filepath.Join(root, "out", "a_tree.txt"))
	require.NoError(t, err)
	require.Equal(t, "value\n", string(b))

	w, err := lfs.Create(ctx, "/a_errors.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("Level C Semantic Error: x\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	b, err = os.ReadFile(filepath.Join(root, "a_errors.txt"))
	require.NoError(t, err)
	require.Equal(t, "Level C Semantic Error: x\n", string(b))
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := NewFileSystemMemory(map[string]string{"/a.json": "1"})
	second := NewFileSystemMemory(map[string]string{"/b.json": "2"})
	multi := FileSystemMulti{first, second}

	files, err := multi.Open(ctx, "/b.json")
	require.NoError(t, err)
	require.Len(t, files, 1)
	content, err := ReadAll(ctx, files[0])
	require.NoError(t, err)
	require.Equal(t, "2", string(content))

	_, err = multi.Open(ctx, "/c.json")
	require.Error(t, err)
	require.NoError(t, multi.Write(ctx, "/c_tree.txt", "value\n"))
	written, ok := first.Content("/c_tree.txt")
	require.True(t, ok)
	require.Equal(t, "value\n", written)
	_, ok = second.Content("/c_tree.txt")
	require.False(t, ok)

	require.Error(t, FileSystemMulti{}.Write(ctx, "/c.json", ""))
	_, err = FileSystemMulti{}.Create(ctx, "/c.json")
	require.Error(t, err)
}

func TestFileSystemMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewFileSystemMemory(map[string]string{
		"dir/b.json":        "[]",
		"dir/a.json":        "{}",
		"dir/a_errors.txt":  "",
		"dir/nested/c.json": "1",
	})

	files, err := mem.Open(ctx, "/dir")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "/dir/a.json", files[0].Path(ctx))
	require.Equal(t, "/dir/b.json", files[1].Path(ctx))

	w, err := mem.Create(ctx, "/dir/a_tree.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("dict\n"))
	require.NoError(t, err)
	_, ok := mem.Content("/dir/a_tree.txt")
	require.False(t, ok)
	require.NoError(t, w.Close())
	content, ok := mem.Content("/dir/a_tree.txt")
	require.True(t, ok)
	require.Equal(t, "dict\n", content)
	_, err = w.Write([]byte("more"))
	require.Error(t, err)
}

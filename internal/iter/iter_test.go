package iter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/rjson.go/internal/fs"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

func codePoints(t *testing.T, text string) lang.Iterator[lang.CodePoint] {
	t.Helper()
	body, err := fs.NewFileString("/test", text, lang.FileKindText).Body(context.Background())
	require.NoError(t, err)
	return NewUnicodeFileBodyCtx(context.Background(), body)
}

func TestLookahead(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		text  string
		depth uint8
	}{
		{"empty", "", 1},
		{"single", "{", 1},
		{"current only", `{"a": 1}`, 0},
		{"one ahead", `{"a": 1}`, 1},
		{"deep", `[true, false, null]`, 4},
		{"multibyte", `"äöü" ß`, 2},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			expected := []rune(testCase.text)
			look := NewLookahead(codePoints(t, testCase.text), testCase.depth)
			for x := range expected {
				val := look.Next(ctx)
				require.True(t, val.IsPresent())
				require.Equal(t, expected[x], rune(val.Value()))
				require.Equal(t, val, look.Lookahead(ctx, 0))
				for n := uint8(1); n <= testCase.depth; n = n + 1 {
					peek := look.Lookahead(ctx, n)
					if x+int(n) < len(expected) {
						require.True(t, peek.IsPresent())
						require.Equal(t, expected[x+int(n)], rune(peek.Value()))
					} else {
						require.False(t, peek.IsPresent())
					}
				}
				require.False(t, look.Lookahead(ctx, testCase.depth+1).IsPresent())
			}
			require.False(t, look.Next(ctx).IsPresent())
			require.False(t, look.Next(ctx).IsPresent())
			require.NoError(t, look.Close(ctx))
		})
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	it := NewSlice([]int{1})
	require.Equal(t, 1, it.Next(ctx).Value())
	for x := 0; x < 3; x = x + 1 {
		require.False(t, it.Next(ctx).IsPresent())
	}
	require.NoError(t, it.Close(ctx))
}

func TestCollect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	values, err := Collect(ctx, NewSlice([]int{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, values)

	values, err = Collect(ctx, NewSlice([]int{}))
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestUnicodeFileBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := fs.NewFileString("/test", "{\"ä\": 1}", lang.FileKindText)
	body, err := f.Body(ctx)
	require.NoError(t, err)
	points, err := Collect(ctx, NewUnicodeFileBodyCtx(ctx, body))
	require.NoError(t, err)
	runes := make([]rune, 0, len(points))
	for _, p := range points {
		runes = append(runes, rune(p))
	}
	require.Equal(t, []rune("{\"ä\": 1}"), runes)
}

func TestLineFileBody(t *testing.T) {
	t.Parallel()

	long := "<STR, " + strings.Repeat("x", 70000) + ">"
	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		{"mixed terminators", "<{>\r\n<STR, a>\n\n<}>", []string{"<{>", "<STR, a>", "", "<}>"}},
		{"long line", "<[>\n" + long + "\n<]>\n", []string{"<[>", long, "<]>"}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := fs.NewFileString("/test", testCase.text, lang.FileKindTokenText)
			body, err := f.Body(ctx)
			require.NoError(t, err)
			lines, err := Collect(ctx, NewLineFileBodyCtx(ctx, body))
			require.NoError(t, err)
			require.Equal(t, testCase.expected, lines)
		})
	}
}

var benchEscapeValue lang.CodePoint
var benchEscapeValuePeek lang.CodePoint

func BenchmarkLookahead(b *testing.B) {
	ctx := context.Background()
	points := make([]lang.CodePoint, 1000)
	for x := range points {
		points[x] = lang.CodePoint('a' + x%26)
	}

	var loopEscapeValue lang.CodePoint
	var loopEscapeValuePeek lang.CodePoint
	b.ResetTimer()
	for n := 0; n < b.N; n = n + 1 {
		look := NewLookahead(NewSlice(points), 1)
		for v := look.Next(ctx); v.IsPresent(); v = look.Next(ctx) {
			loopEscapeValue = v.Value()
			loopEscapeValuePeek = look.Lookahead(ctx, 1).Value()
		}
	}
	benchEscapeValue = loopEscapeValue
	benchEscapeValuePeek = loopEscapeValuePeek
}

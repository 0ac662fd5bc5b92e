package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		target   string
		expected string
	}{
		{"a.json", "/a.json"},
		{"dir/../a.json", "/a.json"},
		{"/abs/a.json", "/abs/a.json"},
		{"file:///abs/a.json", "/abs/a.json"},
		{"https://example.com/a.json", "https://example.com/a.json"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.target, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Normalize(testCase.target))
		})
	}
}

func TestSidecars(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		target string
		errors string
		tree   string
		tokens string
		wire   string
	}{
		{"/in/test_input_1.txt", "/in/test_input_1_errors.txt", "/in/test_input_1_tree.txt", "/in/test_input_1_tokens.txt", "/in/test_input_1.tokbin"},
		{"/in/test_input_1_tokens.txt", "/in/test_input_1_tokens_errors.txt", "/in/test_input_1_tokens_tree.txt", "/in/test_input_1_tokens_tokens.txt", "/in/test_input_1_tokens.tokbin"},
		{"/a.json", "/a_errors.txt", "/a_tree.txt", "/a_tokens.txt", "/a.tokbin"},
		{"/a.tokbin", "/a_tokbin_errors.txt", "/a_tokbin_tree.txt", "/a_tokbin_tokens.txt", "/a_tokbin.tokbin"},
		{"/a.tok", "/a_tok_errors.txt", "/a_tok_tree.txt", "/a_tok_tokens.txt", "/a_tok.tokbin"},
		{"/noext", "/noext_errors.txt", "/noext_tree.txt", "/noext_tokens.txt", "/noext.tokbin"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.target, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.errors, ErrorLogPath(testCase.target))
			require.Equal(t, testCase.tree, TreePath(testCase.target))
			require.Equal(t, testCase.tokens, TokensPath(testCase.target))
			require.Equal(t, testCase.wire, WirePath(testCase.target))
		})
	}
}

func TestSidecarsDistinctFromSource(t *testing.T) {
	t.Parallel()

	source := "/in/a.json"
	outputs := map[string]string{
		ErrorLogPath(source): source,
		TreePath(source):     source,
	}
	for _, tokenFile := range []string{TokensPath(source), WirePath(source)} {
		for _, sidecar := range []string{ErrorLogPath(tokenFile), TreePath(tokenFile)} {
			_, ok := outputs[sidecar]
			require.False(t, ok, "%s shares %s with %s", tokenFile, sidecar, source)
			outputs[sidecar] = tokenFile
		}
	}
}

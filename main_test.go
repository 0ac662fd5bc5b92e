package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) (*env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	configDir := t.TempDir()
	var stdout, stderr bytes.Buffer
	vars := map[string]string{
		"XDG_CONFIG_HOME": configDir,
		"XDG_CONFIG_DIRS": configDir,
	}
	return &env{
		stdout: &stdout,
		stderr: &stderr,
		lookup: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
	}, &stdout, &stderr
}

func writeFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readFile(t *testing.T, dir string, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestRunParse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"a": [1, "x"]}`)
	e, stdout, stderr := testEnv(t)

	code := run(context.Background(), e, []string{"parse", "--root", dir, "--check-lists", "a.json"})
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t,
		"Level A Semantic Error: Type 6 at <STRING: x> (Expected Type: NUMBER): Inconsistent Types for List Elements\n",
		readFile(t, dir, "a_errors.txt"),
	)
	tree := readFile(t, dir, "a_tree.txt")
	require.Contains(t, stdout.String(), tree)
}

func TestRunLexThenParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		format string
		output string
		tree   string
		errors string
	}{
		{"text", "a_tokens.txt", "a_tokens_tree.txt", "a_tokens_errors.txt"},
		{"binary", "a.tokbin", "a_tokbin_tree.txt", "a_tokbin_errors.txt"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.format, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeFile(t, dir, "a.json", `{"a": [1, true], "b": null}`)

			e, stdout, stderr := testEnv(t)
			code := run(context.Background(), e, []string{"lex", "--root", dir, "--format", testCase.format, "a.json"})
			require.Equal(t, 0, code, stderr.String())
			require.Contains(t, stdout.String(), "<STR, a>\n")
			_, err := os.Stat(filepath.Join(dir, "a_errors.txt"))
			require.True(t, os.IsNotExist(err))

			e, _, stderr = testEnv(t)
			code = run(context.Background(), e, []string{"parse", "--root", dir, testCase.output})
			require.Equal(t, 0, code, stderr.String())
			fromTokens := readFile(t, dir, testCase.tree)
			require.Equal(t, "", readFile(t, dir, testCase.errors))
			_, err = os.Stat(filepath.Join(dir, "a_errors.txt"))
			require.True(t, os.IsNotExist(err))

			e, _, stderr = testEnv(t)
			code = run(context.Background(), e, []string{"parse", "--root", dir, "a.json"})
			require.Equal(t, 0, code, stderr.String())
			require.Equal(t, readFile(t, dir, "a_tree.txt"), fromTokens)
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.json", `1; 2`)
	writeFile(t, dir, "rjsonc.yaml", "document: true\nwrite_tree: false\n")
	e, stdout, stderr := testEnv(t)

	code := run(context.Background(), e, []string{"parse", "--config", filepath.Join(dir, "rjsonc.yaml"), "--root", dir, "a.json"})
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "value\n   NUMBER: 1\nvalue\n   NUMBER: 2\n", stdout.String())
	_, err := os.Stat(filepath.Join(dir, "a_tree.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestRunFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[1]`)
	writeFile(t, dir, "rjsonc.toml", "write_tree = true\n")
	e, _, stderr := testEnv(t)

	code := run(context.Background(), e, []string{"parse", "--config", filepath.Join(dir, "rjsonc.toml"), "--root", dir, "--no-tree", "a.json"})
	require.Equal(t, 0, code, stderr.String())
	_, err := os.Stat(filepath.Join(dir, "a_tree.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestRunFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a_tokens.txt", "<[>\n<bogus>\n")
	e, _, stderr := testEnv(t)

	code := run(context.Background(), e, []string{"parse", "--root", dir, "a_tokens.txt"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "Unknown type of Token: <bogus>")
}

func TestRunUnknownExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "x.md", "[1]")
	e, stdout, stderr := testEnv(t)

	code := run(context.Background(), e, []string{"parse", "--root", dir, "x.md"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unsupported file format none")
	require.Contains(t, stdout.String(), "cannot process /x.md")
	_, err := os.Stat(filepath.Join(dir, "x_errors.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestRunUsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{"no targets", []string{"parse"}},
		{"bad format", []string{"lex", "--format", "xml", "a.json"}},
		{"missing config", []string{"parse", "--config", "/does/not/exist.toml", "a.json"}},
		{"negative concurrency", []string{"parse", "--max-concurrency", "-1", "a.json"}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			e, _, stderr := testEnv(t)
			require.Equal(t, 1, run(context.Background(), e, testCase.args))
			require.NotEmpty(t, stderr.String())
		})
	}
}

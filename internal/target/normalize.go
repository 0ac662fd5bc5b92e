package target

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Normalize processes a given lex or parse target and converts it into a
// standard form.
//
// Targets may be any valid URI or file path. When the target is a file path or
// a file URI then we convert the paths to an absolute form. All non-file URIs
// are left as-is with the expectation that they will be handled by some other
// implementation.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	target = filepath.ToSlash(target)
	if !path.IsAbs(target) {
		return path.Join("/", target)
	}
	return path.Clean(target)
}

// Stem removes the extension from the final path element. Token stream
// extensions are kept as a "_tok" or "_tokbin" marker so that a token file
// and the text file it was lexed from never share sidecar files.
func Stem(target string) string {
	ext := path.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	switch ext {
	case ".tok", ".tokbin":
		return stem + "_" + ext[1:]
	}
	return stem
}

const (
	tokensSuffix = "_tokens"
)

// ErrorLogPath is the sibling file that receives semantic errors.
func ErrorLogPath(target string) string {
	return Stem(target) + "_errors.txt"
}

// TreePath is the sibling file that receives the rendered parse tree.
func TreePath(target string) string {
	return Stem(target) + "_tree.txt"
}

// TokensPath is the sibling file that receives one canonical token per line.
func TokensPath(target string) string {
	return Stem(target) + tokensSuffix + ".txt"
}

// WirePath is the sibling file that receives the binary token stream.
func WirePath(target string) string {
	return Stem(target) + ".tokbin"
}

package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"

	"gopkg.microglot.org/rjson.go/internal/exc"
	"gopkg.microglot.org/rjson.go/internal/fs"
	"gopkg.microglot.org/rjson.go/internal/iter"
	"gopkg.microglot.org/rjson.go/internal/lang"
	"gopkg.microglot.org/rjson.go/internal/syntax"
	"gopkg.microglot.org/rjson.go/internal/target"
	"gopkg.microglot.org/rjson.go/internal/tokens"
)

type Option func(f *frontend) error

func OptionWithFS(v lang.FileSystem) Option {
	return func(f *frontend) error {
		f.FS = v
		return nil
	}
}

// OptionWithConsole sets the writer that receives diagnostics, dumped tokens
// and rendered trees. Output for one file is written in a single block.
func OptionWithConsole(w io.Writer) Option {
	return func(f *frontend) error {
		f.Console = w
		return nil
	}
}

func OptionWithLogger(logger *slog.Logger) Option {
	return func(f *frontend) error {
		f.Logger = logger
		return nil
	}
}

func OptionWithMaxConcurrency(n int) Option {
	return func(f *frontend) error {
		if n < 0 {
			return fmt.Errorf("max concurrency must not be negative: %d", n)
		}
		f.MaxConcurrency = n
		return nil
	}
}

func OptionWithProcessors(processors map[lang.FileKind]Processor) Option {
	return func(f *frontend) error {
		f.Processors = processors
		return nil
	}
}

// OptionWithRunID replaces the generator of per-file run identifiers.
func OptionWithRunID(next func() string) Option {
	return func(f *frontend) error {
		f.RunID = next
		return nil
	}
}

func New(opts ...Option) (lang.Frontend, error) {
	f := &frontend{}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.FS == nil {
		lfs, err := fs.NewFileSystemLocal(".")
		if err != nil {
			return nil, err
		}
		f.FS = lfs
	}
	if f.Console == nil {
		f.Console = os.Stdout
	}
	if f.Logger == nil {
		f.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if f.MaxConcurrency == 0 {
		procs := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if procs > cpus {
			procs = cpus
		}
		f.MaxConcurrency = procs
	}
	if f.Semaphore == nil {
		f.Semaphore = newSemaphore(f.MaxConcurrency)
	}
	if f.Processors == nil {
		f.Processors = DefaultProcessors()
	}
	if f.RunID == nil {
		f.RunID = uuid.NewString
	}
	return f, nil
}

type frontend struct {
	FS             lang.FileSystem
	Console        io.Writer
	Logger         *slog.Logger
	MaxConcurrency int
	Semaphore      *semaphore
	Processors     map[lang.FileKind]Processor
	RunID          func() string
	consoleLock    sync.Mutex
}

func (self *frontend) Process(ctx context.Context, req *lang.ProcessRequest) (*lang.ProcessResponse, error) {
	var inputs []input
	seen := make(map[string]bool)
	for _, f := range req.Files {
		normalized := target.Normalize(f)
		in, err := self.FS.Open(ctx, normalized)
		if err != nil {
			return nil, err
		}
		explicit := len(in) == 1 && in[0].Path(ctx) == normalized
		for _, inf := range in {
			if seen[inf.Path(ctx)] {
				continue
			}
			seen[inf.Path(ctx)] = true
			inputs = append(inputs, input{file: inf, explicit: explicit})
		}
	}
	files, conflicts := self.plan(ctx, req, inputs)

	results := make(chan fileResult, len(files))
	for x, file := range files {
		go func(x int, file lang.File) {
			result, err := self.processFile(ctx, req, file, conflicts[x])
			results <- fileResult{index: x, result: result, err: err}
		}(x, file)
	}

	out := make([]*lang.FileResult, len(files))
	failures := make([]error, len(files))
	for x := 0; x < len(files); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			out[result.index] = result.result
			failures[result.index] = result.err
		}
	}

	var caught MultiException
	for x, err := range failures {
		if err != nil {
			caught = append(caught, asException(files[x].Path(ctx), err))
		}
	}
	resp := &lang.ProcessResponse{Results: out}
	if len(caught) > 0 {
		return resp, caught
	}
	return resp, nil
}

// input is an opened file. Explicit inputs were named directly rather than
// found in a directory.
type input struct {
	file     lang.File
	explicit bool
}

// plan drops directory entries that the run rewrites by dumping tokens. Each
// remaining file is paired with an error if one of its outputs is read or
// written by an earlier file of the run.
func (self *frontend) plan(ctx context.Context, req *lang.ProcessRequest, inputs []input) ([]lang.File, []exc.Exception) {
	dumped := make(map[string]bool)
	for _, in := range inputs {
		if out := dumpPath(req, in.file.Kind(ctx), in.file.Path(ctx)); out != "" {
			dumped[out] = true
		}
	}
	claimed := make(map[string]string)
	files := make([]lang.File, 0, len(inputs))
	for _, in := range inputs {
		uri := in.file.Path(ctx)
		if dumped[uri] && !in.explicit {
			self.Logger.DebugContext(ctx, "skipping file rewritten by this run", "uri", uri)
			continue
		}
		claimed[uri] = uri
		files = append(files, in.file)
	}
	conflicts := make([]exc.Exception, len(files))
	for x, file := range files {
		uri := file.Path(ctx)
		kind := file.Kind(ctx)
		if self.Processors[kind] == nil {
			continue
		}
		outputs := sidecars(req, kind, uri)
		for _, out := range outputs {
			if owner, ok := claimed[out]; ok && owner != uri {
				conflicts[x] = exc.New(
					exc.Location{URI: uri},
					exc.CodeOutputConflict,
					fmt.Sprintf("output %s is also written or read by %s", out, owner),
				)
				break
			}
		}
		if conflicts[x] != nil {
			continue
		}
		for _, out := range outputs {
			claimed[out] = uri
		}
	}
	return files, conflicts
}

// sidecars lists the files a request writes next to uri.
func sidecars(req *lang.ProcessRequest, kind lang.FileKind, uri string) []string {
	var out []string
	if dump := dumpPath(req, kind, uri); dump != "" {
		out = append(out, dump)
	}
	if req.LexOnly {
		return out
	}
	out = append(out, target.ErrorLogPath(uri))
	if req.WriteTree {
		out = append(out, target.TreePath(uri))
	}
	return out
}

// dumpPath is the token file written for uri, or empty when the request does
// not dump tokens for files of this kind.
func dumpPath(req *lang.ProcessRequest, kind lang.FileKind, uri string) string {
	if kind != lang.FileKindText {
		return ""
	}
	switch req.DumpTokens {
	case lang.TokenFormatText:
		return target.TokensPath(uri)
	case lang.TokenFormatBinary:
		return target.WirePath(uri)
	default:
		return ""
	}
}

// processFile runs one input through its lexer and the parser. Returned
// errors are fatal for the file. Everything else is a diagnostic.
func (self *frontend) processFile(ctx context.Context, req *lang.ProcessRequest, file lang.File, conflict exc.Exception) (result *lang.FileResult, err error) {
	self.Semaphore.Lock()
	defer self.Semaphore.Unlock()

	uri := file.Path(ctx)
	kind := file.Kind(ctx)
	result = &lang.FileResult{URI: uri, RunID: self.RunID(), Kind: kind}
	logger := self.Logger.With("uri", uri, "run_id", result.RunID, "kind", kind.String())
	logger.DebugContext(ctx, "processing file")

	var console bytes.Buffer
	var log *syntax.SemanticLog
	reporter := exc.NewConsoleReporter(exc.NewReporter(nil), &console)
	defer func() {
		result.Console = console.String()
		result.Diagnostics = diagnostics(reporter)
		self.flush(console.Bytes())
		counts := countDiagnostics(reporter)
		if err != nil {
			logger.ErrorContext(ctx, "file aborted", "error", err)
			return
		}
		attrs := []any{
			"tokens", len(result.Tokens),
			"roots", len(result.Roots),
			"lexical", counts.lexical,
			"syntax", counts.syntax,
			"semantic", counts.semantic,
		}
		if log != nil {
			attrs = append(attrs,
				"level_a", log.Count(syntax.LevelA),
				"level_b", log.Count(syntax.LevelB),
				"level_c", log.Count(syntax.LevelC),
			)
		}
		logger.InfoContext(ctx, "file processed", attrs...)
	}()

	if conflict != nil {
		return result, reporter.Report(conflict)
	}
	processor := self.Processors[kind]
	if processor == nil {
		e := exc.New(exc.Location{URI: uri}, exc.CodeUnsupportedFileFormat, fmt.Sprintf("cannot process %s: unsupported file format %s", uri, kind))
		return result, reporter.Report(e)
	}
	lf, err := processor(reporter).Lex(ctx, file)
	if err != nil {
		return result, err
	}

	dump := dumpPath(req, kind, uri)
	if dump != "" || req.LexOnly {
		stream, err := lf.Tokens(ctx)
		if err != nil {
			return result, err
		}
		toks, err := iter.Collect(ctx, stream)
		if err != nil {
			return result, err
		}
		lf = tokens.NewSliceFile(file, toks)
		for _, tok := range toks {
			if tok.Kind == lang.TokenKindEOF {
				break
			}
			result.Tokens = append(result.Tokens, *tok)
		}
		if dump != "" {
			if err := self.writeTokens(ctx, dump, req.DumpTokens, result.Tokens); err != nil {
				return result, err
			}
			result.Outputs = append(result.Outputs, dump)
		}
		if req.LexOnly {
			_ = tokens.WriteText(&console, result.Tokens)
			return result, nil
		}
	}

	logURI := target.ErrorLogPath(uri)
	w, err := self.FS.Create(ctx, logURI)
	if err != nil {
		return result, err
	}
	result.Outputs = append(result.Outputs, logURI)
	log = syntax.NewSemanticLog(w, reporter)
	defer func() {
		if errClose := log.Close(); errClose != nil && err == nil {
			err = exc.WrapUnknown(exc.Location{URI: logURI}, errClose)
		}
	}()

	p, err := syntax.NewParser(reporter, log).PrepareParse(ctx, lf)
	if err != nil {
		return result, err
	}
	var roots []*lang.Node
	if req.Document {
		roots, err = p.ParseDocument()
	} else {
		var root *lang.Node
		root, err = p.Parse()
		roots = []*lang.Node{root}
	}
	if err != nil {
		return result, err
	}
	result.Roots = roots

	if req.CheckLists {
		for _, root := range roots {
			_ = syntax.CheckLists(root, log)
		}
	}

	var tree strings.Builder
	for _, root := range roots {
		_ = lang.Render(&tree, root)
	}
	_, _ = console.WriteString(tree.String())
	if req.WriteTree {
		treeURI := target.TreePath(uri)
		if err := self.FS.Write(ctx, treeURI, tree.String()); err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, treeURI)
	}
	return result, nil
}

func (self *frontend) writeTokens(ctx context.Context, out string, format lang.TokenFormat, toks []lang.Token) error {
	write := tokens.WriteText
	if format == lang.TokenFormatBinary {
		write = tokens.WriteWire
	}
	w, err := self.FS.Create(ctx, out)
	if err != nil {
		return err
	}
	if err := write(w, toks); err != nil {
		_ = w.Close()
		return exc.WrapUnknown(exc.Location{URI: out}, err)
	}
	if err := w.Close(); err != nil {
		return exc.WrapUnknown(exc.Location{URI: out}, err)
	}
	return nil
}

func (self *frontend) flush(b []byte) {
	if len(b) < 1 {
		return
	}
	self.consoleLock.Lock()
	defer self.consoleLock.Unlock()
	_, _ = self.Console.Write(b)
}

type fileResult struct {
	index  int
	result *lang.FileResult
	err    error
}

func diagnostics(r exc.Reporter) []error {
	reported := r.Reported()
	out := make([]error, 0, len(reported))
	for _, e := range reported {
		out = append(out, e)
	}
	return out
}

type diagnosticCounts struct {
	lexical  int
	syntax   int
	semantic int
}

func countDiagnostics(r exc.Reporter) diagnosticCounts {
	var counts diagnosticCounts
	for _, e := range r.Reported() {
		switch e.(type) {
		case *syntax.LexicalError:
			counts.lexical = counts.lexical + 1
		case *syntax.SyntaxError:
			counts.syntax = counts.syntax + 1
		case *syntax.SemanticError:
			counts.semantic = counts.semantic + 1
		}
	}
	return counts
}

func asException(uri string, err error) exc.Exception {
	var e exc.Exception
	if errors.As(err, &e) {
		return e
	}
	return exc.WrapUnknown(exc.Location{URI: uri}, err)
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}

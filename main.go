package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gopkg.microglot.org/rjson.go/internal/config"
	"gopkg.microglot.org/rjson.go/internal/frontend"
	"gopkg.microglot.org/rjson.go/internal/fs"
	"gopkg.microglot.org/rjson.go/internal/lang"
)

type opts struct {
	ConfigPath     string
	Roots          []string
	Verbose        bool
	MaxConcurrency int
	Format         string
	Document       bool
	CheckLists     bool
	NoTree         bool
	DumpTokens     bool
}

type env struct {
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	e := &env{stdout: os.Stdout, stderr: os.Stderr, lookup: os.LookupEnv}
	os.Exit(run(ctx, e, os.Args[1:]))
}

func run(ctx context.Context, e *env, args []string) int {
	cmd := newRootCommand(e)
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var me frontend.MultiException
		if errors.As(err, &me) {
			for _, err := range me {
				fmt.Fprintln(e.stderr, err.Error())
			}
			return 1
		}
		fmt.Fprintln(e.stderr, err.Error())
		return 1
	}
	return 0
}

func newRootCommand(e *env) *cobra.Command {
	op := &opts{}
	root := &cobra.Command{
		Use:           "rjsonc",
		Short:         "Lex and parse relaxed JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	persistent := root.PersistentFlags()
	persistent.StringVar(&op.ConfigPath, "config", "", "Configuration file. Defaults to the first rjsonc.toml or rjsonc.yaml found.")
	persistent.StringSliceVar(&op.Roots, "root", []string{"."}, "Root directories that targets are resolved against.")
	persistent.BoolVarP(&op.Verbose, "verbose", "v", false, "Log progress to STDERR.")
	persistent.IntVar(&op.MaxConcurrency, "max-concurrency", 0, "Maximum number of files processed at once.")

	lex := &cobra.Command{
		Use:   "lex [targets...]",
		Short: "Write the token stream of each target next to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := settings(cmd, e, op)
			if err != nil {
				return err
			}
			format, err := c.Tokens()
			if err != nil {
				return err
			}
			return process(cmd.Context(), e, c, &lang.ProcessRequest{
				Files:      args,
				DumpTokens: format,
				LexOnly:    true,
			})
		},
	}
	lex.Flags().StringVar(&op.Format, "format", "text", "Token file format: text or binary.")

	parse := &cobra.Command{
		Use:   "parse [targets...]",
		Short: "Parse each target and write its error log and tree next to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := settings(cmd, e, op)
			if err != nil {
				return err
			}
			req := &lang.ProcessRequest{
				Files:      args,
				Document:   c.Document,
				CheckLists: c.CheckLists,
				WriteTree:  c.WriteTree,
			}
			if op.DumpTokens {
				if req.DumpTokens, err = c.Tokens(); err != nil {
					return err
				}
			}
			return process(cmd.Context(), e, c, req)
		},
	}
	flags := parse.Flags()
	flags.BoolVar(&op.Document, "document", false, "Parse every top-level value instead of only the first.")
	flags.BoolVar(&op.CheckLists, "check-lists", false, "Check that list elements share one type.")
	flags.BoolVar(&op.NoTree, "no-tree", false, "Do not write the rendered tree next to each target.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Also write the token stream of raw text targets.")
	flags.StringVar(&op.Format, "format", "text", "Token file format used with --dump-tokens.")

	root.AddCommand(lex, parse)
	return root
}

// settings loads the configuration file and applies every flag that was set
// explicitly on top of it.
func settings(cmd *cobra.Command, e *env, op *opts) (*config.Config, error) {
	c, _, err := config.Resolve(op.ConfigPath, e.lookup)
	if err != nil {
		return nil, err
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "root":
			c.Roots = op.Roots
		case "verbose":
			c.Verbose = op.Verbose
		case "max-concurrency":
			c.MaxConcurrency = op.MaxConcurrency
		case "format":
			c.TokenFormat = op.Format
		case "document":
			c.Document = op.Document
		case "check-lists":
			c.CheckLists = op.CheckLists
		case "no-tree":
			c.WriteTree = !op.NoTree
		}
	})
	if c.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max concurrency must not be negative: %d", c.MaxConcurrency)
	}
	return c, nil
}

func process(ctx context.Context, e *env, c *config.Config, req *lang.ProcessRequest) error {
	roots := c.Roots
	if len(roots) < 1 {
		roots = []string{"."}
	}
	mf := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return err
		}
		mf = append(mf, rf)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.Verbose {
		logger = slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	f, err := frontend.New(
		frontend.OptionWithFS(mf),
		frontend.OptionWithConsole(e.stdout),
		frontend.OptionWithLogger(logger),
		frontend.OptionWithMaxConcurrency(c.MaxConcurrency),
	)
	if err != nil {
		return err
	}
	_, err = f.Process(ctx, req)
	return err
}

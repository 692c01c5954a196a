// Command rfexproto is the process entry point: interactive REPL,
// batch evaluation of a file or stdin, and --watch re-evaluation on
// file change. Cobra flags feed a RunE that returns an error for cobra
// to report, with the actual exit code threaded back out separately so
// deferred cleanup still runs (os.Exit skips defers).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/GeeTransit/rfexproto/builtins"
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/jitconfig"
	"github.com/GeeTransit/rfexproto/repl"
	"github.com/GeeTransit/rfexproto/value"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		file    string
		prelude string
		watch   bool
	)

	exitCode := 0
	rootCmd := &cobra.Command{
		Use:           "rfexproto [file]",
		Short:         "Evaluate fexpr source interactively or in batch",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				file = args[0]
			}
			if _, err := jitconfig.Parse(os.Getenv("RFEXPROTO_JIT_CONFIG")); err != nil {
				return err
			}
			if watch {
				if file == "" {
					return fmt.Errorf("--watch requires a file argument")
				}
				return watchLoop(file, prelude)
			}
			exitCode = runOnce(file, prelude)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&file, "file", "f", "", "path to a file to evaluate (default: stdin)")
	rootCmd.PersistentFlags().StringVar(&prelude, "prelude", "std.lisp", "prelude file loaded before any other form")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "re-evaluate the file whenever it changes on disk")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rfexproto: %v\n", err)
		return 1
	}
	return exitCode
}

// newStandardEnv builds the two-layer environment every top-level form
// runs in: a root frame holding every primitive combiner, and a child
// frame definitions accumulate in, so a REPL session's `$define!`s
// never shadow a primitive permanently across a --watch reload.
func newStandardEnv() (*eval.Driver, *value.Environment) {
	d := eval.NewDriver()
	root := value.NewEnvironment(nil)
	builtins.Install(root, d)
	return d, value.NewEnvironment(root)
}

func runOnce(file, prelude string) int {
	in, interactive, closeFn, err := openInput(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rfexproto: %v\n", err)
		return 1
	}
	defer closeFn()

	d, env := newStandardEnv()
	s := repl.New(d, env, in, os.Stdout, os.Stderr, interactive)
	if err := s.LoadPrelude(prelude); err != nil {
		fmt.Fprintf(os.Stderr, "rfexproto: %v\n", err)
		return 1
	}
	return s.Run()
}

// openInput resolves the three ways rfexproto can be fed a program: a
// named file (always batch mode), an explicit "-" (batch mode, stdin),
// or no file at all (interactive if stdin is a terminal, batch mode if
// it's piped).
func openInput(file string) (in *os.File, interactive bool, closeFn func(), err error) {
	if file == "" || file == "-" {
		stat, statErr := os.Stdin.Stat()
		isTerminal := statErr == nil && (stat.Mode()&os.ModeCharDevice) != 0
		return os.Stdin, file == "" && isTerminal, func() {}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, false, func() {}, fmt.Errorf("error opening file %s: %w", file, err)
	}
	return f, false, func() { _ = f.Close() }, nil
}

// watchLoop re-runs file in batch mode every time it (or its directory
// entry, to survive editors that write-then-rename) changes. One
// goroutine -- fsnotify's own -- feeds one channel this loop selects
// on; the evaluator itself never sees concurrency.
func watchLoop(file, prelude string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(file)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	base := filepath.Base(file)

	runAndReport := func() {
		fmt.Fprintf(os.Stdout, "--- running %s ---\n", file)
		runOnce(file, prelude)
	}
	runAndReport()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			runAndReport()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("file watcher error", "error", watchErr)
		}
	}
}

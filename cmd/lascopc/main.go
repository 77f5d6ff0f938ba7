package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lascopc/internal/app"
	"lascopc/internal/config"
	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/infra/fs"
	"lascopc/internal/infra/pdal"
	"lascopc/internal/logging"
	"lascopc/internal/pipeline"
	"lascopc/internal/presentation"
	"lascopc/internal/tui"
	"lascopc/internal/version"
)

const (
	exitOK       = 0
	exitError    = 1
	exitFailures = 2
)

func main() {
	code := exitOK
	cmd := newRootCommand(os.Stdout, os.Stderr, &code)
	cmd.SetArgs(config.NormalizeArgs(os.Args[1:]))

	if err := cmd.Execute(); err != nil {
		exitWithError(err)
	}
	os.Exit(code)
}

func newRootCommand(stdout, stderr io.Writer, code *int) *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:   "lascopc <path>",
		Short: "Convert LAS/LAZ files to COPC (.copc.laz) with PDAL",
		Long: "Convert a LAS/LAZ file, or every matching file in a directory, to COPC\n" +
			"by running a PDAL pipeline per file.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "args", "", err)
			}
			return nil
		},
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Build(args[0], flags)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			*code, err = run(cmd.Context(), opts, stdout, stderr)
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return appErrors.Wrap(appErrors.InvalidConfig, "flags", "", err)
	})
	flags.Register(cmd.Flags())
	return cmd
}

// run converts the configured path and returns the process exit code. An
// error is returned only when nothing could be converted at all.
func run(ctx context.Context, opts domain.Options, stdout, stderr io.Writer) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := uuid.NewString()[:8]
	logger := logging.New(stderr, opts.Verbose, runID)
	filesystem := fs.OSFS{}
	runner := pdal.Runner{Binary: opts.PDALPath, RunID: runID}
	if opts.Verbose {
		runner.Stderr = stderr
	}

	info, err := filesystem.Stat(opts.InputPath)
	if err != nil {
		return exitError, appErrors.Wrap(appErrors.NotFound, "stat", opts.InputPath, err)
	}

	if !opts.DryRun {
		pdalVersion, err := runner.Version(ctx)
		if err != nil {
			return exitError, err
		}
		logger.Verbosef("Using %s", pdalVersion)
	}

	printer := presentation.Printer{Writer: stdout, Styled: isTerminal(stdout)}
	converter := &app.Converter{FS: filesystem, Runner: runner, Logger: logger}

	var results []domain.Result
	if info.IsDir() {
		planner := app.Planner{FS: filesystem, Logger: logger}
		plan, err := planner.Plan(opts.InputPath, opts)
		if err != nil {
			return exitError, err
		}
		if len(plan.Items) == 0 {
			return exitError, appErrors.Configf("plan", "no .las/.laz files in %s match %q", opts.InputPath, opts.Glob)
		}
		logger.Infof("Converting %d files to COPC (%d already converted)", len(plan.Items), plan.SkipCount())

		if opts.DryRun {
			for _, item := range plan.Pending() {
				if err := printPipeline(printer, item.InputPath, item.OutputPath, opts); err != nil {
					return exitError, err
				}
			}
		}

		dispatcher := &app.Dispatcher{Converter: converter, Logger: logger}
		if opts.TUI && !opts.DryRun && isTerminal(stdout) {
			results, err = runWithTUI(ctx, dispatcher, plan, opts)
			if err != nil {
				logger.Warnf("progress view stopped: %v", err)
			}
		} else {
			dispatcher.OnResult = func(done, total int, r domain.Result) {
				logger.Verbosef("[%d/%d] %s %s", done, total, filepath.Base(r.InputPath), r.Status)
			}
			results = dispatcher.Run(ctx, plan, opts)
		}
	} else {
		if !domain.IsPointCloudExtension(filepath.Ext(opts.InputPath)) {
			return exitError, appErrors.Wrap(appErrors.InvalidConfig, "input", opts.InputPath,
				errors.New("input must be a .las or .laz file"))
		}
		if strings.HasSuffix(strings.ToLower(opts.InputPath), domain.CopcSuffix) {
			return exitError, appErrors.Wrap(appErrors.InvalidConfig, "input", opts.InputPath,
				errors.New("input is already a COPC file"))
		}
		if opts.DryRun {
			output := domain.OutputPath(opts.InputPath, opts.Outdir)
			if err := printPipeline(printer, opts.InputPath, output, opts); err != nil {
				return exitError, err
			}
		}
		results = []domain.Result{converter.Convert(ctx, opts.InputPath, opts)}
	}

	printer.PrintResults(results)
	if domain.Summarize(results).Failed > 0 {
		return exitFailures, nil
	}
	return exitOK, nil
}

func printPipeline(printer presentation.Printer, input, output string, opts domain.Options) error {
	spec, err := pipeline.Build(input, output, opts)
	if err != nil {
		return err
	}
	return printer.PrintDryRun(spec)
}

// runWithTUI drives the batch from a goroutine while bubbletea owns the
// terminal. Quitting the view, or the view failing, does not stop
// conversions; their results are always collected.
func runWithTUI(ctx context.Context, dispatcher *app.Dispatcher, plan domain.BatchPlan, opts domain.Options) ([]domain.Result, error) {
	program := tea.NewProgram(tui.NewModel(tui.Config{
		Dir:     plan.Dir,
		Total:   len(plan.Items),
		Workers: app.ClampWorkers(opts.Workers, len(plan.Pending())),
	}))

	dispatcher.OnResult = func(done, total int, r domain.Result) {
		program.Send(tui.ResultMsg{Done: done, Total: total, Result: r})
	}

	resultsCh := make(chan []domain.Result, 1)
	go func() {
		results := dispatcher.Run(ctx, plan, opts)
		program.Send(tui.DoneMsg{})
		resultsCh <- results
	}()

	_, err := program.Run()
	return <-resultsCh, err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
	os.Exit(exitError)
}

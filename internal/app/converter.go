package app

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/logging"
	"lascopc/internal/pipeline"
)

type Converter struct {
	FS     FileSystem
	Runner PipelineRunner
	Logger logging.Logger
	Now    func() time.Time
}

func (c *Converter) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Convert resolves the output path for inputPath and converts it. Failures
// are reported in the result, never returned.
func (c *Converter) Convert(ctx context.Context, inputPath string, opts domain.Options) domain.Result {
	return c.ConvertTo(ctx, inputPath, domain.OutputPath(inputPath, opts.Outdir), opts)
}

func (c *Converter) ConvertTo(ctx context.Context, inputPath, outputPath string, opts domain.Options) domain.Result {
	result := domain.Result{
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
	fail := func(err error) domain.Result {
		result.Status = domain.StatusFailed
		result.Err = err
		return result
	}

	if c.FS == nil || c.Runner == nil {
		return fail(appErrors.Wrap(appErrors.Internal, "convert", inputPath, errors.New("converter requires FS and Runner")))
	}

	if _, err := c.FS.Stat(inputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(appErrors.Wrap(appErrors.NotFound, "stat", inputPath, err))
		}
		return fail(appErrors.Wrap(appErrors.IOFailure, "stat", inputPath, err))
	}

	exists, err := c.FS.Exists(outputPath)
	if err != nil {
		return fail(appErrors.Wrap(appErrors.IOFailure, "stat", outputPath, err))
	}
	if exists && !opts.Overwrite {
		c.Logger.Verbosef("Skipping %s, %s exists", filepath.Base(inputPath), filepath.Base(outputPath))
		result.Status = domain.StatusSkipped
		return result
	}

	spec, err := pipeline.Build(inputPath, outputPath, opts)
	if err != nil {
		return fail(err)
	}

	if opts.DryRun {
		result.Status = domain.StatusConverted
		result.DryRun = true
		return result
	}

	if opts.Outdir != "" {
		dir := filepath.Dir(outputPath)
		if err := c.FS.MkdirAll(dir, 0o755); err != nil {
			return fail(appErrors.Wrap(appErrors.IOFailure, "mkdir", dir, err))
		}
	}

	start := c.now()
	err = c.Runner.Run(ctx, spec)
	result.Elapsed = c.now().Sub(start)
	if err != nil {
		var appErr *appErrors.AppError
		if !errors.As(err, &appErr) {
			err = appErrors.Wrap(appErrors.ExternalTool, "pdal pipeline", inputPath, err)
		}
		c.Logger.Verbosef("%s failed after %s: %v", filepath.Base(inputPath), result.Elapsed.Round(time.Millisecond), err)
		return fail(err)
	}

	if info, err := c.FS.Stat(outputPath); err == nil {
		result.OutputBytes = info.Size()
	}
	result.Status = domain.StatusConverted
	c.Logger.Verbosef("%s converted in %s", filepath.Base(inputPath), result.Elapsed.Round(time.Millisecond))
	return result
}

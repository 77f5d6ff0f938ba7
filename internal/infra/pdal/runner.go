// Package pdal runs pipelines with the pdal command-line tool.
package pdal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	appErrors "lascopc/internal/errors"
	"lascopc/internal/pipeline"
)

// Runner executes a pipeline by writing it to a temporary JSON file and
// invoking `pdal pipeline <file>`.
type Runner struct {
	Binary  string
	TempDir string
	// RunID is embedded in temp file names so concurrent runs are easy to
	// tell apart in the temp directory.
	RunID string
	// Stderr, when set, receives a live copy of pdal's stderr.
	Stderr io.Writer
}

func (r Runner) binary() string {
	if r.Binary == "" {
		return "pdal"
	}
	return r.Binary
}

func (r Runner) Run(ctx context.Context, spec pipeline.Spec) error {
	input := spec.Reader().Filename()

	path, err := r.writeSpec(spec)
	if err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "write pipeline", input, err)
	}
	defer os.Remove(path)

	cmd := exec.CommandContext(ctx, r.binary(), "pipeline", path)

	var stderrBuf bytes.Buffer
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return appErrors.Wrap(appErrors.ExternalTool, "pdal pipeline", input, ctx.Err())
		}
		return classify(input, err, stderrBuf.String())
	}
	return nil
}

func (r Runner) writeSpec(spec pipeline.Spec) (string, error) {
	data, err := spec.Indented()
	if err != nil {
		return "", err
	}

	prefix := "lascopc-"
	if r.RunID != "" {
		prefix += r.RunID + "-"
	}
	file, err := os.CreateTemp(r.TempDir, prefix+"*.json")
	if err != nil {
		return "", err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// classify maps a failed pdal invocation to an error kind. A process killed
// by a signal reports exit code -1 and is treated as a crash.
func classify(input string, runErr error, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) && exitErr.ExitCode() == -1 {
		return appErrors.Wrap(appErrors.WorkerCrash, "pdal pipeline", input,
			fmt.Errorf("%w: %v", appErrors.ErrWorkerCrashed, runErr))
	}

	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = runErr.Error()
	}
	return appErrors.Wrap(appErrors.ExternalTool, "pdal pipeline", input, errors.New(msg))
}

// Version returns the first line of `pdal --version`.
func (r Runner) Version(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(r.binary()); err != nil {
		return "", appErrors.Wrap(appErrors.ExternalTool, "lookup", r.binary(), err)
	}
	out, err := exec.CommandContext(ctx, r.binary(), "--version").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				err = fmt.Errorf("%w: %s", err, msg)
			}
		}
		return "", appErrors.Wrap(appErrors.ExternalTool, "pdal --version", r.binary(), err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Trim(line, "-") == "" {
			continue
		}
		return line, nil
	}
	return "", appErrors.Wrap(appErrors.ExternalTool, "pdal --version", r.binary(), errors.New("empty version output"))
}

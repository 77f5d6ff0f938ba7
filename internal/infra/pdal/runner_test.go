package pdal

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/pipeline"
)

// fakePDAL writes an executable shell script standing in for pdal.
func fakePDAL(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "pdal")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testSpec(t *testing.T) pipeline.Spec {
	t.Helper()
	spec, err := pipeline.Build("/data/a.las", "/data/a.copc.laz", domain.Options{OutSRS: "EPSG:4978"})
	require.NoError(t, err)
	return spec
}

func TestRunPassesPipelineFileAndRemovesIt(t *testing.T) {
	captureDir := t.TempDir()
	argsFile := filepath.Join(captureDir, "args")
	jsonFile := filepath.Join(captureDir, "pipeline.json")
	binary := fakePDAL(t, `echo "$1 $2" > `+argsFile+`
cp "$2" `+jsonFile)

	runner := Runner{Binary: binary, TempDir: t.TempDir(), RunID: "run1"}
	require.NoError(t, runner.Run(context.Background(), testSpec(t)))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	fields := strings.Fields(string(args))
	require.Len(t, fields, 2)
	assert.Equal(t, "pipeline", fields[0])
	assert.Contains(t, filepath.Base(fields[1]), "lascopc-run1-")
	assert.NoFileExists(t, fields[1])

	written, err := os.ReadFile(jsonFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"writers.copc"`)
	assert.Contains(t, string(written), `"/data/a.las"`)
}

func TestRunKeepsStderrVerbatim(t *testing.T) {
	binary := fakePDAL(t, `echo "PDAL: readers.las: Invalid LAS header" >&2
exit 1`)

	err := Runner{Binary: binary, TempDir: t.TempDir()}.Run(context.Background(), testSpec(t))
	require.Error(t, err)
	assert.Equal(t, appErrors.ExternalTool, appErrors.KindOf(err))
	assert.Equal(t, "PDAL failed: PDAL: readers.las: Invalid LAS header", appErrors.UserMessage(err))
}

func TestRunReportsSignalAsCrash(t *testing.T) {
	binary := fakePDAL(t, `kill -9 $$`)

	err := Runner{Binary: binary, TempDir: t.TempDir()}.Run(context.Background(), testSpec(t))
	require.Error(t, err)
	assert.Equal(t, appErrors.WorkerCrash, appErrors.KindOf(err))
	assert.ErrorIs(t, err, appErrors.ErrWorkerCrashed)
}

func TestRunMissingBinary(t *testing.T) {
	runner := Runner{Binary: filepath.Join(t.TempDir(), "no-such-pdal"), TempDir: t.TempDir()}
	err := runner.Run(context.Background(), testSpec(t))
	require.Error(t, err)
	assert.Equal(t, appErrors.ExternalTool, appErrors.KindOf(err))
}

func TestRunTeesStderr(t *testing.T) {
	binary := fakePDAL(t, `echo "progress 50%" >&2`)

	var live strings.Builder
	runner := Runner{Binary: binary, TempDir: t.TempDir(), Stderr: &live}
	require.NoError(t, runner.Run(context.Background(), testSpec(t)))
	assert.Contains(t, live.String(), "progress 50%")
}

func TestVersionSkipsRuleLines(t *testing.T) {
	binary := fakePDAL(t, `echo "--------------------------------"
echo "pdal 2.6.3 (git-version: Release)"
echo "--------------------------------"`)

	version, err := Runner{Binary: binary}.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pdal 2.6.3 (git-version: Release)", version)
}

func TestVersionMissingBinary(t *testing.T) {
	_, err := Runner{Binary: filepath.Join(t.TempDir(), "absent")}.Version(context.Background())
	assert.Equal(t, appErrors.ExternalTool, appErrors.KindOf(err))
}

func TestRunCancelledIsNotACrash(t *testing.T) {
	binary := fakePDAL(t, `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Runner{Binary: binary, TempDir: t.TempDir()}.Run(ctx, testSpec(t))
	require.Error(t, err)
	assert.Equal(t, appErrors.ExternalTool, appErrors.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVersionFailureKeepsStderr(t *testing.T) {
	binary := fakePDAL(t, `echo "libpdalcpp.so.16: cannot open shared object file" >&2
exit 127`)

	_, err := Runner{Binary: binary}.Version(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ExternalTool, appErrors.KindOf(err))
	assert.Contains(t, appErrors.UserMessage(err), "cannot open shared object file")
}

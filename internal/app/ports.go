package app

import (
	"context"
	"io/fs"

	"lascopc/internal/domain"
	"lascopc/internal/pipeline"
)

type FileSystem interface {
	ReadDir(dir string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
}

// PipelineRunner executes a built pipeline. Implementations block until the
// external tool exits.
type PipelineRunner interface {
	Run(ctx context.Context, spec pipeline.Spec) error
}

// FileConverter converts one input to an already resolved output path.
type FileConverter interface {
	ConvertTo(ctx context.Context, inputPath, outputPath string, opts domain.Options) domain.Result
}

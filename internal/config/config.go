package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"lascopc/internal/domain"
)

// Flags holds raw flag values before validation.
type Flags struct {
	Glob      string
	Outdir    string
	InSRS     string
	OutSRS    string
	Scale     []string
	Offset    []string
	Workers   int
	Overwrite bool
	PDALPath  string
	DryRun    bool
	Verbose   bool
	TUI       bool
}

func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Glob, "glob", domain.DefaultGlob, "File pattern when path is a directory")
	fs.StringVarP(&f.Outdir, "outdir", "o", "", "Output directory (default: next to each input)")
	fs.StringVar(&f.InSRS, "in-srs", "", "Input CRS, e.g. EPSG:32647")
	fs.StringVar(&f.OutSRS, "out-srs", "", "Output CRS, e.g. EPSG:4978")
	fs.StringSliceVar(&f.Scale, "scale", nil, "Scale SX SY SZ, e.g. 0.001 0.001 0.001")
	fs.StringSliceVar(&f.Offset, "offset", nil, "Offset OX OY OZ, each a number or auto")
	fs.IntVar(&f.Workers, "workers", 1, "Number of files converted in parallel")
	fs.BoolVar(&f.Overwrite, "overwrite", false, "Overwrite existing outputs")
	fs.StringVar(&f.PDALPath, "pdal", domain.DefaultPDALPath, "pdal executable")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Print pipelines without running them")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVar(&f.TUI, "tui", false, "Interactive progress view for directory runs")
}

// Parse parses command-line arguments without cobra. It expects exactly one
// positional argument, the input path.
func Parse(args []string) (domain.Options, error) {
	var flags Flags
	fs := pflag.NewFlagSet("lascopc", pflag.ContinueOnError)
	flags.Register(fs)

	if err := fs.Parse(NormalizeArgs(args)); err != nil {
		return domain.Options{}, err
	}
	if fs.NArg() != 1 {
		return domain.Options{}, fmt.Errorf("expected exactly one path, got %d", fs.NArg())
	}
	return Build(fs.Arg(0), flags)
}

// Build validates raw flags into Options.
func Build(path string, f Flags) (domain.Options, error) {
	if strings.TrimSpace(path) == "" {
		return domain.Options{}, errors.New("path is required")
	}

	opts := domain.Options{
		InputPath: path,
		Outdir:    f.Outdir,
		Glob:      f.Glob,
		InSRS:     strings.TrimSpace(f.InSRS),
		OutSRS:    strings.TrimSpace(f.OutSRS),
		Workers:   f.Workers,
		Overwrite: f.Overwrite,
		PDALPath:  f.PDALPath,
		DryRun:    f.DryRun,
		Verbose:   f.Verbose,
		TUI:       f.TUI,
	}
	if opts.Glob == "" {
		opts.Glob = domain.DefaultGlob
	}
	if opts.PDALPath == "" {
		opts.PDALPath = domain.DefaultPDALPath
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if err := ValidateSRS("in-srs", f.InSRS); err != nil {
		return domain.Options{}, err
	}
	if err := ValidateSRS("out-srs", f.OutSRS); err != nil {
		return domain.Options{}, err
	}

	if f.Scale != nil {
		scale, err := ParseScale(f.Scale)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Scale = scale
	}
	if f.Offset != nil {
		offset, err := ParseOffset(f.Offset)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Offset = offset
	}

	return opts, nil
}

func ParseScale(values []string) (*domain.Scale, error) {
	if len(values) != 3 {
		return nil, fmt.Errorf("--scale needs 3 values, got %d", len(values))
	}
	var scale domain.Scale
	for i, v := range values {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --scale value %q", v)
		}
		if !isFinite(parsed) || parsed <= 0 {
			return nil, fmt.Errorf("--scale values must be positive, got %q", v)
		}
		scale[i] = parsed
	}
	return &scale, nil
}

func ParseOffset(values []string) (*domain.Offset, error) {
	if len(values) != 3 {
		return nil, fmt.Errorf("--offset needs 3 values, got %d", len(values))
	}
	var offset domain.Offset
	for i, v := range values {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "auto") {
			offset[i] = domain.AutoOffset()
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --offset value %q, use a number or auto", v)
		}
		if !isFinite(parsed) {
			return nil, fmt.Errorf("--offset values must be finite, got %q", v)
		}
		offset[i] = domain.FixedOffset(parsed)
	}
	return &offset, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateSRS catches CRS strings that are malformed on their face. Anything
// not of the AUTHORITY:CODE form (WKT, PROJ strings, files) is left to PDAL.
func ValidateSRS(name, value string) error {
	if value == "" {
		return nil
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("--%s is blank", name)
	}

	authority, code, ok := strings.Cut(trimmed, ":")
	if !ok || !isAuthority(authority) {
		return nil
	}
	if code == "" {
		return fmt.Errorf("--%s %q has no code", name, value)
	}
	if strings.EqualFold(authority, "EPSG") {
		if _, err := strconv.Atoi(code); err != nil {
			return fmt.Errorf("--%s %q: EPSG codes are numeric", name, value)
		}
	}
	return nil
}

func isAuthority(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

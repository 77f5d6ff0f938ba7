package domain

import "strconv"

const (
	DefaultGlob     = "*.las"
	DefaultPDALPath = "pdal"
)

// Options is the validated conversion configuration shared by every file in a run.
type Options struct {
	InputPath string
	Outdir    string
	Glob      string
	InSRS     string
	OutSRS    string
	Scale     *Scale
	Offset    *Offset
	Workers   int
	Overwrite bool

	PDALPath string
	DryRun   bool
	Verbose  bool
	TUI      bool
}

type Scale [3]float64

// OffsetValue is either an explicit number or "auto", meaning PDAL derives
// the offset from the point bounds.
type OffsetValue struct {
	Auto  bool
	Value float64
}

type Offset [3]OffsetValue

func AutoOffset() OffsetValue {
	return OffsetValue{Auto: true}
}

func FixedOffset(v float64) OffsetValue {
	return OffsetValue{Value: v}
}

func (o OffsetValue) String() string {
	if o.Auto {
		return "auto"
	}
	return strconv.FormatFloat(o.Value, 'g', -1, 64)
}

package domain

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

type Status int

const (
	StatusConverted Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of converting one file.
type Result struct {
	InputPath   string
	OutputPath  string
	Status      Status
	Elapsed     time.Duration
	OutputBytes int64
	DryRun      bool
	Err         error
}

func (r Result) OK() bool {
	return r.Status != StatusFailed
}

type Summary struct {
	Converted    int
	Skipped      int
	Failed       int
	TotalElapsed time.Duration
	MeanElapsed  time.Duration
}

func (s Summary) Total() int {
	return s.Converted + s.Skipped + s.Failed
}

// Summarize counts outcomes. Elapsed totals only cover files that were
// actually converted.
func Summarize(results []Result) Summary {
	var summary Summary
	var seconds []float64
	for _, r := range results {
		switch r.Status {
		case StatusConverted:
			summary.Converted++
			summary.TotalElapsed += r.Elapsed
			seconds = append(seconds, r.Elapsed.Seconds())
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	if len(seconds) > 0 {
		summary.MeanElapsed = time.Duration(stat.Mean(seconds, nil) * float64(time.Second))
	}
	return summary
}

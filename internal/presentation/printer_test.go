package presentation

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/pipeline"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                         "0.0s",
		1240 * time.Millisecond:                   "1.2s",
		59*time.Second + 900*time.Millisecond:     "59.9s",
		4*time.Minute + 5*time.Second:             "4m 5s",
		time.Hour + 2*time.Minute + 3*time.Second: "1h 2m 3s",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintResultsKeepsOrderAndTotals(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf}

	results := []domain.Result{
		{InputPath: "/d/a.las", OutputPath: "/d/a.copc.laz", Status: domain.StatusConverted, Elapsed: 2 * time.Second, OutputBytes: 1500000},
		{InputPath: "/d/b.las", OutputPath: "/d/b.copc.laz", Status: domain.StatusSkipped},
		{
			InputPath:  "/d/c.las",
			OutputPath: "/d/c.copc.laz",
			Status:     domain.StatusFailed,
			Elapsed:    time.Second,
			Err:        appErrors.Wrap(appErrors.ExternalTool, "pdal pipeline", "/d/c.las", errors.New("PDAL: bad header")),
		},
	}

	printer.PrintResults(results)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "[OK] a.las : OK -> a.copc.laz (1.5 MB)  (2.0s)" {
		t.Fatalf("unexpected ok line %q", lines[0])
	}
	if lines[1] != "[SKIP] b.las : skipped, b.copc.laz already exists" {
		t.Fatalf("unexpected skip line %q", lines[1])
	}
	if lines[2] != "[NG] c.las : PDAL failed: PDAL: bad header  (1.0s)" {
		t.Fatalf("unexpected failure line %q", lines[2])
	}
	if lines[4] != "Summary: 1 converted | 1 skipped | 1 failed | total 2.0s | mean 2.0s" {
		t.Fatalf("unexpected summary %q", lines[4])
	}
}

func TestPrintResultsDryRun(t *testing.T) {
	var buf bytes.Buffer
	Printer{Writer: &buf}.PrintResults([]domain.Result{
		{InputPath: "a.las", OutputPath: "a.copc.laz", Status: domain.StatusConverted, DryRun: true},
	})
	if !strings.HasPrefix(buf.String(), "[DRY] a.las : would write a.copc.laz") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintDryRunShowsPipeline(t *testing.T) {
	spec, err := pipeline.Build("/d/a.las", "/d/a.copc.laz", domain.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := (Printer{Writer: &buf}).PrintDryRun(spec); err != nil {
		t.Fatalf("print: %v", err)
	}
	output := buf.String()
	if !strings.HasPrefix(output, "# a.las\n") {
		t.Fatalf("expected header line, got %q", output)
	}
	if !strings.Contains(output, `"writers.copc"`) {
		t.Fatalf("expected writer stage in output")
	}
}

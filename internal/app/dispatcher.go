package app

import (
	"context"
	"fmt"
	"sync"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/logging"
)

// ProgressFunc is called after each file finishes, in completion order.
type ProgressFunc func(done, total int, result domain.Result)

type Dispatcher struct {
	Converter FileConverter
	Logger    logging.Logger
	OnResult  ProgressFunc
}

// Run converts every pending item of plan on opts.Workers goroutines and
// returns one result per plan item, in plan order. The pool lives only for
// the duration of the call.
func (d *Dispatcher) Run(ctx context.Context, plan domain.BatchPlan, opts domain.Options) []domain.Result {
	stop := d.Logger.Measure("Batch conversion")
	defer stop()

	type job struct {
		index int
		item  domain.PlanItem
	}
	type finished struct {
		index  int
		result domain.Result
	}

	total := len(plan.Items)
	results := make([]domain.Result, total)
	done := 0

	var pending []job
	for i, item := range plan.Items {
		if item.Skip {
			results[i] = domain.Result{
				InputPath:  item.InputPath,
				OutputPath: item.OutputPath,
				Status:     domain.StatusSkipped,
			}
			done++
			d.report(done, total, results[i])
			continue
		}
		pending = append(pending, job{index: i, item: item})
	}

	workerCount := ClampWorkers(opts.Workers, len(pending))
	d.Logger.Verbosef("Dispatching %d files to %d workers", len(pending), workerCount)

	jobs := make(chan job, len(pending))
	for _, j := range pending {
		jobs <- j
	}
	close(jobs)

	out := make(chan finished)
	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out <- finished{index: j.index, result: d.convert(ctx, j.item, opts)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	for f := range out {
		results[f.index] = f.result
		done++
		d.report(done, total, f.result)
	}
	return results
}

func (d *Dispatcher) report(done, total int, result domain.Result) {
	if d.OnResult != nil {
		d.OnResult(done, total, result)
	}
}

// convert runs one conversion, turning a panic into a crash result for that
// file only.
func (d *Dispatcher) convert(ctx context.Context, item domain.PlanItem, opts domain.Options) (result domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.Logger.Verbosef("Worker crashed on %s: %v", item.InputPath, r)
			result = domain.Result{
				InputPath:  item.InputPath,
				OutputPath: item.OutputPath,
				Status:     domain.StatusFailed,
				Err: appErrors.Wrap(appErrors.WorkerCrash, "convert", item.InputPath,
					fmt.Errorf("%w: %v", appErrors.ErrWorkerCrashed, r)),
			}
		}
	}()
	if d.Converter == nil {
		panic("dispatcher requires a Converter")
	}
	return d.Converter.ConvertTo(ctx, item.InputPath, item.OutputPath, opts)
}

// ClampWorkers bounds the requested worker count to [1, jobs]. With no jobs
// it returns 0.
func ClampWorkers(requested, jobs int) int {
	if jobs <= 0 {
		return 0
	}
	if requested < 1 {
		requested = 1
	}
	if requested > jobs {
		requested = jobs
	}
	return requested
}

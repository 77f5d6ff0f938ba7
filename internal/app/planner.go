package app

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
	"lascopc/internal/logging"
)

type Planner struct {
	FS     FileSystem
	Logger logging.Logger
}

// Plan lists the inputs in dir (not its subdirectories) matching opts.Glob
// and resolves their outputs. Items whose output exists are marked Skip
// unless opts.Overwrite is set.
func (p *Planner) Plan(dir string, opts domain.Options) (domain.BatchPlan, error) {
	if p.FS == nil {
		return domain.BatchPlan{}, errors.New("planner requires FS")
	}

	stop := p.Logger.Measure("Planning batch")
	defer stop()

	pattern := opts.Glob
	if pattern == "" {
		pattern = domain.DefaultGlob
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return domain.BatchPlan{}, appErrors.Configf("glob", "invalid pattern %q: %v", pattern, err)
	}

	entries, err := p.FS.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.BatchPlan{}, appErrors.Wrap(appErrors.NotFound, "readdir", dir, err)
		}
		return domain.BatchPlan{}, appErrors.Wrap(appErrors.IOFailure, "readdir", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matched, _ := filepath.Match(pattern, name); !matched {
			continue
		}
		if !domain.IsPointCloudExtension(filepath.Ext(name)) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(name), domain.CopcSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	p.Logger.Verbosef("Found %d of %d entries in %s matching %q", len(names), len(entries), dir, pattern)

	plan := domain.BatchPlan{Dir: dir}
	owners := make(map[string]string, len(names))
	for _, name := range names {
		input := filepath.Join(dir, name)
		output := domain.OutputPath(input, opts.Outdir)
		if other, taken := owners[output]; taken {
			return domain.BatchPlan{}, appErrors.Configf("plan", "%s and %s would both write %s", other, name, output)
		}
		owners[output] = name

		skip := false
		if !opts.Overwrite {
			exists, err := p.FS.Exists(output)
			if err != nil {
				return domain.BatchPlan{}, appErrors.Wrap(appErrors.IOFailure, "stat", output, err)
			}
			skip = exists
		}
		plan.Items = append(plan.Items, domain.PlanItem{
			InputPath:  input,
			OutputPath: output,
			Skip:       skip,
		})
	}

	p.Logger.Verbosef("Planned %d files, %d already converted", len(plan.Items), plan.SkipCount())
	return plan, nil
}

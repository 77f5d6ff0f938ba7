package pipeline

import (
	"math"

	"lascopc/internal/domain"
	appErrors "lascopc/internal/errors"
)

var axes = [3]string{"x", "y", "z"}

// Build assembles the pipeline for one file. It performs no I/O.
func Build(inputPath, outputPath string, opts domain.Options) (Spec, error) {
	if inputPath == "" || outputPath == "" {
		return Spec{}, appErrors.Configf("pipeline", "input and output paths are required")
	}

	stages := []Stage{readerStage(inputPath)}

	if opts.InSRS != "" || opts.OutSRS != "" {
		stages = append(stages, reprojectionStage(opts.InSRS, opts.OutSRS))
	}

	writer, err := writerStage(outputPath, opts.Scale, opts.Offset)
	if err != nil {
		return Spec{}, err
	}
	stages = append(stages, writer)

	return Spec{Stages: stages}, nil
}

func readerStage(inputPath string) Stage {
	return Stage{Params: map[string]any{"filename": inputPath}}
}

// reprojectionStage carries only the CRS values that were given; a missing
// in_srs makes PDAL read it from the source header.
func reprojectionStage(inSRS, outSRS string) Stage {
	params := map[string]any{}
	if inSRS != "" {
		params["in_srs"] = inSRS
	}
	if outSRS != "" {
		params["out_srs"] = outSRS
	}
	return Stage{Type: TypeReprojection, Params: params}
}

func writerStage(outputPath string, scale *domain.Scale, offset *domain.Offset) (Stage, error) {
	params := map[string]any{"filename": outputPath}

	if scale != nil {
		for i, v := range scale {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return Stage{}, appErrors.Configf("pipeline", "scale_%s must be a positive number, got %v", axes[i], v)
			}
			params["scale_"+axes[i]] = v
		}
	}

	if offset != nil {
		for i, v := range offset {
			if v.Auto {
				params["offset_"+axes[i]] = autoValue
				continue
			}
			if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
				return Stage{}, appErrors.Configf("pipeline", "offset_%s must be a finite number or auto", axes[i])
			}
			params["offset_"+axes[i]] = v.Value
		}
	}

	return Stage{Type: TypeCopcWriter, Params: params}, nil
}

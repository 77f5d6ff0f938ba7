package pipeline

import "encoding/json"

const (
	TypeReprojection = "filters.reprojection"
	TypeCopcWriter   = "writers.copc"

	autoValue = "auto"
)

// Stage is one PDAL stage. An empty Type lets PDAL infer the driver from the
// filename, which is how the reader stage is emitted.
type Stage struct {
	Type   string
	Params map[string]any
}

func (s Stage) Filename() string {
	name, _ := s.Params["filename"].(string)
	return name
}

func (s Stage) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Params)+1)
	for k, v := range s.Params {
		out[k] = v
	}
	if s.Type != "" {
		out["type"] = s.Type
	}
	return json.Marshal(out)
}

// Spec is the ordered stage list for a single file.
type Spec struct {
	Stages []Stage
}

func (s Spec) MarshalJSON() ([]byte, error) {
	stages := s.Stages
	if stages == nil {
		stages = []Stage{}
	}
	return json.Marshal(struct {
		Pipeline []Stage `json:"pipeline"`
	}{Pipeline: stages})
}

// Indented renders the pipeline the way it is written to disk for pdal.
func (s Spec) Indented() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (s Spec) Reader() Stage {
	if len(s.Stages) == 0 {
		return Stage{}
	}
	return s.Stages[0]
}

func (s Spec) Writer() Stage {
	if len(s.Stages) == 0 {
		return Stage{}
	}
	return s.Stages[len(s.Stages)-1]
}

// Reprojection returns the reprojection stage, if the spec has one.
func (s Spec) Reprojection() (Stage, bool) {
	for _, stage := range s.Stages {
		if stage.Type == TypeReprojection {
			return stage, true
		}
	}
	return Stage{}, false
}

package domain

type PlanItem struct {
	InputPath  string
	OutputPath string
	Skip       bool
}

// BatchPlan lists every discovered input in name order. Skipped items stay in
// the plan so the report can account for them.
type BatchPlan struct {
	Dir   string
	Items []PlanItem
}

func (p BatchPlan) Pending() []PlanItem {
	var pending []PlanItem
	for _, item := range p.Items {
		if !item.Skip {
			pending = append(pending, item)
		}
	}
	return pending
}

func (p BatchPlan) SkipCount() int {
	return len(p.Items) - len(p.Pending())
}

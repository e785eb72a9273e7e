package results

import "sort"

// RepressionSummary reports, per condition, how much free target remains at
// the end of the trajectory relative to its initial value. This is the
// quantity the downstream study compares across cell types.
type RepressionSummary struct {
	Condition     Condition `json:"condition"`
	InitialTarget float64   `json:"initial_target"`
	FinalTarget   float64   `json:"final_target"`
	FinalRatio    float64   `json:"final_ratio"` // final_target / initial_target
	FinalTime     float64   `json:"final_time"`
}

// Summarize computes per-condition repression summaries, ordered by
// condition key so the output is stable.
func Summarize(res *SweepResult) []RepressionSummary {
	byCond := make(map[string]*RepressionSummary)

	for i := range res.Rows {
		r := &res.Rows[i]
		if r.Species != "target" {
			continue
		}
		key := r.Key()
		s, ok := byCond[key]
		if !ok {
			s = &RepressionSummary{
				Condition:     r.Condition,
				InitialTarget: r.InitialTarget,
			}
			byCond[key] = s
		}
		if r.Time >= s.FinalTime {
			s.FinalTime = r.Time
			s.FinalTarget = r.Concentration
		}
	}

	keys := make([]string, 0, len(byCond))
	for k := range byCond {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]RepressionSummary, 0, len(keys))
	for _, k := range keys {
		s := byCond[k]
		if s.InitialTarget > 0 {
			s.FinalRatio = s.FinalTarget / s.InitialTarget
		}
		out = append(out, *s)
	}
	return out
}

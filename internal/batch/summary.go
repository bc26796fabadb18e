package batch

import (
	"fmt"

	"github.com/danielpatrickdp/trajeval/internal/eval"
)

// LowPassRate is the pass rate, in percent, below which a batch is flagged.
const LowPassRate = 80.0

// Summarize aggregates outcomes and derives batch recommendations.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Total:  len(outcomes),
		Labels: make(map[eval.Label]int, len(eval.Labels)),
	}
	var scoreTotal float64
	var scored int
	var fastest, slowest *Outcome

	for i := range outcomes {
		o := &outcomes[i]
		if s.RunID == "" {
			s.RunID = o.RunID
		}
		s.TotalDuration += o.Duration

		switch {
		case o.Err != nil || o.Comparison == nil:
			s.Errored++
			continue
		case o.Passed():
			s.Passed++
		default:
			s.Failed++
		}
		if o.Comparison.Gate.Vetoed {
			s.Vetoed++
		}
		if o.Criteria != nil && !o.Criteria.Passed {
			s.CriteriaUnmet++
		}
		s.Labels[o.Comparison.Verdict.Label]++
		scoreTotal += o.Comparison.Verdict.FinalScore
		scored++

		if fastest == nil || o.Duration < fastest.Duration {
			fastest = o
		}
		if slowest == nil || o.Duration > slowest.Duration {
			slowest = o
		}
	}

	if scored > 0 {
		s.MeanScore = scoreTotal / float64(scored)
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	if fastest != nil {
		s.Fastest = fastest.Job.Scenario
		s.Slowest = slowest.Job.Scenario
	}
	s.Recommendations = recommendations(s)
	return s
}

func recommendations(s Summary) []string {
	recs := []string{}
	if s.Total == 0 {
		return recs
	}
	if s.PassRate < LowPassRate {
		recs = append(recs, fmt.Sprintf("Low pass rate (%.1f%%). Review failed scenarios and MCP server configuration.", s.PassRate))
	}
	if s.Failed > 0 {
		recs = append(recs, fmt.Sprintf("%d scenario(s) failed the gate. Inspect per-invocation details before updating baselines.", s.Failed))
	}
	if s.Errored > 0 {
		recs = append(recs, fmt.Sprintf("%d scenario(s) could not be evaluated. Check recording paths and active baselines.", s.Errored))
	}
	if s.CriteriaUnmet > 0 {
		recs = append(recs, fmt.Sprintf("%d scenario(s) missed success criteria.", s.CriteriaUnmet))
	}
	return recs
}

package replay

import (
	"time"

	"github.com/danielpatrickdp/trajeval/internal/align"
	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/gate"
	"github.com/danielpatrickdp/trajeval/internal/signals"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
)

// #region types

// Comparison captures the outcome of running one baseline/candidate pair
// through the full pipeline.
type Comparison struct {
	Scenario string `json:"scenario"`

	// Engine stages
	Trajectory align.TrajectoryResult `json:"trajectory"`
	Status     eval.ExecutionStatus   `json:"execution_status"`
	Verdict    eval.Verdict           `json:"verdict"`
	Gate       gate.GateDecision      `json:"gate"`

	// Execution analysis of each side
	BaselineAnalysis  signals.Analysis `json:"baseline_analysis"`
	CandidateAnalysis signals.Analysis `json:"candidate_analysis"`

	// Informational
	ToolDiff           align.ToolDiff `json:"tool_differences"`
	SequenceSimilarity float64        `json:"sequence_similarity"`
	ToolCountDiff      int            `json:"tool_count_diff"`
	StatusMatch        bool           `json:"status_match"`
	ExecutionTimeDiff  float64        `json:"execution_time_diff"` // seconds, candidate minus baseline
}

// Passed reports whether the gate passed.
func (c Comparison) Passed() bool { return c.Gate.Passed() }

// Summary provides aggregate stats over many comparisons.
type Summary struct {
	Total     int                `json:"total"`
	Passed    int                `json:"passed"`
	Failed    int                `json:"failed"`
	Vetoed    int                `json:"vetoed"`
	MeanScore float64            `json:"mean_score"`
	Labels    map[eval.Label]int `json:"labels"`
}

// #endregion types

// #region compare

// Compare runs filter → align → status → classify → gate for one pair.
// critical names tools whose failure blocks the run.
func Compare(baseline, candidate *Recording, critical []string, cfg config.Config) Comparison {
	keep := cfg.Filter()
	baseTraj := baseline.Trajectory()
	candTraj := candidate.Trajectory()

	// 1. Align and score
	result := align.ScoreTrajectory(baseTraj, candTraj, keep, cfg.Similarity)

	// 2. Execution signals
	producer := signals.NewProducer(cfg.Signals)
	baseAnalysis := producer.Analyze(baseline.SignalCalls(), critical)
	status, candAnalysis := producer.Status(baseline.SignalCalls(), candidate.SignalCalls(), keep, critical)

	// 3. Classify
	verdict := eval.Classify(result, status, cfg.Eval)

	// 4. Gate
	decision := gate.NewGate(cfg.Gate).Evaluate(verdict, status)

	scenario := candidate.Scenario
	if scenario == "" {
		scenario = baseline.Scenario
	}

	return Comparison{
		Scenario:           scenario,
		Trajectory:         result,
		Status:             status,
		Verdict:            verdict,
		Gate:               decision,
		BaselineAnalysis:   baseAnalysis,
		CandidateAnalysis:  candAnalysis,
		ToolDiff:           align.DiffTools(baseTraj, candTraj, keep),
		SequenceSimilarity: align.SequenceSimilarity(baseTraj, candTraj, keep),
		ToolCountDiff:      len(candTraj) - len(baseTraj),
		StatusMatch:        baseAnalysis.Status == candAnalysis.Status,
		ExecutionTimeDiff:  timeDiff(baseline.ExecutionTime, candidate.ExecutionTime),
	}
}

// CompareTrajectories runs the engine stages without recordings, for callers
// that already hold parsed trajectories and an execution status.
func CompareTrajectories(baseline, candidate toolcall.Trajectory, status eval.ExecutionStatus, cfg config.Config) Comparison {
	keep := cfg.Filter()
	result := align.ScoreTrajectory(baseline, candidate, keep, cfg.Similarity)
	verdict := eval.Classify(result, status, cfg.Eval)
	return Comparison{
		Trajectory:         result,
		Status:             status,
		Verdict:            verdict,
		Gate:               gate.NewGate(cfg.Gate).Evaluate(verdict, status),
		ToolDiff:           align.DiffTools(baseline, candidate, keep),
		SequenceSimilarity: align.SequenceSimilarity(baseline, candidate, keep),
		ToolCountDiff:      len(candidate) - len(baseline),
		StatusMatch:        true,
	}
}

// Summarize computes aggregate stats from comparisons.
func Summarize(comparisons []Comparison) Summary {
	s := Summary{
		Total:  len(comparisons),
		Labels: make(map[eval.Label]int, len(eval.Labels)),
	}
	var total float64
	for _, c := range comparisons {
		total += c.Verdict.FinalScore
		s.Labels[c.Verdict.Label]++
		if c.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		if c.Gate.Vetoed {
			s.Vetoed++
		}
	}
	if s.Total > 0 {
		s.MeanScore = total / float64(s.Total)
	}
	return s
}

// #endregion compare

// #region helpers

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeDiff returns candidate minus baseline in seconds, 0 when either is unparseable.
func timeDiff(baseline, candidate string) float64 {
	b, okB := parseTime(baseline)
	c, okC := parseTime(candidate)
	if !okB || !okC {
		return 0
	}
	return c.Sub(b).Seconds()
}

// #endregion helpers

package batch

import (
	"time"

	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
)

// RecordingFile is the per-scenario recording name inside a run directory.
const RecordingFile = "detailed_log.json"

// #region job
// Job pairs a candidate recording with its baseline. An empty BaselinePath
// resolves the scenario's active baseline from the store.
type Job struct {
	Scenario      string
	Spec          *scenario.Scenario // optional; supplies critical tools and success criteria
	BaselinePath  string
	CandidatePath string
}
// #endregion job

// #region outcome
// Outcome is the result of evaluating one job.
type Outcome struct {
	Job             Job
	RunID           string
	BaselineVersion string // store version used, empty for file baselines
	Comparison      *replay.Comparison
	Criteria        *scenario.CriteriaResult
	Err             error
	Duration        time.Duration
}

// Passed reports whether the job evaluated and its gate passed.
func (o Outcome) Passed() bool {
	return o.Err == nil && o.Comparison != nil && o.Comparison.Passed()
}
// #endregion outcome

// #region summary
// Summary aggregates a batch.
type Summary struct {
	RunID           string             `json:"run_id"`
	Total           int                `json:"total"`
	Passed          int                `json:"passed"`
	Failed          int                `json:"failed"`
	Errored         int                `json:"errored"`
	Vetoed          int                `json:"vetoed"`
	CriteriaUnmet   int                `json:"criteria_unmet"`
	PassRate        float64            `json:"pass_rate"` // percent of Total
	MeanScore       float64            `json:"mean_score"`
	Labels          map[eval.Label]int `json:"labels"`
	Fastest         string             `json:"fastest,omitempty"`
	Slowest         string             `json:"slowest,omitempty"`
	TotalDuration   time.Duration      `json:"total_duration"`
	Recommendations []string           `json:"recommendations"`
}
// #endregion summary

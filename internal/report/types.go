package report

import (
	"time"

	"github.com/danielpatrickdp/trajeval/internal/align"
	"github.com/danielpatrickdp/trajeval/internal/batch"
	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
	"github.com/danielpatrickdp/trajeval/internal/signals"
)

// Report types
const (
	TypeComparison = "trajectory_comparison"
	TypeBatch      = "batch_execution"
)

// #region comparison-report
// ComparisonReport is the JSON document written for one comparison.
type ComparisonReport struct {
	ReportType           string                   `json:"report_type"`
	GeneratedAt          time.Time                `json:"generated_at"`
	Scenario             ScenarioInfo             `json:"scenario"`
	EvaluationMetrics    EvaluationMetrics        `json:"evaluation_metrics"`
	CurrentExecution     ExecutionInfo            `json:"current_execution"`
	BaselineExecution    ExecutionInfo            `json:"baseline_execution"`
	ExecutionStatus      eval.ExecutionStatus     `json:"execution_status"`
	ToolDifferences      align.ToolDiff           `json:"tool_differences"`
	PerInvocationResults []InvocationResult       `json:"per_invocation_results"`
	Criteria             *scenario.CriteriaResult `json:"success_criteria,omitempty"`
	Recommendations      []string                 `json:"recommendations"`
}

// ScenarioInfo describes what was being evaluated.
type ScenarioInfo struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	UserIntent         string   `json:"user_intent,omitempty"`
	ExpectedTrajectory []string `json:"expected_trajectory,omitempty"`
}

// EvaluationMetrics are the headline scores.
type EvaluationMetrics struct {
	OverallScore             float64    `json:"overall_score"`
	TrajectoryScore          float64    `json:"tool_trajectory_score"`
	Label                    eval.Label `json:"label"`
	SequenceSimilarity       float64    `json:"sequence_similarity"`
	SuccessStatusMatch       bool       `json:"success_status_match"`
	ExecutionTimeDiffSeconds float64    `json:"execution_time_diff_seconds"`
	ToolCountDifference      int        `json:"tool_count_difference"`
	PassThreshold            float64    `json:"pass_threshold"`
	Result                   string     `json:"result"` // "PASS" | "FAIL"
	Vetoed                   bool       `json:"vetoed"`
	Reason                   string     `json:"reason"`
}

// ExecutionInfo summarizes one side of the comparison.
type ExecutionInfo struct {
	Status         signals.RunStatus `json:"status"`
	ToolCallsCount int               `json:"tool_calls_count"`
	FailedCalls    int               `json:"failed_calls"`
	EarlyStopped   bool              `json:"early_stopped"`
}

// InvocationResult is one aligned position.
type InvocationResult struct {
	Invocation   int     `json:"invocation"` // 1-based
	Score        float64 `json:"score"`
	Details      string  `json:"details"`
	ExpectedTool string  `json:"expected_tool,omitempty"`
	ActualTool   string  `json:"actual_tool,omitempty"`
}
// #endregion comparison-report

// #region batch-report
// BatchReport is the JSON document written for a batch run.
type BatchReport struct {
	ReportType      string          `json:"report_type"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Summary         batch.Summary   `json:"summary"`
	ScenarioResults []ScenarioEntry `json:"scenario_results"`
	Recommendations []string        `json:"recommendations"`
}

// ScenarioEntry is one batch row.
type ScenarioEntry struct {
	Scenario        string     `json:"scenario"`
	Result          string     `json:"result"` // "PASS" | "FAIL" | "ERROR"
	FinalScore      float64    `json:"final_score"`
	Label           eval.Label `json:"label,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	BaselineVersion string     `json:"baseline_version,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	Error           string     `json:"error,omitempty"`
}
// #endregion batch-report

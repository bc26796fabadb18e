package logging

import (
	"io"
	"log/slog"
	"time"
)

// #region evaluation-entry
// EvaluationEntry is a single row in the evaluation_log table.
type EvaluationEntry struct {
	ID              int64
	RunID           string
	Scenario        string
	BaselineVersion string
	RawScore        float64
	FinalScore      float64
	Label           string
	Action          string // "pass" | "fail"
	Reason          string
	VerdictJSON     string
	CreatedAt       time.Time
}
// #endregion evaluation-entry

// #region verdict-record
// VerdictRecord captures the complete inputs and outputs of one comparison.
// Serialized as JSON into evaluation_log.verdict_json so a run can be
// inspected without the original recordings.
type VerdictRecord struct {
	Scenario string `json:"scenario"`

	// Scores
	RawScore   float64 `json:"raw_score"`
	FinalScore float64 `json:"final_score"`
	Label      string  `json:"label"`

	// Execution signals as evaluated
	Signals VerdictRecordSignals `json:"signals"`

	// Thresholds active at decision time
	Thresholds VerdictRecordThresholds `json:"thresholds"`

	// Per-invocation detail lines, in alignment order
	Invocations []string `json:"invocations"`

	// Gate output
	GateAction string   `json:"gate_action"`
	GateVetoed bool     `json:"gate_vetoed"`
	GateReason string   `json:"gate_reason"`
	VetoTypes  []string `json:"veto_types,omitempty"`
}

// VerdictRecordSignals captures the execution signals that fed the classifier.
type VerdictRecordSignals struct {
	HadError         bool     `json:"had_error"`
	MissingTools     []string `json:"missing_tools,omitempty"`
	CriticalOpFailed bool     `json:"critical_op_failed"`
	CandidateStatus  string   `json:"candidate_status,omitempty"`
}

// VerdictRecordThresholds captures the classifier and gate config.
type VerdictRecordThresholds struct {
	ErrorPenalty       float64 `json:"error_penalty"`
	MissingToolCeiling float64 `json:"missing_tool_ceiling"`
	Broken             float64 `json:"broken"`
	Degraded           float64 `json:"degraded"`
	Acceptable         float64 `json:"acceptable"`
	PassThreshold      float64 `json:"pass_threshold"`
}
// #endregion verdict-record

// #region logger-config
// LoggerConfig selects the handler used by NewLogger.
type LoggerConfig struct {
	Level  slog.Level
	JSON   bool
	Writer io.Writer // defaults to os.Stderr
}
// #endregion logger-config

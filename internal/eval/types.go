package eval

// #region eval-config
// Thresholds map a final score onto a Label. Scores below Broken are Broken,
// below Degraded are Degraded, below Acceptable are Acceptable, else Good.
type Thresholds struct {
	Broken     float64 `json:"broken" yaml:"broken"`
	Degraded   float64 `json:"degraded" yaml:"degraded"`
	Acceptable float64 `json:"acceptable" yaml:"acceptable"`
}

// EvalConfig holds the penalties applied to a raw trajectory score.
type EvalConfig struct {
	ErrorPenalty       float64    // subtracted when the candidate run hit an error
	MissingToolCeiling float64    // cap when baseline tools were never called
	Thresholds         Thresholds // label boundaries
}

// DefaultEvalConfig returns the documented defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		ErrorPenalty:       0.2,
		MissingToolCeiling: 0.3,
		Thresholds: Thresholds{
			Broken:     0.3,
			Degraded:   0.6,
			Acceptable: 0.8,
		},
	}
}

// #endregion eval-config

// #region execution-status
// ExecutionStatus carries the execution signals of the candidate run.
// MissingTools has set semantics; order is not significant.
type ExecutionStatus struct {
	HadError         bool     `json:"had_error"`
	MissingTools     []string `json:"missing_tools,omitempty"`
	CriticalOpFailed bool     `json:"critical_op_failed"`
}

// #endregion execution-status

// #region label
// Label is the triage bucket of a verdict.
type Label string

const (
	LabelBroken     Label = "broken"
	LabelDegraded   Label = "degraded"
	LabelAcceptable Label = "acceptable"
	LabelGood       Label = "good"
)

// Labels lists every label from worst to best.
var Labels = []Label{LabelBroken, LabelDegraded, LabelAcceptable, LabelGood}

// #endregion label

// #region eval-metric
// EvalMetric captures a single scoring step.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region verdict
// Verdict is the failure-aware classification of one comparison.
type Verdict struct {
	RawScore   float64      `json:"raw_score"`
	FinalScore float64      `json:"final_score"`
	Label      Label        `json:"label"`
	Metrics    []EvalMetric `json:"metrics"`
	Reason     string       `json:"reason"`
}

// #endregion verdict

package signals

import "github.com/danielpatrickdp/trajeval/internal/value"

// #region config

// ProducerConfig holds tuning knobs for execution-status analysis.
type ProducerConfig struct {
	CriticalOperations []string // substrings of args["operation"] whose failure blocks the run
	ErrorKeywords      []string // response substrings treated as errors when InspectResponses is set
	InspectResponses   bool     // scan response text for ErrorKeywords
}

// DefaultProducerConfig returns sensible defaults.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		CriticalOperations: []string{"add", "create", "initialize", "connect", "setup"},
		ErrorKeywords:      []string{"error", "failed", "not found", "invalid", "unable to"},
		InspectResponses:   false,
	}
}

// #endregion config

// #region input

// Call is the execution record of one tool call, independent of file format.
type Call struct {
	Tool     string
	Args     map[string]value.Value
	Error    string // non-empty when the harness recorded an error
	IsError  bool   // tool response flagged as error
	Response string // response text, scanned only with InspectResponses
}

// #endregion input

// #region run-status

// RunStatus summarizes a whole execution.
type RunStatus string

const (
	StatusSuccess RunStatus = "SUCCESS"
	StatusPartial RunStatus = "PARTIAL"
	StatusFailed  RunStatus = "FAILED"
	StatusBlocked RunStatus = "BLOCKED"
	StatusEmpty   RunStatus = "EMPTY"
)

// #endregion run-status

// #region analysis

// CascadeStep is one failed call in execution order.
type CascadeStep struct {
	Step                   int    `json:"step"`
	Tool                   string `json:"tool"`
	Operation              string `json:"operation,omitempty"`
	Error                  string `json:"error"`
	IsCritical             bool   `json:"is_critical"`
	CausedByEarlierFailure bool   `json:"caused_by_earlier_failure"`
}

// CriticalOp records one call whose operation is critical.
type CriticalOp struct {
	Tool      string `json:"tool"`
	Operation string `json:"operation"`
	Success   bool   `json:"success"`
}

// Analysis is the result of scanning one execution.
type Analysis struct {
	Status       RunStatus     `json:"status"`
	Failures     []string      `json:"failures"`      // "tool" or "tool:operation", sorted, unique
	BlockingStep int           `json:"blocking_step"` // -1 when nothing blocked
	EarlyStopped bool          `json:"early_stopped"`
	Cascade      []CascadeStep `json:"cascade,omitempty"`
	CriticalOps  []CriticalOp  `json:"critical_ops,omitempty"`
	TotalCalls   int           `json:"total_calls"`
	FailedCalls  int           `json:"failed_calls"`
}

// #endregion analysis

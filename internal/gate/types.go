package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoCriticalOp  VetoType = "critical_op"
	VetoMissingTool VetoType = "missing_tool"
	VetoBroken      VetoType = "broken"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType `json:"type"`
	Reason string   `json:"reason"`
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for pass/fail decisions.
type GateConfig struct {
	PassThreshold    float64 // final score needed to pass
	VetoMissingTools bool    // fail outright when baseline tools were never called
}

// DefaultGateConfig returns the default pass gate.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		PassThreshold:    0.8,
		VetoMissingTools: true,
	}
}

// #endregion gate-config

// #region gate-decision
// Actions
const (
	ActionPass = "pass"
	ActionFail = "fail"
)

// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string       `json:"action"` // "pass" | "fail"
	Reason      string       `json:"reason"`
	Vetoed      bool         `json:"vetoed"`
	VetoSignals []VetoSignal `json:"veto_signals,omitempty"` // non-empty if vetoed
	Margin      float64      `json:"margin"`                 // final score minus pass threshold
}

// Passed reports whether the action is pass.
func (d GateDecision) Passed() bool { return d.Action == ActionPass }

// #endregion gate-decision

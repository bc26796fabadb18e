package gate

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/trajeval/internal/eval"
)

// #region gate
// Gate decides whether a classified comparison passes regression testing.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then compares the final score with the
// pass threshold.
func (g *Gate) Evaluate(v eval.Verdict, st eval.ExecutionStatus) GateDecision {
	var vetoes []VetoSignal
	margin := v.FinalScore - g.config.PassThreshold

	// --- Hard veto pass ---

	// 1. Critical operation failed
	if st.CriticalOpFailed {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoCriticalOp,
			Reason: "critical operation failed",
		})
	}

	// 2. Baseline tools never called
	if g.config.VetoMissingTools && len(st.MissingTools) > 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoMissingTool,
			Reason: fmt.Sprintf("missing tools: %s", strings.Join(st.MissingTools, ", ")),
		})
	}

	// 3. Broken trajectory
	if v.Label == eval.LabelBroken {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoBroken,
			Reason: fmt.Sprintf("trajectory broken: score %.4f", v.FinalScore),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      ActionFail,
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			Margin:      margin,
		}
	}

	// --- Threshold ---
	if v.FinalScore < g.config.PassThreshold {
		return GateDecision{
			Action: ActionFail,
			Reason: fmt.Sprintf("score %.4f below threshold %.4f", v.FinalScore, g.config.PassThreshold),
			Margin: margin,
		}
	}

	return GateDecision{
		Action: ActionPass,
		Reason: fmt.Sprintf("passed gate: score=%.4f", v.FinalScore),
		Margin: margin,
	}
}

// #endregion gate

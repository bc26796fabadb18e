package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/trajeval/internal/align"
)

// #region classifier
// Classifier folds execution signals into a raw trajectory score.
type Classifier struct {
	config EvalConfig
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(config EvalConfig) *Classifier {
	return &Classifier{config: config}
}

// Classify is shorthand for NewClassifier(cfg).Classify(r, st).
func Classify(r align.TrajectoryResult, st ExecutionStatus, cfg EvalConfig) Verdict {
	return NewClassifier(cfg).Classify(r, st)
}

// Classify applies penalties in a fixed order: error penalty, missing-tool
// ceiling, then critical-operation failure. The result is clamped to [0, 1]
// before labeling.
func (c *Classifier) Classify(r align.TrajectoryResult, st ExecutionStatus) Verdict {
	raw := clamp(r.RawScore)
	score := raw
	var metrics []EvalMetric
	var reasons []string

	metrics = append(metrics, EvalMetric{Name: "raw_score", Value: raw, Pass: true})

	// 1. Runtime error: fixed deduction
	if st.HadError {
		score = math.Max(0, score-c.config.ErrorPenalty)
		reasons = append(reasons, fmt.Sprintf("error penalty -%.2f", c.config.ErrorPenalty))
	}
	metrics = append(metrics, EvalMetric{Name: "error_penalty", Value: c.config.ErrorPenalty, Pass: !st.HadError})

	// 2. Missing tools: structurally broken trajectory
	missing := len(st.MissingTools) > 0
	if missing && score > c.config.MissingToolCeiling {
		score = c.config.MissingToolCeiling
	}
	if missing {
		reasons = append(reasons, fmt.Sprintf("missing tools [%s] capped at %.2f",
			strings.Join(st.MissingTools, ", "), c.config.MissingToolCeiling))
	}
	metrics = append(metrics, EvalMetric{Name: "missing_tools", Value: float64(len(st.MissingTools)), Pass: !missing})

	// 3. Critical operation failure overrides everything
	if st.CriticalOpFailed {
		score = 0
		reasons = append(reasons, "critical operation failed")
	}
	metrics = append(metrics, EvalMetric{Name: "critical_op", Value: boolScore(!st.CriticalOpFailed), Pass: !st.CriticalOpFailed})

	score = clamp(score)
	label := c.Label(score)
	metrics = append(metrics, EvalMetric{Name: "final_score", Value: score, Pass: label == LabelGood})

	reason := fmt.Sprintf("score %.4f: %s", score, label)
	if len(reasons) > 0 {
		reason = fmt.Sprintf("score %.4f: %s (%s)", score, label, strings.Join(reasons, "; "))
	}

	return Verdict{
		RawScore:   raw,
		FinalScore: score,
		Label:      label,
		Metrics:    metrics,
		Reason:     reason,
	}
}

// Label maps a score onto the configured thresholds.
func (c *Classifier) Label(score float64) Label {
	t := c.config.Thresholds
	switch {
	case score < t.Broken:
		return LabelBroken
	case score < t.Degraded:
		return LabelDegraded
	case score < t.Acceptable:
		return LabelAcceptable
	default:
		return LabelGood
	}
}

// #endregion classifier

// #region helpers
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers

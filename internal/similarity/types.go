package similarity

import "github.com/danielpatrickdp/trajeval/internal/toolcall"

// #region config
// Config holds weights and thresholds for value, argument and invocation
// comparison. Construct once per run and pass by value.
type Config struct {
	MaxNumericDiff      float64 // |a-b| at which two numbers stop being similar
	KeyWeight           float64 // weight of key-set overlap in argument similarity
	ValueWeight         float64 // weight of per-key value similarity
	ExactMatchThreshold float64 // similarity at or above which a pair counts as Exact
	TypeDriftScale      float64 // multiplier for number vs non-numeric string comparisons
	TypeDriftFloor      float64 // lower bound for number vs non-numeric string comparisons
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxNumericDiff:      1000.0,
		KeyWeight:           0.3,
		ValueWeight:         0.7,
		ExactMatchThreshold: 0.98,
		TypeDriftScale:      0.9,
		TypeDriftFloor:      0.05,
	}
}

// #endregion config

// #region match-kind
// MatchKind classifies one aligned position.
type MatchKind string

const (
	MatchExact        MatchKind = "exact"
	MatchPartial      MatchKind = "partial"
	MatchNameMismatch MatchKind = "name_mismatch"
	MatchMissing      MatchKind = "missing"
)

// #endregion match-kind

// #region invocation-score
// InvocationScore is the comparison outcome for one aligned position.
// Baseline or Candidate is nil when that side has no invocation there.
type InvocationScore struct {
	Position   int                  `json:"position"`
	Baseline   *toolcall.Invocation `json:"baseline,omitempty"`
	Candidate  *toolcall.Invocation `json:"candidate,omitempty"`
	Similarity float64              `json:"similarity"`
	Kind       MatchKind            `json:"match_kind"`
}

// #endregion invocation-score

package similarity

import (
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region compare-args
// CompareArgs blends key-set overlap with per-key value similarity.
// Keys present on only one side compare against Null. Two empty argument
// maps are identical.
func CompareArgs(a, b map[string]value.Value, cfg Config) float64 {
	if value.EqualMaps(a, b) {
		return 1.0
	}

	union := make(map[string]struct{}, len(a)+len(b))
	keysA := make(map[string]struct{}, len(a))
	keysB := make(map[string]struct{}, len(b))
	for k := range a {
		union[k] = struct{}{}
		keysA[k] = struct{}{}
	}
	for k := range b {
		union[k] = struct{}{}
		keysB[k] = struct{}{}
	}

	keySim := jaccard(keysA, keysB)

	var total float64
	for k := range union {
		// Missing map entries are the zero Value, which is Null.
		total += CompareValues(a[k], b[k], cfg)
	}
	valueSim := total / float64(len(union))

	return clamp(keySim*cfg.KeyWeight + valueSim*cfg.ValueWeight)
}

// #endregion compare-args

// #region compare-invocations
// CompareInvocations scores one baseline/candidate pair. Tool identity is a
// hard gate: differing names score 0 whatever the arguments.
func CompareInvocations(a, b toolcall.Invocation, cfg Config) InvocationScore {
	score := InvocationScore{Baseline: &a, Candidate: &b}
	if a.Name != b.Name {
		score.Kind = MatchNameMismatch
		return score
	}

	score.Similarity = CompareArgs(a.Args, b.Args, cfg)
	if score.Similarity >= cfg.ExactMatchThreshold {
		score.Kind = MatchExact
	} else {
		score.Kind = MatchPartial
	}
	return score
}

// #endregion compare-invocations

// #region describe
// Describe returns the human label used in trajectory listings.
func (s InvocationScore) Describe() string {
	switch s.Kind {
	case MatchExact:
		return "EXACT MATCH"
	case MatchNameMismatch:
		return "MISMATCH"
	case MatchMissing:
		if s.Baseline == nil {
			return "EXTRA CALL"
		}
		return "MISSING CALL"
	}
	if s.Similarity >= 0.8 {
		return "SIMILAR"
	}
	return "PARTIAL MATCH"
}

// #endregion describe

package align

import (
	"sort"

	"github.com/danielpatrickdp/trajeval/internal/similarity"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
)

// #region types
// TrajectoryResult is the positional comparison of two filtered trajectories.
type TrajectoryResult struct {
	PerInvocation  []similarity.InvocationScore `json:"per_invocation"`
	RawScore       float64                      `json:"raw_score"`
	BaselineCount  int                          `json:"baseline_count"`
	CandidateCount int                          `json:"candidate_count"`
	Excluded       int                          `json:"excluded"` // invocations dropped by the filter, both sides
}

// ToolDiff lists in-scope tool names present on one side only, and on both.
type ToolDiff struct {
	Added   []string `json:"added"`   // candidate only
	Removed []string `json:"removed"` // baseline only
	Common  []string `json:"common"`
}

// #endregion types

// #region score
// ScoreTrajectory filters both trajectories with keep, aligns them by index and
// averages per-position similarity over the longer length. Positions present
// on only one side score 0 as Missing. Two empty filtered trajectories score 1.
func ScoreTrajectory(baseline, candidate toolcall.Trajectory, keep toolcall.Predicate, cfg similarity.Config) TrajectoryResult {
	base := toolcall.Filter(baseline, keep)
	cand := toolcall.Filter(candidate, keep)

	result := TrajectoryResult{
		BaselineCount:  len(base),
		CandidateCount: len(cand),
		Excluded:       len(baseline) - len(base) + len(candidate) - len(cand),
	}

	n := max(len(base), len(cand))
	if n == 0 {
		result.RawScore = 1.0
		return result
	}

	result.PerInvocation = make([]similarity.InvocationScore, n)
	var total float64
	for i := 0; i < n; i++ {
		var s similarity.InvocationScore
		switch {
		case i < len(base) && i < len(cand):
			s = similarity.CompareInvocations(base[i], cand[i], cfg)
		case i < len(base):
			b := base[i]
			s = similarity.InvocationScore{Baseline: &b, Kind: similarity.MatchMissing}
		default:
			c := cand[i]
			s = similarity.InvocationScore{Candidate: &c, Kind: similarity.MatchMissing}
		}
		s.Position = i
		result.PerInvocation[i] = s
		total += s.Similarity
	}

	result.RawScore = total / float64(n)
	return result
}

// Counts tallies positions by match kind.
func (r TrajectoryResult) Counts() map[similarity.MatchKind]int {
	counts := make(map[similarity.MatchKind]int, 4)
	for _, s := range r.PerInvocation {
		counts[s.Kind]++
	}
	return counts
}

// #endregion score

// #region sequence
// SequenceSimilarity compares tool-name order only: the longest common
// subsequence length divided by the longer trajectory length. Both empty
// scores 1.
func SequenceSimilarity(baseline, candidate toolcall.Trajectory, keep toolcall.Predicate) float64 {
	a := toolcall.Filter(baseline, keep).Names()
	b := toolcall.Filter(candidate, keep).Names()
	n := max(len(a), len(b))
	if n == 0 {
		return 1.0
	}
	return float64(lcsLength(a, b)) / float64(n)
}

func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// #endregion sequence

// #region diff
// DiffTools compares the sets of in-scope tool names used by each side.
// Every list is sorted.
func DiffTools(baseline, candidate toolcall.Trajectory, keep toolcall.Predicate) ToolDiff {
	inBase := nameSet(toolcall.Filter(baseline, keep))
	inCand := nameSet(toolcall.Filter(candidate, keep))

	diff := ToolDiff{Added: []string{}, Removed: []string{}, Common: []string{}}
	for name := range inBase {
		if _, ok := inCand[name]; ok {
			diff.Common = append(diff.Common, name)
		} else {
			diff.Removed = append(diff.Removed, name)
		}
	}
	for name := range inCand {
		if _, ok := inBase[name]; !ok {
			diff.Added = append(diff.Added, name)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Common)
	return diff
}

func nameSet(t toolcall.Trajectory) map[string]struct{} {
	set := make(map[string]struct{}, len(t))
	for _, inv := range t {
		set[inv.Name] = struct{}{}
	}
	return set
}

// #endregion diff

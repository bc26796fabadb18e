// Package report renders comparisons and batch runs as JSON documents and
// human-readable text.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/danielpatrickdp/trajeval/internal/batch"
	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
	"github.com/danielpatrickdp/trajeval/internal/similarity"
)

// Result strings
const (
	ResultPass  = "PASS"
	ResultFail  = "FAIL"
	ResultError = "ERROR"
)

// ExcellentScore marks a candidate good enough to promote as the new baseline.
const ExcellentScore = 0.9

// #region build
// NewComparisonReport builds the report for c. spec and criteria may be nil.
// passThreshold is recorded as configured on the gate.
func NewComparisonReport(c replay.Comparison, spec *scenario.Scenario, criteria *scenario.CriteriaResult, passThreshold float64) ComparisonReport {
	info := ScenarioInfo{Name: c.Scenario}
	if spec != nil {
		info.Description = spec.Description
		info.UserIntent = spec.UserIntent
		for _, inv := range spec.ExpectedTrajectory() {
			info.ExpectedTrajectory = append(info.ExpectedTrajectory, inv.String())
		}
	}

	result := ResultFail
	if c.Passed() {
		result = ResultPass
	}

	return ComparisonReport{
		ReportType:  TypeComparison,
		GeneratedAt: time.Now().UTC(),
		Scenario:    info,
		EvaluationMetrics: EvaluationMetrics{
			OverallScore:             c.Verdict.FinalScore,
			TrajectoryScore:          c.Verdict.RawScore,
			Label:                    c.Verdict.Label,
			SequenceSimilarity:       c.SequenceSimilarity,
			SuccessStatusMatch:       c.StatusMatch,
			ExecutionTimeDiffSeconds: c.ExecutionTimeDiff,
			ToolCountDifference:      c.ToolCountDiff,
			PassThreshold:            passThreshold,
			Result:                   result,
			Vetoed:                   c.Gate.Vetoed,
			Reason:                   c.Gate.Reason,
		},
		CurrentExecution: ExecutionInfo{
			Status:         c.CandidateAnalysis.Status,
			ToolCallsCount: c.CandidateAnalysis.TotalCalls,
			FailedCalls:    c.CandidateAnalysis.FailedCalls,
			EarlyStopped:   c.CandidateAnalysis.EarlyStopped,
		},
		BaselineExecution: ExecutionInfo{
			Status:         c.BaselineAnalysis.Status,
			ToolCallsCount: c.BaselineAnalysis.TotalCalls,
			FailedCalls:    c.BaselineAnalysis.FailedCalls,
			EarlyStopped:   c.BaselineAnalysis.EarlyStopped,
		},
		ExecutionStatus:      c.Status,
		ToolDifferences:      c.ToolDiff,
		PerInvocationResults: invocationResults(c.Trajectory.PerInvocation),
		Criteria:             criteria,
		Recommendations:      Recommendations(c, passThreshold),
	}
}

func invocationResults(scores []similarity.InvocationScore) []InvocationResult {
	out := make([]InvocationResult, len(scores))
	for i, s := range scores {
		r := InvocationResult{
			Invocation: s.Position + 1,
			Score:      s.Similarity,
			Details:    fmt.Sprintf("Invocation %d: %s", s.Position+1, Detail(s)),
		}
		if s.Baseline != nil {
			r.ExpectedTool = s.Baseline.Name
		}
		if s.Candidate != nil {
			r.ActualTool = s.Candidate.Name
		}
		out[i] = r
	}
	return out
}

// Detail is Describe with the similarity appended for inexact matches.
func Detail(s similarity.InvocationScore) string {
	d := s.Describe()
	if s.Kind == similarity.MatchPartial {
		d += fmt.Sprintf(" (similarity: %.3f)", s.Similarity)
	}
	return d
}

// Recommendations lists follow-ups for one comparison.
func Recommendations(c replay.Comparison, passThreshold float64) []string {
	recs := []string{}
	if c.Verdict.RawScore < passThreshold {
		recs = append(recs, "Tool trajectory mismatch detected. Review expected vs actual tool calls.")
	}
	if len(c.Status.MissingTools) > 0 {
		recs = append(recs, fmt.Sprintf("Candidate never called %d baseline tool(s): %v.", len(c.Status.MissingTools), c.Status.MissingTools))
	}
	if c.Status.CriticalOpFailed {
		recs = append(recs, "A critical operation failed. Check server setup before comparing trajectories.")
	}
	if abs(c.ToolCountDiff) > 2 {
		recs = append(recs, fmt.Sprintf("Significant difference in tool usage count (%+d). Consider updating baseline or investigating efficiency.", c.ToolCountDiff))
	}
	if !c.StatusMatch {
		recs = append(recs, "Success status mismatch between current and baseline execution.")
	}
	if c.Verdict.FinalScore >= ExcellentScore && c.Passed() {
		recs = append(recs, "Excellent trajectory match! Consider this execution as a new baseline.")
	}
	return recs
}

// NewBatchReport builds the report for a batch run.
func NewBatchReport(outcomes []batch.Outcome) BatchReport {
	summary := batch.Summarize(outcomes)
	entries := make([]ScenarioEntry, len(outcomes))
	for i, o := range outcomes {
		e := ScenarioEntry{
			Scenario:        o.Job.Scenario,
			BaselineVersion: o.BaselineVersion,
			DurationSeconds: math.Round(o.Duration.Seconds()*1000) / 1000,
		}
		switch {
		case o.Err != nil || o.Comparison == nil:
			e.Result = ResultError
			if o.Err != nil {
				e.Error = o.Err.Error()
			}
		default:
			e.Result = ResultFail
			if o.Passed() {
				e.Result = ResultPass
			}
			e.FinalScore = o.Comparison.Verdict.FinalScore
			e.Label = o.Comparison.Verdict.Label
			e.Reason = o.Comparison.Gate.Reason
		}
		entries[i] = e
	}
	return BatchReport{
		ReportType:      TypeBatch,
		GeneratedAt:     time.Now().UTC(),
		Summary:         summary,
		ScenarioResults: entries,
		Recommendations: summary.Recommendations,
	}
}
// #endregion build

// #region write
// WriteJSON writes any report as indented JSON, creating parent directories.
func WriteJSON(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
// #endregion write

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/signals"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region summary
// RenderSummary writes the markdown summary of a comparison report.
func RenderSummary(w io.Writer, r ComparisonReport) error {
	m := r.EvaluationMetrics
	var b strings.Builder

	fmt.Fprintf(&b, "# MCP Evaluation Report: %s\n\n", r.Scenario.Name)
	if r.Scenario.Description != "" || r.Scenario.UserIntent != "" {
		b.WriteString("## Scenario Details\n")
		fmt.Fprintf(&b, "- **Description**: %s\n", r.Scenario.Description)
		fmt.Fprintf(&b, "- **User Intent**: %s\n\n", r.Scenario.UserIntent)
	}

	b.WriteString("## Evaluation Results\n")
	fmt.Fprintf(&b, "- **Overall Score**: %.2f/1.00 (%s)\n", m.OverallScore, m.Label)
	fmt.Fprintf(&b, "- **Tool Trajectory Score**: %.2f/1.00\n", m.TrajectoryScore)
	fmt.Fprintf(&b, "- **Sequence Similarity**: %.2f\n", m.SequenceSimilarity)
	fmt.Fprintf(&b, "- **Result**: %s\n", m.Result)
	fmt.Fprintf(&b, "- **Reason**: %s\n", m.Reason)
	fmt.Fprintf(&b, "- **Success Status Match**: %s\n\n", yesNo(m.SuccessStatusMatch))

	b.WriteString("## Execution Comparison\n")
	fmt.Fprintf(&b, "- **Status**: %s (baseline %s)\n", r.CurrentExecution.Status, r.BaselineExecution.Status)
	fmt.Fprintf(&b, "- **Tool Calls**: %d (Δ%+d)\n", r.CurrentExecution.ToolCallsCount, m.ToolCountDifference)
	fmt.Fprintf(&b, "- **Execution Time Diff**: %+.2fs\n\n", m.ExecutionTimeDiffSeconds)

	b.WriteString("## Tool Usage Analysis\n")
	for _, inv := range r.PerInvocationResults {
		fmt.Fprintf(&b, "- **Invocation %d**: %s\n", inv.Invocation, strings.TrimPrefix(inv.Details, fmt.Sprintf("Invocation %d: ", inv.Invocation)))
	}

	if r.Criteria != nil {
		fmt.Fprintf(&b, "\n## Success Criteria\n- %s\n", r.Criteria.Summary())
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderBatchSummary writes the markdown summary of a batch report.
func RenderBatchSummary(w io.Writer, r BatchReport) error {
	s := r.Summary
	var b strings.Builder

	b.WriteString("# MCP Batch Evaluation Report\n\n## Overview\n")
	fmt.Fprintf(&b, "- **Total Scenarios**: %d\n", s.Total)
	fmt.Fprintf(&b, "- **Pass Rate**: %.1f%% (%d/%d)\n", s.PassRate, s.Passed, s.Total)
	fmt.Fprintf(&b, "- **Failed**: %d (vetoed %d)\n", s.Failed, s.Vetoed)
	fmt.Fprintf(&b, "- **Errored**: %d\n", s.Errored)
	fmt.Fprintf(&b, "- **Mean Score**: %.3f\n", s.MeanScore)
	fmt.Fprintf(&b, "- **Total Evaluation Time**: %.2fs\n\n", s.TotalDuration.Seconds())

	if s.Fastest != "" {
		b.WriteString("## Performance Metrics\n")
		fmt.Fprintf(&b, "- **Fastest Scenario**: %s\n", s.Fastest)
		fmt.Fprintf(&b, "- **Slowest Scenario**: %s\n\n", s.Slowest)
	}

	var failed []ScenarioEntry
	for _, e := range r.ScenarioResults {
		if e.Result != ResultPass {
			failed = append(failed, e)
		}
	}
	if len(failed) > 0 {
		b.WriteString("## Failed Scenarios\n")
		for _, e := range failed {
			reason := e.Reason
			if e.Error != "" {
				reason = e.Error
			}
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", e.Scenario, e.Result, reason)
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
// #endregion summary

// #region table
// RenderTable writes one row per batch entry and returns the number of
// entries that did not pass.
func RenderTable(w io.Writer, entries []ScenarioEntry) int {
	fmt.Fprintf(w, "%-24s| %-8s| %-8s| %-11s| %s\n", "Scenario", "Result", "Score", "Label", "Reason")
	fmt.Fprintf(w, "%-24s+%-9s+%-9s+%-12s+%s\n",
		"------------------------", "---------", "---------", "------------", "------")

	notPassed := 0
	for _, e := range entries {
		reason := e.Reason
		if e.Error != "" {
			reason = e.Error
		}
		if e.Result != ResultPass {
			notPassed++
		}
		fmt.Fprintf(w, "%-24s| %-8s| %-8.4f| %-11s| %s\n", e.Scenario, e.Result, e.FinalScore, e.Label, reason)
	}

	fmt.Fprintf(w, "\nSummary: %d total, %d pass, %d not passed\n", len(entries), len(entries)-notPassed, notPassed)
	return notPassed
}
// #endregion table

// #region trajectory
// RenderTrajectory writes the transcript view of a recording.
func RenderTrajectory(w io.Writer, rec *replay.Recording, analysis signals.Analysis) error {
	var b strings.Builder
	fmt.Fprintf(&b, "USER: %s\n", rec.UserIntent)

	for _, c := range rec.Calls {
		fmt.Fprintf(&b, "TOOL_CALL: %s(%s)\n", c.ToolName, value.CanonicalMap(c.ToolInput))
		switch {
		case c.Error != nil && *c.Error != "":
			fmt.Fprintf(&b, "TOOL_RESULT: ERROR - %s\n", *c.Error)
		case c.Response != nil && len(c.Response.Content) > 0:
			fmt.Fprintf(&b, "TOOL_RESULT: %s\n", c.Response.Content[0].Text)
		default:
			b.WriteString("TOOL_RESULT: Success (no response data)\n")
		}
	}

	switch analysis.Status {
	case signals.StatusSuccess:
		b.WriteString("\nEVALUATION: SUCCESS - All tools executed successfully\n")
	case signals.StatusBlocked:
		b.WriteString("\nEVALUATION: BLOCKED - Critical failure prevented completion\n")
	case signals.StatusFailed:
		b.WriteString("\nEVALUATION: FAILED - Multiple tool failures\n")
	case signals.StatusEmpty:
		b.WriteString("\nEVALUATION: EMPTY - No tool calls recorded\n")
	default:
		fmt.Fprintf(&b, "\nEVALUATION: PARTIAL - Status: %s\n", analysis.Status)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
// #endregion trajectory

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

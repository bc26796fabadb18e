package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/logging"
	"github.com/danielpatrickdp/trajeval/internal/metrics"
	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
	"github.com/danielpatrickdp/trajeval/internal/store"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

func call(tool string, args map[string]any, text string) replay.RecordedCall {
	c := replay.RecordedCall{ToolName: tool, ToolInput: value.FromMap(args)}
	if text != "" {
		c.Response = &replay.Response{Content: replay.ContentBlocks{{Type: "text", Text: text}}}
	}
	return c
}

func fullRun(name string) *replay.Recording {
	return &replay.Recording{Scenario: name, Calls: []replay.RecordedCall{
		call("mcp__proxy__retrieve_tools", map[string]any{"query": "weather"}, "weather:get_forecast"),
		call("mcp__proxy__call_tool", map[string]any{"name": "weather:get_forecast"}, "Sunny, 23C"),
	}}
}

func shortRun(name string) *replay.Recording {
	return &replay.Recording{Scenario: name, Calls: []replay.RecordedCall{
		call("mcp__proxy__retrieve_tools", map[string]any{"query": "weather"}, "weather:get_forecast"),
	}}
}

func save(t *testing.T, dir, name string, rec *replay.Recording) {
	t.Helper()
	require.NoError(t, replay.SaveRecording(filepath.Join(dir, name, RecordingFile), rec))
}

func TestDiscoverJobsFromCandidateDir(t *testing.T) {
	root := t.TempDir()
	base, cand := filepath.Join(root, "baseline"), filepath.Join(root, "current")
	save(t, cand, "zeta", fullRun("zeta"))
	save(t, cand, "alpha", fullRun("alpha"))
	require.NoError(t, os.MkdirAll(filepath.Join(cand, "empty"), 0o755))

	jobs, err := DiscoverJobs("", base, cand)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "alpha", jobs[0].Scenario)
	assert.Equal(t, filepath.Join(base, "alpha", RecordingFile), jobs[0].BaselinePath)
	assert.Equal(t, filepath.Join(cand, "zeta", RecordingFile), jobs[1].CandidatePath)
}

func TestDiscoverJobsFromScenarios(t *testing.T) {
	root := t.TempDir()
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "s.yaml"), []byte("name: search\ncritical_tools: [mcp__proxy__call_tool]\n"), 0o644))

	jobs, err := DiscoverJobs(scenarios, "", filepath.Join(root, "current"))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "search", jobs[0].Scenario)
	assert.Empty(t, jobs[0].BaselinePath)
	require.NotNil(t, jobs[0].Spec)
	assert.Equal(t, []string{"mcp__proxy__call_tool"}, jobs[0].Spec.CriticalTools)
}

func TestRunnerRun(t *testing.T) {
	root := t.TempDir()
	base, cand := filepath.Join(root, "baseline"), filepath.Join(root, "current")
	save(t, base, "same", fullRun("same"))
	save(t, cand, "same", fullRun("same"))
	save(t, base, "short", fullRun("short"))
	save(t, cand, "short", shortRun("short"))
	save(t, cand, "orphan", fullRun("orphan"))

	jobs, err := DiscoverJobs("", base, cand)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheusRecorder(reg)
	require.NoError(t, err)

	runner := NewRunner(config.Default(), nil, rec)
	outcomes, err := runner.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	// Order follows jobs: orphan, same, short
	assert.Error(t, outcomes[0].Err)
	assert.True(t, outcomes[1].Passed())
	assert.Equal(t, eval.LabelGood, outcomes[1].Comparison.Verdict.Label)
	assert.False(t, outcomes[2].Passed())
	assert.True(t, outcomes[2].Comparison.Gate.Vetoed)
	assert.Equal(t, []string{"mcp__proxy__call_tool"}, outcomes[2].Comparison.Status.MissingTools)

	for _, o := range outcomes {
		assert.Equal(t, runner.RunID(), o.RunID)
	}

	s := Summarize(outcomes)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Errored)
	assert.Equal(t, 1, s.Vetoed)
	assert.InDelta(t, 100.0/3, s.PassRate, 1e-9)
	assert.InDelta(t, (1.0+0.3)/2, s.MeanScore, 1e-9)
	assert.Len(t, s.Recommendations, 3)

	assert.Equal(t, 1.0, counterSum(t, reg, "trajeval_evaluation_errors_total"))
	assert.Equal(t, 2.0, counterSum(t, reg, "trajeval_gate_decisions_total"))
}

// counterSum sums every sample of the named counter family.
func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRunnerWithStore(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "trajeval.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	raw, err := json.Marshal(fullRun("search"))
	require.NoError(t, err)
	b, err := st.PromoteBaseline("search", raw, "test", "")
	require.NoError(t, err)

	cand := t.TempDir()
	save(t, cand, "search", fullRun("search"))
	spec := &scenario.Scenario{Name: "search", SuccessCriteria: []string{"sunny", "rain"}}

	runner := NewRunner(config.Default(), nil, nil).WithStore(st)
	out := runner.Evaluate(context.Background(), Job{
		Scenario:      "search",
		Spec:          spec,
		CandidatePath: filepath.Join(cand, "search", RecordingFile),
	})
	require.NoError(t, out.Err)
	assert.Equal(t, b.VersionID, out.BaselineVersion)
	assert.True(t, out.Passed())
	require.NotNil(t, out.Criteria)
	assert.Equal(t, []string{"rain"}, out.Criteria.Unmet)

	entries, err := logging.RecentEvaluations(st.DB(), "search", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, runner.RunID(), entries[0].RunID)
	assert.Equal(t, b.VersionID, entries[0].BaselineVersion)
	assert.Equal(t, "pass", entries[0].Action)
}

func TestRunnerNoBaseline(t *testing.T) {
	cand := t.TempDir()
	save(t, cand, "x", fullRun("x"))
	out := NewRunner(config.Default(), nil, nil).Evaluate(context.Background(), Job{
		Scenario:      "x",
		CandidatePath: filepath.Join(cand, "x", RecordingFile),
	})
	assert.True(t, errors.Is(out.Err, ErrNoBaseline))
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Scenario: "a"}, {Scenario: "b"}}
	outcomes, err := NewRunner(config.Default(), nil, nil).Run(ctx, jobs)
	require.ErrorIs(t, err, context.Canceled)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestSummarizeEmptyAndTiming(t *testing.T) {
	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Recommendations)

	good := &replay.Comparison{Verdict: eval.Verdict{FinalScore: 1, Label: eval.LabelGood}}
	good.Gate.Action = "pass"
	s := Summarize([]Outcome{
		{Job: Job{Scenario: "slow"}, Comparison: good, Duration: 3 * time.Second},
		{Job: Job{Scenario: "fast"}, Comparison: good, Duration: time.Second},
	})
	assert.Equal(t, "fast", s.Fastest)
	assert.Equal(t, "slow", s.Slowest)
	assert.Equal(t, 100.0, s.PassRate)
	assert.Empty(t, s.Recommendations)
	assert.Equal(t, 4*time.Second, s.TotalDuration)
}

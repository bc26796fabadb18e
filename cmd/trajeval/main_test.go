package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeRecording(t *testing.T, dir, name string, queries ...string) string {
	t.Helper()
	rec := &replay.Recording{Scenario: name}
	for _, q := range queries {
		rec.Calls = append(rec.Calls, replay.RecordedCall{
			ToolName:  "mcp__proxy__retrieve_tools",
			ToolInput: value.FromMap(map[string]any{"query": q}),
		})
	}
	path := filepath.Join(dir, name, "detailed_log.json")
	require.NoError(t, replay.SaveRecording(path, rec))
	return path
}

func TestCompareCommand(t *testing.T) {
	dir := t.TempDir()
	base := writeRecording(t, filepath.Join(dir, "baseline"), "search", "weather", "paris")
	same := writeRecording(t, filepath.Join(dir, "same"), "search", "weather", "paris")
	drift := writeRecording(t, filepath.Join(dir, "drift"), "search", "stock prices", "tokyo")
	reportPath := filepath.Join(dir, "out", "report.json")

	out, err := run(t, "compare", "--baseline", base, "--candidate", same, "--output", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "**Result**: PASS")
	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"report_type": "trajectory_comparison"`)

	_, err = run(t, "compare", "--baseline", base, "--candidate", drift, "-q")
	assert.ErrorIs(t, err, errRegression)
}

func TestCompareCommandNeedsBaselineSource(t *testing.T) {
	dir := t.TempDir()
	cand := writeRecording(t, dir, "search", "weather")
	dbPath = ""
	_, err := run(t, "compare", "--candidate", cand)
	assert.ErrorIs(t, err, errNoStore)
}

func TestBaselineLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "trajeval.db")
	v1 := writeRecording(t, filepath.Join(dir, "v1"), "search", "weather")
	v2 := writeRecording(t, filepath.Join(dir, "v2"), "search", "weather", "paris")

	_, err := run(t, "--db", db, "baseline", "promote", v1)
	require.NoError(t, err)
	out, err := run(t, "--db", db, "baseline", "promote", v2, "--note", "second")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted")

	out, err = run(t, "--db", db, "baseline", "list")
	require.NoError(t, err)
	assert.Equal(t, "search\n", out)

	out, err = run(t, "--db", db, "baseline", "list", "search")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	// Candidate matches v2, the active baseline
	_, err = run(t, "--db", db, "compare", "--candidate", v2, "-q")
	require.NoError(t, err)

	_, err = run(t, "--db", db, "baseline", "rollback", "search")
	require.NoError(t, err)

	// v1 has one call; the candidate's extra call drops the score below the gate
	_, err = run(t, "--db", db, "compare", "--candidate", v2, "-q")
	assert.ErrorIs(t, err, errRegression)

	out, err = run(t, "--db", db, "history", "search")
	require.NoError(t, err)
	assert.Contains(t, out, "pass")
	assert.Contains(t, out, "fail")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, filepath.Join(dir, "baseline"), "a", "weather")
	writeRecording(t, filepath.Join(dir, "current"), "a", "weather")
	writeRecording(t, filepath.Join(dir, "baseline"), "b", "weather")
	writeRecording(t, filepath.Join(dir, "current"), "b", "weather")
	metricsFile := filepath.Join(dir, "metrics.prom")

	out, err := run(t, "batch",
		"--baselines", filepath.Join(dir, "baseline"),
		"--candidates", filepath.Join(dir, "current"),
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Summary: 2 total, 2 pass, 0 not passed")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "trajeval_evaluations_total")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeRecording(t, dir, "ok", "weather")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"tool_calls_summary": []}`), 0o644))

	out, err := run(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "OK   "+good)
	assert.Contains(t, out, "FAIL "+bad)
}

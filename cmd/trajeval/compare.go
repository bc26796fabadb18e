package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trajeval/internal/codec"
	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/logging"
	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/report"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
	"github.com/danielpatrickdp/trajeval/internal/signals"
	"github.com/danielpatrickdp/trajeval/internal/store"
)

type compareOptions struct {
	baseline   string
	candidate  string
	spec       string
	output     string
	trajectory string
	remote     string
	quiet      bool
}

func newCompareCmd() *cobra.Command {
	var opts compareOptions
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare one candidate recording with its baseline",
		Long: "Compare scores a candidate detailed_log.json against a baseline recording, or against the\n" +
			"scenario's active baseline in --db when --baseline is omitted. Exit code 1 means the gate failed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.baseline, "baseline", "", "baseline recording (default: active baseline in --db)")
	f.StringVar(&opts.candidate, "candidate", "", "candidate recording")
	f.StringVar(&opts.spec, "scenario", "", "scenario YAML supplying critical tools and success criteria")
	f.StringVar(&opts.output, "output", "", "write the JSON comparison report here")
	f.StringVar(&opts.trajectory, "trajectory", "", "write the candidate transcript here")
	f.StringVar(&opts.remote, "remote", "", "evaluate on a remote evaluator at this gRPC address")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the human-readable summary")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}

func runCompare(cmd *cobra.Command, opts compareOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// 1. Inputs
	candidate, err := replay.LoadRecording(opts.candidate)
	if err != nil {
		return err
	}
	var spec *scenario.Scenario
	if opts.spec != "" {
		if spec, err = scenario.Load(opts.spec); err != nil {
			return err
		}
		if len(spec.CriticalOperations) > 0 {
			cfg.Signals.CriticalOperations = spec.CriticalOperations
		}
	}
	name := candidate.Scenario
	if spec != nil {
		name = spec.Name
	}

	st, err := openStore(opts.baseline == "")
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	baseline, version, err := resolveBaseline(st, opts.baseline, name)
	if err != nil {
		return err
	}

	var critical []string
	if spec != nil {
		critical = spec.CriticalTools
	}

	// 2. Evaluate
	if opts.remote != "" {
		return runRemoteCompare(cmd, opts, cfg, name, baseline, candidate, critical)
	}
	c := replay.Compare(baseline, candidate, critical, cfg)
	c.Scenario = name

	var criteria *scenario.CriteriaResult
	if spec != nil {
		res := spec.CheckCriteria(candidate.ResponseTexts(), "")
		criteria = &res
	}

	// 3. Outputs
	rep := report.NewComparisonReport(c, spec, criteria, cfg.Gate.PassThreshold)
	if opts.output != "" {
		if err := report.WriteJSON(opts.output, rep); err != nil {
			return err
		}
	}
	if opts.trajectory != "" {
		if err := writeTrajectory(opts.trajectory, candidate, c.CandidateAnalysis); err != nil {
			return err
		}
	}
	if !opts.quiet {
		if err := report.RenderSummary(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	}
	if st != nil {
		entry, err := logging.NewEvaluationEntry(uuid.New().String(), version, c, cfg)
		if err == nil {
			err = logging.LogEvaluation(st.DB(), entry)
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}

	if !c.Passed() {
		return errRegression
	}
	return nil
}

func runRemoteCompare(cmd *cobra.Command, opts compareOptions, cfg config.Config, name string, baseline, candidate *replay.Recording, critical []string) error {
	producer := signals.NewProducer(cfg.Signals)
	status, _ := producer.Status(baseline.SignalCalls(), candidate.SignalCalls(), cfg.Filter(), critical)

	client, err := codec.NewEvaluatorClient(opts.remote)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	resp, err := client.Compare(ctx, codec.Request{
		Scenario:  name,
		Baseline:  baseline.Trajectory(),
		Candidate: candidate.Trajectory(),
		Status:    status,
	})
	if err != nil {
		return err
	}

	if !opts.quiet {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: final=%.4f raw=%.4f label=%s passed=%t\n", resp.Scenario, resp.FinalScore, resp.RawScore, resp.Label, resp.Passed)
		fmt.Fprintf(out, "  %s\n", resp.Reason)
		for _, inv := range resp.Invocations {
			fmt.Fprintf(out, "  Invocation %d: %s (%.3f)\n", inv.Position+1, inv.Detail, inv.Similarity)
		}
	}
	if !resp.Passed {
		return errRegression
	}
	return nil
}

// resolveBaseline loads path when set, otherwise the active baseline of
// scenario from st.
func resolveBaseline(st *store.Store, path, scenarioName string) (*replay.Recording, string, error) {
	if path != "" {
		rec, err := replay.LoadRecording(path)
		return rec, "", err
	}
	b, err := st.GetActive(scenarioName)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("no baseline for %q: pass --baseline or promote one first", scenarioName)
	}
	if err != nil {
		return nil, "", err
	}
	rec, err := replay.ParseRecording(b.Recording)
	if err != nil {
		return nil, "", fmt.Errorf("baseline %s: %w", b.VersionID, err)
	}
	return rec, b.VersionID, nil
}

func writeTrajectory(path string, rec *replay.Recording, analysis signals.Analysis) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create trajectory dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trajectory: %w", err)
	}
	if err := report.RenderTrajectory(f, rec, analysis); err != nil {
		f.Close()
		return fmt.Errorf("write trajectory: %w", err)
	}
	return f.Close()
}

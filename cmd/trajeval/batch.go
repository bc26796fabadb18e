package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trajeval/internal/batch"
	"github.com/danielpatrickdp/trajeval/internal/metrics"
	"github.com/danielpatrickdp/trajeval/internal/report"
)

type batchOptions struct {
	scenarios   string
	baselines   string
	candidates  string
	workers     int
	output      string
	metricsFile string
	quiet       bool
}

func newBatchCmd() *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compare every scenario recording in a run directory",
		Long: "Batch pairs <candidates>/<scenario>/detailed_log.json with <baselines>/<scenario>/detailed_log.json,\n" +
			"or with active baselines in --db when --baselines is omitted. Exit code 1 means a scenario failed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.scenarios, "scenarios", "", "scenario YAML directory (default: every candidate subdirectory)")
	f.StringVar(&opts.baselines, "baselines", "", "baseline run directory (default: active baselines in --db)")
	f.StringVar(&opts.candidates, "candidates", "", "candidate run directory")
	f.IntVar(&opts.workers, "workers", 0, "concurrent evaluations (overrides config)")
	f.StringVar(&opts.output, "output", "", "write the JSON batch report here")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus text metrics here")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the table and summary")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func runBatch(cmd *cobra.Command, opts batchOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	jobs, err := batch.DiscoverJobs(opts.scenarios, opts.baselines, opts.candidates)
	if err != nil {
		return err
	}

	st, err := openStore(opts.baselines == "")
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	registry := prometheus.NewRegistry()
	prom, err := metrics.NewPrometheusRecorder(registry)
	if err != nil {
		return err
	}

	recorder := metrics.NewMultiRecorder(prom, metrics.NewLogRecorder(logger))
	runner := batch.NewRunner(cfg, logger, recorder)
	if st != nil {
		runner.WithStore(st)
	}
	outcomes, err := runner.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	rep := report.NewBatchReport(outcomes)
	if opts.output != "" {
		if err := report.WriteJSON(opts.output, rep); err != nil {
			return err
		}
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, registry); err != nil {
			return err
		}
	}
	if !opts.quiet {
		out := cmd.OutOrStdout()
		report.RenderTable(out, rep.ScenarioResults)
		if err := report.RenderBatchSummary(out, rep); err != nil {
			return err
		}
	}

	if rep.Summary.Errored > 0 {
		return fmt.Errorf("%d scenario(s) could not be evaluated", rep.Summary.Errored)
	}
	if rep.Summary.Failed > 0 {
		return errRegression
	}
	return nil
}

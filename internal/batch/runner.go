// Package batch evaluates many scenario recordings concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/logging"
	"github.com/danielpatrickdp/trajeval/internal/metrics"
	"github.com/danielpatrickdp/trajeval/internal/replay"
	"github.com/danielpatrickdp/trajeval/internal/scenario"
	"github.com/danielpatrickdp/trajeval/internal/store"
)

var ErrNoBaseline = errors.New("batch: no baseline path and no store")

// #region runner
// Runner evaluates jobs with bounded concurrency.
type Runner struct {
	config   config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	store    *store.Store
	runID    string
}

// NewRunner creates a runner. A nil logger discards logs and a nil recorder
// drops metrics.
func NewRunner(cfg config.Config, logger *slog.Logger, recorder metrics.Recorder) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Runner{
		config:   cfg,
		logger:   logger,
		recorder: recorder,
		runID:    uuid.New().String(),
	}
}

// WithStore resolves missing baselines from s and logs every evaluation to
// its evaluation_log.
func (r *Runner) WithStore(s *store.Store) *Runner {
	r.store = s
	return r
}

// RunID identifies this runner's evaluations in the evaluation log.
func (r *Runner) RunID() string { return r.runID }

// Run evaluates jobs concurrently. Outcomes keep job order. Jobs not started
// before ctx is cancelled carry ctx's error, which Run also returns.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	workers := r.config.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Job: job, RunID: r.runID, Err: err}
				return nil
			}
			outcomes[i] = r.Evaluate(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("batch finished", "run_id", r.runID, "jobs", len(jobs))
	return outcomes, ctx.Err()
}

// Evaluate runs one job through the comparison pipeline.
func (r *Runner) Evaluate(ctx context.Context, job Job) Outcome {
	start := time.Now()
	out := Outcome{Job: job, RunID: r.runID}
	log := r.logger.With("scenario", job.Scenario)

	fail := func(err error) Outcome {
		out.Err = err
		out.Duration = time.Since(start)
		r.recorder.ObserveError(job.Scenario)
		log.Error("evaluation failed", "err", err)
		return out
	}

	// 1. Resolve recordings
	baseline, version, err := r.loadBaseline(job)
	if err != nil {
		return fail(err)
	}
	out.BaselineVersion = version
	candidate, err := replay.LoadRecording(job.CandidatePath)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// 2. Scenario overrides
	cfg := r.config
	var critical []string
	if job.Spec != nil {
		critical = job.Spec.CriticalTools
		if len(job.Spec.CriticalOperations) > 0 {
			cfg.Signals.CriticalOperations = job.Spec.CriticalOperations
		}
	}

	// 3. Compare
	cmp := replay.Compare(baseline, candidate, critical, cfg)
	if job.Scenario != "" {
		cmp.Scenario = job.Scenario
	}
	out.Comparison = &cmp

	// 4. Success criteria
	if job.Spec != nil && len(job.Spec.SuccessCriteria) > 0 {
		res := job.Spec.CheckCriteria(candidate.ResponseTexts(), "")
		out.Criteria = &res
	}

	out.Duration = time.Since(start)
	r.recorder.ObserveEvaluation(cmp.Scenario, string(cmp.Verdict.Label), cmp.Verdict.FinalScore, out.Duration)
	r.recorder.ObserveGate(cmp.Scenario, cmp.Gate.Action, cmp.Gate.Vetoed)

	// 5. Provenance
	if r.store != nil {
		entry, err := logging.NewEvaluationEntry(r.runID, version, cmp, cfg)
		if err == nil {
			err = logging.LogEvaluation(r.store.DB(), entry)
		}
		if err != nil {
			log.Warn("evaluation log write failed", "err", err)
		}
	}

	log.Info("evaluated",
		"final_score", cmp.Verdict.FinalScore,
		"label", cmp.Verdict.Label,
		"action", cmp.Gate.Action,
		"duration", out.Duration,
	)
	return out
}

func (r *Runner) loadBaseline(job Job) (*replay.Recording, string, error) {
	if job.BaselinePath != "" {
		rec, err := replay.LoadRecording(job.BaselinePath)
		return rec, "", err
	}
	if r.store == nil {
		return nil, "", ErrNoBaseline
	}
	b, err := r.store.GetActive(job.Scenario)
	if err != nil {
		return nil, "", fmt.Errorf("load baseline: %w", err)
	}
	rec, err := replay.ParseRecording(b.Recording)
	if err != nil {
		return nil, "", fmt.Errorf("baseline %s: %w", b.VersionID, err)
	}
	return rec, b.VersionID, nil
}
// #endregion runner

// #region discover
// DiscoverJobs pairs <dir>/<scenario>/detailed_log.json recordings. With a
// scenario directory, one job per enabled scenario is built; otherwise every
// candidate subdirectory holding a recording becomes a job. An empty
// baselineDir leaves BaselinePath empty so the store supplies it.
func DiscoverJobs(scenarioDir, baselineDir, candidateDir string) ([]Job, error) {
	var names []string
	specs := make(map[string]*scenario.Scenario)

	if scenarioDir != "" {
		scenarios, err := scenario.LoadDir(scenarioDir)
		if err != nil {
			return nil, err
		}
		for _, s := range scenarios {
			names = append(names, s.Name)
			specs[s.Name] = s
		}
	} else {
		entries, err := os.ReadDir(candidateDir)
		if err != nil {
			return nil, fmt.Errorf("discover jobs: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(candidateDir, e.Name(), RecordingFile)); err == nil {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
	}

	jobs := make([]Job, len(names))
	for i, name := range names {
		jobs[i] = Job{
			Scenario:      name,
			Spec:          specs[name],
			CandidatePath: filepath.Join(candidateDir, name, RecordingFile),
		}
		if baselineDir != "" {
			jobs[i].BaselinePath = filepath.Join(baselineDir, name, RecordingFile)
		}
	}
	return jobs, nil
}
// #endregion discover

package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/replay"
)

// #region log-evaluation
// LogEvaluation writes an evaluation entry to the evaluation_log table.
func LogEvaluation(db *sql.DB, entry EvaluationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO evaluation_log (run_id, scenario, baseline_version, raw_score, final_score, label, action, reason, verdict_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Scenario,
		nullIfEmpty(entry.BaselineVersion),
		entry.RawScore,
		entry.FinalScore,
		entry.Label,
		entry.Action,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.VerdictJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log evaluation: %w", err)
	}
	return nil
}
// #endregion log-evaluation

// #region recent-evaluations
// RecentEvaluations returns up to limit entries, newest first. An empty
// scenario returns entries for every scenario.
func RecentEvaluations(db *sql.DB, scenario string, limit int) ([]EvaluationEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(
		`SELECT id, run_id, scenario, baseline_version, raw_score, final_score, label, action, reason, verdict_json, created_at
		 FROM evaluation_log
		 WHERE (? = '' OR scenario = ?)
		 ORDER BY id DESC LIMIT ?`, scenario, scenario, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent evaluations: %w", err)
	}
	defer rows.Close()

	var entries []EvaluationEntry
	for rows.Next() {
		var e EvaluationEntry
		var baseline, reason, verdict sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Scenario, &baseline, &e.RawScore, &e.FinalScore,
			&e.Label, &e.Action, &reason, &verdict, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.BaselineVersion = baseline.String
		e.Reason = reason.String
		e.VerdictJSON = verdict.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion recent-evaluations

// #region record-builder
// NewVerdictRecord flattens a comparison and the config that produced it.
func NewVerdictRecord(c replay.Comparison, cfg config.Config) VerdictRecord {
	invocations := make([]string, len(c.Trajectory.PerInvocation))
	for i, s := range c.Trajectory.PerInvocation {
		invocations[i] = s.Describe()
	}
	var vetoes []string
	for _, v := range c.Gate.VetoSignals {
		vetoes = append(vetoes, string(v.Type))
	}

	return VerdictRecord{
		Scenario:   c.Scenario,
		RawScore:   c.Verdict.RawScore,
		FinalScore: c.Verdict.FinalScore,
		Label:      string(c.Verdict.Label),
		Signals: VerdictRecordSignals{
			HadError:         c.Status.HadError,
			MissingTools:     c.Status.MissingTools,
			CriticalOpFailed: c.Status.CriticalOpFailed,
			CandidateStatus:  string(c.CandidateAnalysis.Status),
		},
		Thresholds: VerdictRecordThresholds{
			ErrorPenalty:       cfg.Eval.ErrorPenalty,
			MissingToolCeiling: cfg.Eval.MissingToolCeiling,
			Broken:             cfg.Eval.Thresholds.Broken,
			Degraded:           cfg.Eval.Thresholds.Degraded,
			Acceptable:         cfg.Eval.Thresholds.Acceptable,
			PassThreshold:      cfg.Gate.PassThreshold,
		},
		Invocations: invocations,
		GateAction:  c.Gate.Action,
		GateVetoed:  c.Gate.Vetoed,
		GateReason:  c.Gate.Reason,
		VetoTypes:   vetoes,
	}
}

// NewEvaluationEntry builds the log row for a comparison, embedding its
// VerdictRecord as JSON.
func NewEvaluationEntry(runID, baselineVersion string, c replay.Comparison, cfg config.Config) (EvaluationEntry, error) {
	raw, err := json.Marshal(NewVerdictRecord(c, cfg))
	if err != nil {
		return EvaluationEntry{}, fmt.Errorf("marshal verdict record: %w", err)
	}
	return EvaluationEntry{
		RunID:           runID,
		Scenario:        c.Scenario,
		BaselineVersion: baselineVersion,
		RawScore:        c.Verdict.RawScore,
		FinalScore:      c.Verdict.FinalScore,
		Label:           string(c.Verdict.Label),
		Action:          c.Gate.Action,
		Reason:          c.Gate.Reason,
		VerdictJSON:     string(raw),
	}, nil
}
// #endregion record-builder

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
